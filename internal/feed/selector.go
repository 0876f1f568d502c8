// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"time"
)

// Query is the per-request input every strategy selector receives.
type Query struct {
	// ViewerID is the user the feed is for.
	ViewerID string

	// Limit bounds the number of returned items.
	Limit int

	// Category restricts results to one category when non-empty.
	Category Category

	// ExcludeCategory removes one category when non-empty. Combining it
	// with an equal Category filter legitimately empties the result.
	ExcludeCategory Category

	// Language is the viewer's preferred language tag; empty disables
	// language weighting.
	Language string

	// Exclude holds content ids already shown to the viewer in this feed
	// session. Selectors never return a member of this set.
	Exclude map[string]struct{}

	// Cursor is the keyset resume point, honored by selectors with a
	// deterministic ordering (following).
	Cursor *Cursor

	// Now is the scoring instant, held constant across the whole request
	// so decay factors are referentially transparent within it.
	Now time.Time
}

// Selector is one candidate-selection strategy. Implementations take a
// block-filter snapshot themselves and must never return a blocked,
// soft-deleted, or already-excluded content id.
type Selector interface {
	// Name returns the strategy identifier, one of the Strategy constants.
	Name() string

	// Select returns up to q.Limit scored items in ranked order.
	Select(ctx context.Context, q Query) ([]ScoredContent, error)
}

// passes applies the filters shared by every strategy: soft-deletion, the
// caller's exclude-set, category include/exclude, and the block snapshot.
func passes(item ContentItem, q Query, blocked *BlockSnapshot) bool {
	if item.Deleted {
		return false
	}
	if _, excluded := q.Exclude[item.ID]; excluded {
		return false
	}
	if q.Category != "" && item.Category != q.Category {
		return false
	}
	if q.ExcludeCategory != "" && item.Category == q.ExcludeCategory {
		return false
	}
	return blocked.Allows(item)
}

// queryNow returns q.Now, defaulting to the wall clock when the caller
// left it unset.
func queryNow(q Query) time.Time {
	if q.Now.IsZero() {
		return time.Now()
	}
	return q.Now
}
