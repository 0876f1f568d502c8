// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"time"
)

// The repository interfaces below are consumer-side ports. Concrete storage
// is out of scope for the feed core; implementations live with whatever
// database layer the embedding service uses, and tests use in-memory fakes.

// ContentRepository provides read access to published content metadata and
// interaction counters.
type ContentRepository interface {
	// ListRecent returns non-deleted content ordered by CreatedAt
	// descending, ID descending, optionally restricted to one category
	// (empty Category means no filter), capped at limit.
	ListRecent(ctx context.Context, category Category, limit int) ([]ContentItem, error)

	// ListByCreators returns non-deleted content authored by any of the
	// given users, ordered by CreatedAt descending, ID descending, capped
	// at limit. A non-nil after restricts the result to items sorting
	// strictly after its (createdAt, id) keyset position, so pagination
	// can resume arbitrarily deep.
	ListByCreators(ctx context.Context, creatorIDs []string, after *Cursor, limit int) ([]ContentItem, error)

	// FindMetadataBatch returns metadata for the given ids in a single
	// call. Missing or purged ids are simply absent from the result map.
	FindMetadataBatch(ctx context.Context, ids []string) (map[string]ContentItem, error)

	// CountersBatch returns interaction counters for the given ids in a
	// single call. Ids with no recorded interactions may be absent.
	CountersBatch(ctx context.Context, ids []string) (map[string]InteractionCounters, error)
}

// InteractionRepository provides read access to recorded interactions for
// collaborative filtering.
type InteractionRepository interface {
	// FindSeedInteractions returns up to limit of the user's own
	// LIKE/SAVE/SHARE/COMMENT interactions in a deterministic order.
	FindSeedInteractions(ctx context.Context, userID string, limit int) ([]SeedInteraction, error)

	// FindUsersByContent returns up to limit distinct users who interacted
	// with the given content. An empty interactionType matches any type.
	FindUsersByContent(ctx context.Context, contentID string, interactionType InteractionType, limit int) ([]string, error)

	// FindByUser returns up to limit of the user's interactions in a
	// deterministic order.
	FindByUser(ctx context.Context, userID string, limit int) ([]SeedInteraction, error)
}

// FollowRepository answers follow-graph membership queries.
type FollowRepository interface {
	// FollowingIDs returns the ids of every user the given user follows.
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// BlockRepository answers block-edge queries, both user-to-user and
// user-to-content.
type BlockRepository interface {
	// BlockedUserIDs returns the ids of every user the viewer has blocked.
	BlockedUserIDs(ctx context.Context, viewerID string) ([]string, error)

	// BlockedContentIDs returns the ids of every content item the viewer
	// has blocked individually.
	BlockedContentIDs(ctx context.Context, viewerID string) ([]string, error)
}

// Store is the cache contract the feed cache memoizes batches through.
// Implemented by the in-memory and Redis stores in internal/cache; the
// interface lives here so the core stays free of internal imports.
type Store interface {
	// Get returns the value stored under key, reporting whether a live
	// entry was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL, overwriting any
	// previous entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry under key if present.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every entry whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
