// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"time"
)

// ContentType distinguishes the two published media kinds.
type ContentType string

const (
	// ContentVideo is short-form video content.
	ContentVideo ContentType = "VIDEO"
	// ContentPhoto is photo content.
	ContentPhoto ContentType = "PHOTO"
)

// Category is the editorial category a content item is published under.
// The empty string means "no category" in filter positions.
type Category string

// Known categories. The set is open-ended; unknown values pass through
// filters unchanged.
const (
	CategoryComedy    Category = "comedy"
	CategoryMusic     Category = "music"
	CategorySports    Category = "sports"
	CategoryFood      Category = "food"
	CategoryTravel    Category = "travel"
	CategoryFashion   Category = "fashion"
	CategoryGaming    Category = "gaming"
	CategoryEducation Category = "education"
)

// InteractionType classifies explicit user-content interactions.
type InteractionType string

const (
	InteractionLike    InteractionType = "LIKE"
	InteractionSave    InteractionType = "SAVE"
	InteractionShare   InteractionType = "SHARE"
	InteractionComment InteractionType = "COMMENT"
	InteractionView    InteractionType = "VIEW"
)

// CFWeight returns the collaborative-filtering aggregation weight for this
// interaction type. Sharing is the costliest signal and counts most;
// comments signal engagement but not preference, so they contribute no
// score (candidates with only comment-weighted contributions are dropped).
func (t InteractionType) CFWeight() float64 {
	switch t {
	case InteractionLike:
		return 1.0
	case InteractionSave:
		return 1.5
	case InteractionShare:
		return 2.0
	case InteractionComment:
		return 0.0
	default:
		return 0.0
	}
}

// ContentItem is the published metadata of one video or photo.
// Immutable once published except for the soft-delete marker.
type ContentItem struct {
	// ID is the opaque content identifier.
	ID string `json:"id"`

	// CreatorID is the authoring user.
	CreatorID string `json:"creator_id"`

	// Type is VIDEO or PHOTO.
	Type ContentType `json:"type"`

	// Category is the editorial category, empty if uncategorized.
	Category Category `json:"category,omitempty"`

	// Language is the ISO 639-1 language tag of the content.
	Language string `json:"language,omitempty"`

	// CreatedAt is the publication instant.
	CreatedAt time.Time `json:"created_at"`

	// Deleted marks soft-deleted content. Deleted items are never
	// returned by any strategy.
	Deleted bool `json:"deleted,omitempty"`
}

// InteractionCounters holds the per-content aggregate interaction counts.
// Owned by the interaction-tracking subsystem; read-only here.
type InteractionCounters struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Saves    int64 `json:"saves"`
	Shares   int64 `json:"shares"`
}

// SeedInteraction is one recorded interaction, used as a read model by the
// collaborative-filtering engine. The feed core never writes interactions.
type SeedInteraction struct {
	UserID     string          `json:"user_id"`
	ContentID  string          `json:"content_id"`
	Type       InteractionType `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ScoredContent pairs a content item with its strategy score.
type ScoredContent struct {
	Content ContentItem `json:"content"`
	Score   float64     `json:"score"`
}

// Strategy names. These double as mix-ratio keys in Config.Mix and as the
// "mix" values accepted by ComposeRequest for single-strategy feeds.
const (
	StrategyFollowing     = "following"
	StrategyPopular       = "popular"
	StrategyNew           = "new"
	StrategyRandom        = "random"
	StrategyCollaborative = "collaborative"
)

// StrategyOrder is the fixed interleave order used by the composer.
// Deterministic ordering keeps composed pages reproducible for one input.
var StrategyOrder = []string{
	StrategyFollowing,
	StrategyPopular,
	StrategyNew,
	StrategyRandom,
	StrategyCollaborative,
}

// FeedPage is one composed, paginated feed response.
type FeedPage struct {
	// Items is the ordered content list for this page.
	Items []ScoredContent `json:"items"`

	// NextCursor resumes pagination after the last item of this page.
	// Empty when HasNext is false.
	NextCursor string `json:"next_cursor,omitempty"`

	// HasNext reports whether another page is available.
	HasNext bool `json:"has_next"`

	// Count is the number of items on this page.
	Count int `json:"count"`
}

// ComposeRequest is the engine's feed-composition input.
type ComposeRequest struct {
	// ViewerID is the user the feed is composed for.
	ViewerID string `json:"viewer_id"`

	// Limit is the page size. Defaults to Config.Limits.DefaultLimit when
	// zero; negative values are rejected with ErrInvalidArgument.
	Limit int `json:"limit,omitempty"`

	// Cursor is the opaque pagination token from a previous page.
	Cursor string `json:"cursor,omitempty"`

	// Mix selects the strategy mix: empty or "balanced" for the configured
	// ratio mix, or a single strategy name for a single-source feed.
	Mix string `json:"mix,omitempty"`

	// Category restricts results to one category. Empty means no filter.
	Category Category `json:"category,omitempty"`

	// ExcludeCategory removes one category. May legitimately empty the
	// result when combined with an equal Category filter.
	ExcludeCategory Category `json:"exclude_category,omitempty"`

	// Language is the viewer's preferred language tag. Empty disables
	// language weighting.
	Language string `json:"language,omitempty"`
}

// RecommendRequest is the standalone collaborative-filtering input.
type RecommendRequest struct {
	ViewerID        string   `json:"viewer_id"`
	Limit           int      `json:"limit,omitempty"`
	Language        string   `json:"language,omitempty"`
	Category        Category `json:"category,omitempty"`
	ExcludeCategory Category `json:"exclude_category,omitempty"`
}
