// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package models

// FeedRequest carries the query parameters of GET /api/v1/feed/{userID}
// after binding, before validation. The handler converts a validated
// FeedRequest into the engine's compose input.
type FeedRequest struct {
	// Limit is the requested page size. Zero means the server default.
	Limit int `validate:"gte=0,lte=100"`

	// Cursor is the opaque pagination token from a previous page. Decoding
	// and semantic checks happen in the engine, not here.
	Cursor string `validate:"omitempty,max=512"`

	// Mix selects the strategy mix. Empty means the configured balanced mix.
	Mix string `validate:"omitempty,oneof=balanced following popular new random collaborative"`

	// Category restricts results to one category.
	Category string `validate:"omitempty,max=64"`

	// ExcludeCategory removes one category from results.
	ExcludeCategory string `validate:"omitempty,max=64"`

	// Language is the viewer's preferred language tag, e.g. "en" or "pt-BR".
	Language string `validate:"omitempty,max=16"`
}

// RecommendRequest carries the query parameters of
// GET /api/v1/recommendations/{userID}.
type RecommendRequest struct {
	Limit           int    `validate:"gte=0,lte=100"`
	Category        string `validate:"omitempty,max=64"`
	ExcludeCategory string `validate:"omitempty,max=64"`
	Language        string `validate:"omitempty,max=16"`
}

// RefreshRequest carries the query parameters of
// POST /api/v1/feed/{userID}/refresh. An empty Category refreshes the
// viewer's uncategorized feed variants; refresh-all is expressed by the
// handler calling user-level invalidation instead.
type RefreshRequest struct {
	Category string `validate:"omitempty,max=64"`
}
