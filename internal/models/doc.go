// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

/*
Package models defines the HTTP-facing data structures for Reelmix.

It contains the standardized API response envelope shared by every
endpoint, plus the request parameter structs that handlers bind query
strings into before validation. Domain types (content items, feed
pages, cursors) live in internal/feed; this package only covers the
transport shapes wrapped around them.

Key Components:

  - APIResponse: Standardized response wrapper ("success"/"error")
  - APIError: Structured error payload with machine-readable codes
  - Metadata: Per-response timing and cache observability fields
  - FeedRequest / RecommendRequest: Bound and validated query params
*/
package models
