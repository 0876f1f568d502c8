// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

// Package feed implements the feed composition and ranking core: candidate
// selection per strategy, popularity and time-decay scoring, language
// weighting, block-list enforcement, cursor pagination, and the per-user
// feed cache.
//
// The package deliberately has no dependencies on other internal packages.
// Storage, caching and interaction tracking are consumed through the
// interfaces declared in ports.go, which keeps the core testable with
// in-memory fakes and free of import cycles.
//
// Composition flows bottom-up: repositories feed the strategy selectors
// (each independently filtered through the BlockFilter), the Engine merges
// selector output into one deduplicated ranked page, and the Cache memoizes
// per-(user, category, language, batch) results with explicit invalidation
// on refresh.
package feed
