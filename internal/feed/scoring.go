// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"math"
	"time"
)

// Popularity weights. Low-effort signals (views) count least; high-intent,
// costly signals (sharing a creator's content with one's own audience)
// count most. No time component here: decay is applied separately so it can
// be tuned per strategy without touching the base score.
const (
	viewWeight    = 1
	likeWeight    = 5
	commentWeight = 3
	saveWeight    = 7
	shareWeight   = 10
)

// Language weights. A match gets a 4x relative boost over a mismatch.
// Equality is case-sensitive exact match on the normalized tag; "en" and
// "en-US" are distinct on purpose.
const (
	// LanguageMatchWeight multiplies scores of content in the viewer's
	// preferred language.
	LanguageMatchWeight = 2.0
	// LanguageMismatchWeight multiplies scores of everything else.
	LanguageMismatchWeight = 0.5
)

// PopularityScore computes the deterministic popularity score of a content
// item from its raw interaction counters. Pure function, reproducible.
func PopularityScore(c InteractionCounters) float64 {
	return float64(c.Views*viewWeight +
		c.Likes*likeWeight +
		c.Comments*commentWeight +
		c.Saves*saveWeight +
		c.Shares*shareWeight)
}

// Decay converts content age into a multiplicative factor exp(-rate * days).
// Elapsed wall-clock time is truncated to whole days, so content created
// within the last 24 hours decays not at all. The caller passes the same
// "now" for every item of one scoring pass to keep the pass referentially
// transparent.
func Decay(createdAt, now time.Time, rate float64) float64 {
	days := daysSince(createdAt, now)
	return math.Exp(-rate * float64(days))
}

// daysSince returns the whole-day truncation of now minus createdAt,
// clamped at zero for content time-stamped in the future.
func daysSince(createdAt, now time.Time) int {
	d := now.Sub(createdAt)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// LanguageMultiplier returns the multiplicative language factor for a
// content item scored for a viewer. An empty preferred language disables
// weighting entirely and returns 1.
func LanguageMultiplier(contentLanguage, preferredLanguage string) float64 {
	if preferredLanguage == "" {
		return 1.0
	}
	if contentLanguage == preferredLanguage {
		return LanguageMatchWeight
	}
	return LanguageMismatchWeight
}
