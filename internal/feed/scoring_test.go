// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"math"
	"testing"
	"time"
)

const scoreEpsilon = 1e-9

func TestPopularityScore(t *testing.T) {
	tests := []struct {
		name     string
		counters InteractionCounters
		want     float64
	}{
		{
			name:     "zero counters",
			counters: InteractionCounters{},
			want:     0,
		},
		{
			name:     "views only",
			counters: InteractionCounters{Views: 100},
			want:     100,
		},
		{
			name:     "one of each",
			counters: InteractionCounters{Views: 1, Likes: 1, Comments: 1, Saves: 1, Shares: 1},
			want:     1 + 5 + 3 + 7 + 10,
		},
		{
			name: "viral item",
			counters: InteractionCounters{
				Views:    10000,
				Likes:    3000,
				Comments: 1000,
				Saves:    500,
				Shares:   350,
			},
			want: 35000,
		},
		{
			name:     "shares dominate equal counts",
			counters: InteractionCounters{Views: 10, Shares: 10},
			want:     110,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PopularityScore(tt.counters)
			if math.Abs(got-tt.want) > scoreEpsilon {
				t.Errorf("PopularityScore() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDecay(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		rate      float64
		want      float64
	}{
		{
			name:      "brand new content does not decay",
			createdAt: testNow,
			rate:      0.10,
			want:      1.0,
		},
		{
			name:      "under one day truncates to zero days",
			createdAt: testNow.Add(-23 * time.Hour),
			rate:      0.10,
			want:      1.0,
		},
		{
			name:      "future timestamp clamps to zero days",
			createdAt: testNow.Add(48 * time.Hour),
			rate:      0.10,
			want:      1.0,
		},
		{
			name:      "one day aggressive",
			createdAt: daysAgo(1),
			rate:      0.10,
			want:      math.Exp(-0.10),
		},
		{
			name:      "seven days aggressive roughly halves",
			createdAt: daysAgo(7),
			rate:      0.10,
			want:      math.Exp(-0.70),
		},
		{
			name:      "fourteen days gentle",
			createdAt: daysAgo(14),
			rate:      0.02,
			want:      math.Exp(-0.28),
		},
		{
			name:      "thirty days gentle",
			createdAt: daysAgo(30),
			rate:      0.02,
			want:      math.Exp(-0.60),
		},
		{
			name:      "sixty days gentle",
			createdAt: daysAgo(60),
			rate:      0.02,
			want:      math.Exp(-1.20),
		},
		{
			name:      "fractional days truncate down",
			createdAt: testNow.Add(-47 * time.Hour),
			rate:      0.10,
			want:      math.Exp(-0.10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decay(tt.createdAt, testNow, tt.rate)
			if math.Abs(got-tt.want) > scoreEpsilon {
				t.Errorf("Decay() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDecayMonotonicInAge(t *testing.T) {
	prev := math.Inf(1)
	for days := 0; days <= 120; days += 7 {
		got := Decay(daysAgo(days), testNow, 0.02)
		if got > prev {
			t.Fatalf("decay increased at %d days: %f > %f", days, got, prev)
		}
		prev = got
	}
}

func TestLanguageMultiplier(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		preferred string
		want      float64
	}{
		{name: "no preference disables weighting", content: "de", preferred: "", want: 1.0},
		{name: "match", content: "en", preferred: "en", want: 2.0},
		{name: "mismatch", content: "de", preferred: "en", want: 0.5},
		{name: "untagged content with a preference mismatches", content: "", preferred: "en", want: 0.5},
		{name: "comparison is case-sensitive", content: "EN", preferred: "en", want: 0.5},
		{name: "regional subtags are distinct", content: "en-US", preferred: "en", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LanguageMultiplier(tt.content, tt.preferred)
			if math.Abs(got-tt.want) > scoreEpsilon {
				t.Errorf("LanguageMultiplier(%q, %q) = %f, want %f", tt.content, tt.preferred, got, tt.want)
			}
		})
	}
}
