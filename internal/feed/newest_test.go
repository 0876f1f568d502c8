// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"fmt"
	"testing"
)

func TestNewSelectNewestFirst(t *testing.T) {
	content := newFakeContentRepo(
		mkItem("c3", "u1", "en", "", daysAgo(3)),
		mkItem("c1", "u2", "en", "", daysAgo(1)),
		mkItem("c2", "u3", "en", "", daysAgo(2)),
	)
	sel := NewNewSelector(content, NewBlockFilter(newFakeBlockRepo()), 500, 0.10)

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if fmt.Sprint(idsOf(got)) != fmt.Sprint([]string{"c1", "c2", "c3"}) {
		t.Errorf("Select() = %v, want newest first", idsOf(got))
	}
}

func TestNewSelectLanguageBoostReorders(t *testing.T) {
	// A slightly older preferred-language item should outrank a fresher
	// mismatched one: day 1 at 2.0x beats day 0 at 0.5x.
	content := newFakeContentRepo(
		mkItem("fresh-de", "u1", "de", "", daysAgo(0)),
		mkItem("day1-en", "u2", "en", "", daysAgo(1)),
		mkItem("day2-en", "u3", "en", "", daysAgo(2)),
	)
	sel := NewNewSelector(content, NewBlockFilter(newFakeBlockRepo()), 500, 0.10)

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Language: "en", Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if fmt.Sprint(idsOf(got)) != fmt.Sprint([]string{"day1-en", "day2-en", "fresh-de"}) {
		t.Errorf("Select() = %v, want en items boosted above fresh de item", idsOf(got))
	}
}

func TestNewSelectSkipsDeleted(t *testing.T) {
	deleted := mkItem("gone", "u1", "en", "", daysAgo(0))
	deleted.Deleted = true
	content := newFakeContentRepo(deleted, mkItem("live", "u2", "en", "", daysAgo(1)))
	sel := NewNewSelector(content, NewBlockFilter(newFakeBlockRepo()), 500, 0.10)

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 1 || got[0].Content.ID != "live" {
		t.Errorf("Select() = %v, want [live]", idsOf(got))
	}
}

func TestNewSelectHonorsExcludeSet(t *testing.T) {
	content := newFakeContentRepo(
		mkItem("c1", "u1", "en", "", daysAgo(1)),
		mkItem("c2", "u2", "en", "", daysAgo(2)),
	)
	sel := NewNewSelector(content, NewBlockFilter(newFakeBlockRepo()), 500, 0.10)

	got, err := sel.Select(context.Background(), Query{
		ViewerID: "viewer", Limit: 10,
		Exclude: map[string]struct{}{"c1": {}},
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 1 || got[0].Content.ID != "c2" {
		t.Errorf("Select() = %v, want [c2]", idsOf(got))
	}
}
