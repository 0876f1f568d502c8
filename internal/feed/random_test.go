// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
)

func randomFixture(n int, lang string) *fakeContentRepo {
	content := newFakeContentRepo()
	for i := 0; i < n; i++ {
		content.items = append(content.items,
			mkItem(fmt.Sprintf("%s-%02d", lang, i), "creator", lang, "", daysAgo(i%5)))
	}
	return content
}

func TestRandomCoversAllEligible(t *testing.T) {
	content := randomFixture(8, "en")
	sel := NewRandomSelector(content, NewBlockFilter(newFakeBlockRepo()), 500, 1)

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 100, Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("got %d items, want all 8", len(got))
	}
	ids := idsOf(got)
	sort.Strings(ids)
	for i, id := range ids {
		if want := fmt.Sprintf("en-%02d", i); id != want {
			t.Errorf("missing or duplicated item: got %s at %d, want %s", id, i, want)
		}
	}
}

func TestRandomSameSeedSameOrder(t *testing.T) {
	content := randomFixture(20, "en")
	q := Query{ViewerID: "viewer", Limit: 20, Now: testNow}

	a, err := NewRandomSelector(content, NewBlockFilter(newFakeBlockRepo()), 500, 7).
		Select(context.Background(), q)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	b, err := NewRandomSelector(content, NewBlockFilter(newFakeBlockRepo()), 500, 7).
		Select(context.Background(), q)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if fmt.Sprint(idsOf(a)) != fmt.Sprint(idsOf(b)) {
		t.Errorf("same seed produced different orders:\n%v\n%v", idsOf(a), idsOf(b))
	}
}

func TestRandomExcludesBlocked(t *testing.T) {
	content := newFakeContentRepo(
		mkItem("ok", "good", "en", "", daysAgo(1)),
		mkItem("bad", "evil", "en", "", daysAgo(1)),
	)
	blocks := newFakeBlockRepo()
	blocks.users["viewer"] = []string{"evil"}
	sel := NewRandomSelector(content, NewBlockFilter(blocks), 500, 1)

	for i := 0; i < 20; i++ {
		got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		for _, item := range got {
			if item.Content.CreatorID == "evil" {
				t.Fatal("blocked creator surfaced in random selection")
			}
		}
	}
}

// TestRandomLanguageWeighting checks the sampling distribution: with ten
// items per language and weights 2.0 vs 0.5, the preferred language should
// hold the top slot with probability 20/25. Over 500 draws anything beyond
// five standard deviations off is a real regression, not noise.
func TestRandomLanguageWeighting(t *testing.T) {
	content := newFakeContentRepo()
	for i := 0; i < 10; i++ {
		content.items = append(content.items,
			mkItem(fmt.Sprintf("en-%02d", i), "creator", "en", "", daysAgo(1)),
			mkItem(fmt.Sprintf("de-%02d", i), "creator", "de", "", daysAgo(1)))
	}
	sel := NewRandomSelector(content, NewBlockFilter(newFakeBlockRepo()), 500, 99)

	const trials = 500
	preferredOnTop := 0
	for i := 0; i < trials; i++ {
		got, err := sel.Select(context.Background(), Query{
			ViewerID: "viewer", Limit: 1, Language: "en", Now: testNow,
		})
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d items, want 1", len(got))
		}
		if strings.HasPrefix(got[0].Content.ID, "en-") {
			preferredOnTop++
		}
	}

	if preferredOnTop < 350 {
		t.Errorf("preferred language on top %d/%d times, expected around 400", preferredOnTop, trials)
	}
	if preferredOnTop == trials {
		t.Error("mismatched language never sampled on top; weighting looks absolute, not proportional")
	}
}
