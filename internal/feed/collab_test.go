// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func testCFConfig() CFConfig {
	return CFConfig{
		MaxSeedItems:           100,
		MaxSimilarUsersPerItem: 50,
		MaxItemsPerSimilarUser: 20,
		FanOutWidth:            4,
	}
}

func newCFSelector(interactions *fakeInteractionRepo, content *fakeContentRepo, blocks *fakeBlockRepo) *CollaborativeSelector {
	return NewCollaborativeSelector(
		interactions, content, NewBlockFilter(blocks),
		testCFConfig(), 0.02, zerolog.Nop(),
	)
}

// cfFixture builds the canonical neighborhood: the viewer liked c1 and
// saved c2; user-b (similar via c1) liked c3 and shared c5; user-c
// (similar via c2) liked c4.
func cfFixture() (*fakeInteractionRepo, *fakeContentRepo) {
	interactions := newFakeInteractionRepo()
	interactions.record("viewer", "c1", InteractionLike)
	interactions.record("viewer", "c2", InteractionSave)
	interactions.record("user-b", "c1", InteractionLike)
	interactions.record("user-b", "c3", InteractionLike)
	interactions.record("user-b", "c5", InteractionShare)
	interactions.record("user-c", "c2", InteractionSave)
	interactions.record("user-c", "c4", InteractionLike)

	content := newFakeContentRepo(
		mkItem("c1", "u1", "", "", daysAgo(0)),
		mkItem("c2", "u2", "", "", daysAgo(0)),
		mkItem("c3", "u3", "", "", daysAgo(0)),
		mkItem("c4", "u4", "", "", daysAgo(0)),
		mkItem("c5", "u5", "", "", daysAgo(0)),
	)
	return interactions, content
}

func TestCollaborativeRanking(t *testing.T) {
	interactions, content := cfFixture()
	sel := newCFSelector(interactions, content, newFakeBlockRepo())

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	// Share (2.0) outranks the likes (1.0); among the tied likes the
	// first-discovered candidate keeps its place.
	want := []string{"c5", "c3", "c4"}
	if fmt.Sprint(idsOf(got)) != fmt.Sprint(want) {
		t.Fatalf("Select() = %v, want %v", idsOf(got), want)
	}

	wantScores := []float64{2.0, 1.0, 1.0}
	for i, item := range got {
		if math.Abs(item.Score-wantScores[i]) > scoreEpsilon {
			t.Errorf("score[%d] = %f, want %f", i, item.Score, wantScores[i])
		}
	}

	// The viewer's own seed items must never come back.
	for _, item := range got {
		if item.Content.ID == "c1" || item.Content.ID == "c2" {
			t.Errorf("seed item %s recommended back to the viewer", item.Content.ID)
		}
	}

	if content.metadataCalls != 1 {
		t.Errorf("metadata fetched in %d calls, want one batch", content.metadataCalls)
	}
}

func TestCollaborativeColdStart(t *testing.T) {
	interactions := newFakeInteractionRepo()
	content := newFakeContentRepo()
	sel := newCFSelector(interactions, content, newFakeBlockRepo())

	got, err := sel.Select(context.Background(), Query{ViewerID: "nobody", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("cold start must not error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Select() = %v, want empty", idsOf(got))
	}
}

func TestCollaborativeViewsAreNotSeeds(t *testing.T) {
	interactions := newFakeInteractionRepo()
	interactions.record("viewer", "c1", InteractionView)
	interactions.record("user-b", "c1", InteractionLike)
	interactions.record("user-b", "c9", InteractionLike)
	content := newFakeContentRepo(mkItem("c9", "u9", "", "", daysAgo(0)))
	sel := newCFSelector(interactions, content, newFakeBlockRepo())

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("view-only history produced recommendations: %v", idsOf(got))
	}
}

func TestCollaborativeCommentOnlyCandidateDropped(t *testing.T) {
	interactions := newFakeInteractionRepo()
	interactions.record("viewer", "c1", InteractionLike)
	interactions.record("user-b", "c1", InteractionLike)
	interactions.record("user-b", "c-chatty", InteractionComment)
	content := newFakeContentRepo(mkItem("c-chatty", "u9", "", "", daysAgo(0)))
	sel := newCFSelector(interactions, content, newFakeBlockRepo())

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("comment-only candidate survived with zero score: %v", idsOf(got))
	}
}

func TestCollaborativeSkipsFailedSimilarUser(t *testing.T) {
	interactions, content := cfFixture()
	interactions.byUserErrFor["user-b"] = errors.New("shard down")
	sel := newCFSelector(interactions, content, newFakeBlockRepo())

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("one failed similar user must not fail the feed, got %v", err)
	}
	if fmt.Sprint(idsOf(got)) != fmt.Sprint([]string{"c4"}) {
		t.Errorf("Select() = %v, want [c4] from the surviving neighbor", idsOf(got))
	}
	if sel.SkippedUserFetches() != 1 {
		t.Errorf("SkippedUserFetches() = %d, want 1", sel.SkippedUserFetches())
	}
}

func TestCollaborativeFatalStages(t *testing.T) {
	t.Run("seed retrieval failure", func(t *testing.T) {
		interactions, content := cfFixture()
		interactions.seedErr = errors.New("interactions down")
		sel := newCFSelector(interactions, content, newFakeBlockRepo())

		_, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
		if !errors.Is(err, ErrDependencyUnavailable) {
			t.Errorf("Select() error = %v, want ErrDependencyUnavailable", err)
		}
	})

	t.Run("similar user discovery failure", func(t *testing.T) {
		interactions, content := cfFixture()
		interactions.usersErr = errors.New("index down")
		sel := newCFSelector(interactions, content, newFakeBlockRepo())

		_, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
		if !errors.Is(err, ErrDependencyUnavailable) {
			t.Errorf("Select() error = %v, want ErrDependencyUnavailable", err)
		}
	})

	t.Run("metadata join failure", func(t *testing.T) {
		interactions, content := cfFixture()
		content.metadataErr = errors.New("content db down")
		sel := newCFSelector(interactions, content, newFakeBlockRepo())

		_, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
		if !errors.Is(err, ErrDependencyUnavailable) {
			t.Errorf("Select() error = %v, want ErrDependencyUnavailable", err)
		}
	})
}

func TestCollaborativeBlockFiltering(t *testing.T) {
	interactions, content := cfFixture()
	blocks := newFakeBlockRepo()
	blocks.content["viewer"] = []string{"c5"}
	blocks.users["viewer"] = []string{"u3"}
	sel := newCFSelector(interactions, content, blocks)

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	// c5 blocked directly, c3's creator blocked; only c4 remains.
	if fmt.Sprint(idsOf(got)) != fmt.Sprint([]string{"c4"}) {
		t.Errorf("Select() = %v, want [c4]", idsOf(got))
	}
}

func TestCollaborativeDeletedAndMissingDropped(t *testing.T) {
	interactions, _ := cfFixture()
	deleted := mkItem("c3", "u3", "", "", daysAgo(0))
	deleted.Deleted = true
	// c5 has no metadata row at all.
	content := newFakeContentRepo(deleted, mkItem("c4", "u4", "", "", daysAgo(0)))
	sel := newCFSelector(interactions, content, newFakeBlockRepo())

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if fmt.Sprint(idsOf(got)) != fmt.Sprint([]string{"c4"}) {
		t.Errorf("Select() = %v, want [c4]", idsOf(got))
	}
}

func TestCollaborativeLanguageAndDecay(t *testing.T) {
	interactions := newFakeInteractionRepo()
	interactions.record("viewer", "c1", InteractionLike)
	interactions.record("user-b", "c1", InteractionLike)
	interactions.record("user-b", "c-en", InteractionLike)
	interactions.record("user-b", "c-de", InteractionLike)
	content := newFakeContentRepo(
		mkItem("c-en", "u1", "en", "", daysAgo(30)),
		mkItem("c-de", "u2", "de", "", daysAgo(0)),
	)
	sel := newCFSelector(interactions, content, newFakeBlockRepo())

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Language: "en", Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}

	// 1.0 (like) x 2.0 (match) x e^-0.6 (30 days gentle) beats
	// 1.0 x 0.5 x 1.0 for the fresh mismatch.
	wantEn := 2.0 * math.Exp(-0.60)
	if got[0].Content.ID != "c-en" {
		t.Fatalf("top = %s, want c-en", got[0].Content.ID)
	}
	if math.Abs(got[0].Score-wantEn) > scoreEpsilon {
		t.Errorf("c-en score = %f, want %f", got[0].Score, wantEn)
	}
	if math.Abs(got[1].Score-0.5) > scoreEpsilon {
		t.Errorf("c-de score = %f, want 0.5", got[1].Score)
	}
}

func TestCollaborativeWeightsAccumulate(t *testing.T) {
	interactions := newFakeInteractionRepo()
	interactions.record("viewer", "c1", InteractionLike)
	interactions.record("user-b", "c1", InteractionLike)
	interactions.record("user-c", "c1", InteractionLike)
	// Both neighbors touched c9: like from one, save from the other.
	interactions.record("user-b", "c9", InteractionLike)
	interactions.record("user-c", "c9", InteractionSave)
	content := newFakeContentRepo(mkItem("c9", "u9", "", "", daysAgo(0)))
	sel := newCFSelector(interactions, content, newFakeBlockRepo())

	got, err := sel.Select(context.Background(), Query{ViewerID: "viewer", Limit: 10, Now: testNow})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d items, want 1", len(got))
	}
	if math.Abs(got[0].Score-2.5) > scoreEpsilon {
		t.Errorf("accumulated score = %f, want 2.5 (1.0 like + 1.5 save)", got[0].Score)
	}
}
