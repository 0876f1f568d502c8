// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CollaborativeSelector implements item-based collaborative filtering over
// implicit feedback: "users who engaged with what you engaged with also
// engaged with this".
//
// The pipeline has four fetch stages with explicit join barriers between
// them; the weighted-sum aggregation needs every contribution before any
// score is final, so nothing is streamed:
//
//  1. Seed retrieval: up to MaxSeedItems of the viewer's own interactions.
//     Zero seeds is a cold start and yields an empty result, not an error.
//  2. Similar-user discovery: per seed item, up to MaxSimilarUsersPerItem
//     other users who touched it, deduplicated across seeds.
//  3. Candidate aggregation: per similar user, up to MaxItemsPerSimilarUser
//     of their interactions, grouped by content id with per-type weights.
//     Seed items are discarded here - the viewer is never recommended
//     something they already engaged with.
//  4. Metadata join: one batch fetch for every surviving candidate, then
//     category/block/language filtering and final scoring.
//
// Stages 2 and 3 fan out with bounded parallelism. A seed-side failure is
// fatal; a single similar-user fetch failure in stage 3 is skipped and
// logged, trading a silently thinner recommendation set for availability.
type CollaborativeSelector struct {
	interactions InteractionRepository
	content      ContentRepository
	blocks       *BlockFilter
	cfg          CFConfig
	gentleRate   float64
	logger       zerolog.Logger

	skippedUsers atomic.Int64
}

// NewCollaborativeSelector creates the collaborative-filtering strategy.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCollaborativeSelector(
	interactions InteractionRepository,
	content ContentRepository,
	blocks *BlockFilter,
	cfg CFConfig,
	gentleRate float64,
	logger zerolog.Logger,
) *CollaborativeSelector {
	return &CollaborativeSelector{
		interactions: interactions,
		content:      content,
		blocks:       blocks,
		cfg:          cfg,
		gentleRate:   gentleRate,
		logger:       logger.With().Str("component", "cf").Logger(),
	}
}

// Name implements Selector.
func (s *CollaborativeSelector) Name() string { return StrategyCollaborative }

// SkippedUserFetches returns how many similar-user candidate fetches have
// been skipped due to errors since process start.
func (s *CollaborativeSelector) SkippedUserFetches() int64 {
	return s.skippedUsers.Load()
}

// Select implements Selector.
func (s *CollaborativeSelector) Select(ctx context.Context, q Query) ([]ScoredContent, error) {
	if q.Limit <= 0 {
		return []ScoredContent{}, nil
	}

	blocked, err := s.blocks.Snapshot(ctx, q.ViewerID)
	if err != nil {
		return nil, err
	}

	seedSet, seedIDs, err := s.fetchSeeds(ctx, q.ViewerID)
	if err != nil {
		return nil, err
	}
	if len(seedIDs) == 0 {
		// Cold start.
		return []ScoredContent{}, nil
	}

	similarUsers, err := s.discoverSimilarUsers(ctx, q.ViewerID, seedIDs)
	if err != nil {
		return nil, err
	}
	if len(similarUsers) == 0 {
		return []ScoredContent{}, nil
	}

	scores, candidateOrder := s.aggregateCandidates(ctx, similarUsers, seedSet, blocked, q)
	if len(candidateOrder) == 0 {
		return []ScoredContent{}, nil
	}

	return s.scoreCandidates(ctx, scores, candidateOrder, blocked, q)
}

// fetchSeeds retrieves the viewer's seed interactions and returns the seed
// content-id set plus the distinct seed ids in first-seen order. A failure
// is fatal: without seeds there is nothing to recommend from.
func (s *CollaborativeSelector) fetchSeeds(ctx context.Context, viewerID string) (map[string]struct{}, []string, error) {
	seeds, err := s.interactions.FindSeedInteractions(ctx, viewerID, s.cfg.MaxSeedItems)
	if err != nil {
		return nil, nil, unavailable("seed interactions", err)
	}

	seedSet := make(map[string]struct{}, len(seeds))
	seedIDs := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		// Views are ambient noise, not taste signal.
		if seed.Type == InteractionView {
			continue
		}
		if _, seen := seedSet[seed.ContentID]; seen {
			continue
		}
		seedSet[seed.ContentID] = struct{}{}
		seedIDs = append(seedIDs, seed.ContentID)
	}
	return seedSet, seedIDs, nil
}

// discoverSimilarUsers fans out one users-by-content fetch per seed item
// with bounded parallelism, then unions the results into one deduplicated
// similar-user list in deterministic (seed, fetch) order. The join barrier
// is the g.Wait: aggregation must not start on a partial user set.
func (s *CollaborativeSelector) discoverSimilarUsers(ctx context.Context, viewerID string, seedIDs []string) ([]string, error) {
	perSeed := make([][]string, len(seedIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FanOutWidth)

	for i, seedID := range seedIDs {
		g.Go(func() error {
			users, err := s.interactions.FindUsersByContent(gctx, seedID, "", s.cfg.MaxSimilarUsersPerItem)
			if err != nil {
				return unavailable("users by content", err)
			}
			perSeed[i] = users
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	similar := make([]string, 0)
	for _, users := range perSeed {
		for _, uid := range users {
			if uid == viewerID {
				continue
			}
			if _, dup := seen[uid]; dup {
				continue
			}
			seen[uid] = struct{}{}
			similar = append(similar, uid)
		}
	}
	return similar, nil
}

// aggregateCandidates fans out one interaction fetch per similar user and
// sums per-type weights grouped by content id. Per-user fetch failures are
// skipped (best-effort fan-out): the recommendation set degrades rather
// than the whole feed failing, and the skip is logged and counted so the
// degradation is observable. Seed items, blocked content ids and
// already-shown ids never become candidates.
func (s *CollaborativeSelector) aggregateCandidates(
	ctx context.Context,
	similarUsers []string,
	seedSet map[string]struct{},
	blocked *BlockSnapshot,
	q Query,
) (map[string]float64, []string) {
	perUser := make([][]SeedInteraction, len(similarUsers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FanOutWidth)

	for i, uid := range similarUsers {
		g.Go(func() error {
			items, err := s.interactions.FindByUser(gctx, uid, s.cfg.MaxItemsPerSimilarUser)
			if err != nil {
				s.skippedUsers.Add(1)
				s.logger.Warn().
					Err(err).
					Str("similar_user", uid).
					Msg("skipping similar user: candidate fetch failed")
				return nil
			}
			perUser[i] = items
			return nil
		})
	}
	// Join barrier: per-content totals need every contribution.
	//nolint:errcheck // worker funcs always return nil; failures are skipped above
	_ = g.Wait()

	scores := make(map[string]float64)
	order := make([]string, 0)
	for _, items := range perUser {
		for _, it := range items {
			if _, isSeed := seedSet[it.ContentID]; isSeed {
				continue
			}
			if blocked.BlocksContent(it.ContentID) {
				continue
			}
			if _, excluded := q.Exclude[it.ContentID]; excluded {
				continue
			}
			if _, known := scores[it.ContentID]; !known {
				order = append(order, it.ContentID)
			}
			// Comments add zero weight: they mark engagement, not liking.
			scores[it.ContentID] += it.Type.CFWeight()
		}
	}

	// Candidates that only ever collected comment weight carry no signal.
	filtered := order[:0]
	for _, id := range order {
		if scores[id] > 0 {
			filtered = append(filtered, id)
		} else {
			delete(scores, id)
		}
	}
	return scores, filtered
}

// scoreCandidates joins candidate metadata in one batch call, applies the
// category and block filters, and ranks by
// cfScore x languageMultiplier x decay(gentle).
func (s *CollaborativeSelector) scoreCandidates(
	ctx context.Context,
	scores map[string]float64,
	candidateOrder []string,
	blocked *BlockSnapshot,
	q Query,
) ([]ScoredContent, error) {
	metadata, err := s.content.FindMetadataBatch(ctx, candidateOrder)
	if err != nil {
		return nil, unavailable("candidate metadata", err)
	}

	now := queryNow(q)
	results := make([]ScoredContent, 0, len(candidateOrder))
	for _, id := range candidateOrder {
		item, ok := metadata[id]
		if !ok {
			// Content no longer available.
			continue
		}
		if !passes(item, q, blocked) {
			continue
		}

		score := scores[id] *
			LanguageMultiplier(item.Language, q.Language) *
			Decay(item.CreatedAt, now, s.gentleRate)
		results = append(results, ScoredContent{Content: item, Score: score})
	}

	// Stable over first-seen candidate order, so equal scores rank
	// identically for identical inputs.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}
