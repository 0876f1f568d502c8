// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"sort"
)

// PopularSelector ranks eligible content by popularityScore multiplied by
// the language factor. Decay is intentionally absent from the base variant;
// the decayed variant applies the aggressive rate for surfaces that want
// trending-now semantics.
type PopularSelector struct {
	content ContentRepository
	blocks  *BlockFilter
	pool    int

	// applyDecay enables the aggressive time-decay variant.
	applyDecay bool
	decayRate  float64
}

// NewPopularSelector creates the popular strategy.
func NewPopularSelector(content ContentRepository, blocks *BlockFilter, pool int) *PopularSelector {
	return &PopularSelector{content: content, blocks: blocks, pool: pool}
}

// NewTrendingSelector creates the decayed popular variant.
func NewTrendingSelector(content ContentRepository, blocks *BlockFilter, pool int, aggressiveRate float64) *PopularSelector {
	return &PopularSelector{
		content:    content,
		blocks:     blocks,
		pool:       pool,
		applyDecay: true,
		decayRate:  aggressiveRate,
	}
}

// Name implements Selector.
func (s *PopularSelector) Name() string { return StrategyPopular }

// Select implements Selector.
func (s *PopularSelector) Select(ctx context.Context, q Query) ([]ScoredContent, error) {
	if q.Limit <= 0 {
		return []ScoredContent{}, nil
	}

	blocked, err := s.blocks.Snapshot(ctx, q.ViewerID)
	if err != nil {
		return nil, err
	}

	items, err := s.content.ListRecent(ctx, q.Category, s.pool)
	if err != nil {
		return nil, unavailable("eligible content", err)
	}

	eligible := make([]ContentItem, 0, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if !passes(item, q, blocked) {
			continue
		}
		eligible = append(eligible, item)
		ids = append(ids, item.ID)
	}
	if len(eligible) == 0 {
		return []ScoredContent{}, nil
	}

	counters, err := s.content.CountersBatch(ctx, ids)
	if err != nil {
		return nil, unavailable("interaction counters", err)
	}

	now := queryNow(q)
	results := make([]ScoredContent, 0, len(eligible))
	for _, item := range eligible {
		score := PopularityScore(counters[item.ID]) * LanguageMultiplier(item.Language, q.Language)
		if s.applyDecay {
			score *= Decay(item.CreatedAt, now, s.decayRate)
		}
		results = append(results, ScoredContent{Content: item, Score: score})
	}

	// Input arrives pre-sorted by (createdAt desc, id desc), so a stable
	// sort keeps tie order deterministic across invocations.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}
