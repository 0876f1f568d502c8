// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"sort"
)

// NewSelector returns the freshest eligible content. Without a preferred
// language it is a plain creation-time ordering; with one, items are scored
// 1 x decay(aggressive) x languageMultiplier so preferred-language content
// outranks same-age content in another language while the recency ordering
// is preserved within a language.
type NewSelector struct {
	content   ContentRepository
	blocks    *BlockFilter
	pool      int
	decayRate float64
}

// NewNewSelector creates the new-content strategy.
func NewNewSelector(content ContentRepository, blocks *BlockFilter, pool int, aggressiveRate float64) *NewSelector {
	return &NewSelector{
		content:   content,
		blocks:    blocks,
		pool:      pool,
		decayRate: aggressiveRate,
	}
}

// Name implements Selector.
func (s *NewSelector) Name() string { return StrategyNew }

// Select implements Selector.
func (s *NewSelector) Select(ctx context.Context, q Query) ([]ScoredContent, error) {
	if q.Limit <= 0 {
		return []ScoredContent{}, nil
	}

	blocked, err := s.blocks.Snapshot(ctx, q.ViewerID)
	if err != nil {
		return nil, err
	}

	items, err := s.content.ListRecent(ctx, q.Category, s.pool)
	if err != nil {
		return nil, unavailable("recent content", err)
	}

	now := queryNow(q)
	results := make([]ScoredContent, 0, q.Limit)
	for _, item := range items {
		if !passes(item, q, blocked) {
			continue
		}
		score := 1.0
		if q.Language != "" {
			score = Decay(item.CreatedAt, now, s.decayRate) * LanguageMultiplier(item.Language, q.Language)
		}
		results = append(results, ScoredContent{Content: item, Score: score})
	}

	if q.Language != "" {
		// Stable over the (createdAt desc, id desc) repository ordering:
		// equal scores keep newest-first.
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}
