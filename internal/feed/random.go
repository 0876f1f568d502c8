// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// RandomSelector serves discovery: a uniformly shuffled sample of eligible
// content. When language weighting is on, sampling probability is
// proportional to the language multiplier, so preferred-language content
// appears near the top more often in expectation but is never guaranteed a
// slot.
type RandomSelector struct {
	content ContentRepository
	blocks  *BlockFilter
	pool    int

	// rng is protected by rngMu for concurrent selector use.
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewRandomSelector creates the random strategy. A zero seed selects a
// fixed default so tests are reproducible.
func NewRandomSelector(content ContentRepository, blocks *BlockFilter, pool int, seed int64) *RandomSelector {
	if seed == 0 {
		seed = 42
	}
	return &RandomSelector{
		content: content,
		blocks:  blocks,
		pool:    pool,
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for feed shuffling
	}
}

// Name implements Selector.
func (s *RandomSelector) Name() string { return StrategyRandom }

// Select implements Selector.
func (s *RandomSelector) Select(ctx context.Context, q Query) ([]ScoredContent, error) {
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
	for _, item := range items {
		if passes(item, q, blocked) {
			eligible = append(eligible, item)
		}
	}
	if len(eligible) == 0 {
		return []ScoredContent{}, nil
	}

	var order []ContentItem
	if q.Language == "" {
		order = s.shuffle(eligible)
	} else {
		order = s.weightedSample(eligible, q.Language)
	}

	if len(order) > q.Limit {
		order = order[:q.Limit]
	}

	results := make([]ScoredContent, 0, len(order))
	for _, item := range order {
		results = append(results, ScoredContent{Content: item, Score: 1.0})
	}
	return results, nil
}

// shuffle returns a uniformly shuffled copy of items.
func (s *RandomSelector) shuffle(items []ContentItem) []ContentItem {
	out := make([]ContentItem, len(items))
	copy(out, items)

	s.rngMu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	s.rngMu.Unlock()
	return out
}

// weightedSample orders items by weighted sampling without replacement
// (Efraimidis-Spirakis): each item draws key u^(1/w) and items are taken in
// descending key order. Items with weight w are then w times as likely to
// occupy any given prefix slot, which realizes the "proportional to the
// language multiplier" sampling contract.
func (s *RandomSelector) weightedSample(items []ContentItem, preferredLanguage string) []ContentItem {
	type keyed struct {
		item ContentItem
		key  float64
	}

	keys := make([]keyed, len(items))
	s.rngMu.Lock()
	for i, item := range items {
		w := LanguageMultiplier(item.Language, preferredLanguage)
		u := s.rng.Float64()
		keys[i] = keyed{item: item, key: math.Pow(u, 1.0/w)}
	}
	s.rngMu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].key > keys[j].key
	})

	out := make([]ContentItem, len(keys))
	for i, k := range keys {
		out[i] = k.item
	}
	return out
}
