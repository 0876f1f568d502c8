// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Engine composes personalized feeds by fanning a request out to the
// registered strategy selectors, interleaving their ranked results by the
// configured mix ratios, and paginating the merged stream.
//
// Two pagination modes exist. A following-only feed has a total
// deterministic order (publication time descending) and uses keyset
// cursors, so a page is resumable even hours later. Every mixed or ranked
// feed instead uses batch cursors: page N is defined as "the best items
// not shown in batches 0..N-1", with the already-shown set rebuilt from
// the feed cache or recomputed when entries have expired. The cache is an
// optimization only; with it disabled the engine produces identical pages,
// just slower.
type Engine struct {
	cfg       *Config
	selectors map[string]Selector
	content   ContentRepository
	blocks    *BlockFilter
	cache     *Cache
	logger    zerolog.Logger

	composeRequests   atomic.Int64
	recommendRequests atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	errorCount        atomic.Int64
}

// Metrics is a point-in-time snapshot of the engine counters.
type Metrics struct {
	ComposeRequests   int64 `json:"compose_requests"`
	RecommendRequests int64 `json:"recommend_requests"`
	CacheHits         int64 `json:"cache_hits"`
	CacheMisses       int64 `json:"cache_misses"`
	Errors            int64 `json:"errors"`
}

// NewEngine validates the configuration and wires the selectors. Every
// strategy carrying a positive mix ratio must be registered; a missing one
// would silently skew the composed mix, so it fails construction instead.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(
	cfg *Config,
	logger zerolog.Logger,
	content ContentRepository,
	blocks *BlockFilter,
	cache *Cache,
	selectors ...Selector,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	byName := make(map[string]Selector, len(selectors))
	for _, sel := range selectors {
		byName[sel.Name()] = sel
	}
	for name, ratio := range cfg.Mix {
		if ratio <= 0 {
			continue
		}
		if _, ok := byName[name]; !ok {
			return nil, invalidArg("mix references unregistered strategy %q", name)
		}
	}
	return &Engine{
		cfg:       cfg.Clone(),
		selectors: byName,
		content:   content,
		blocks:    blocks,
		cache:     cache,
		logger:    logger.With().Str("component", "feed_engine").Logger(),
	}, nil
}

// ComposeFeed produces one feed page for the viewer.
func (e *Engine) ComposeFeed(ctx context.Context, req ComposeRequest) (*FeedPage, error) {
	e.composeRequests.Add(1)
	start := time.Now()

	limit, err := e.resolveLimit(req.Limit)
	if err != nil {
		return nil, e.fail(err)
	}
	cur, err := DecodeCursor(req.Cursor)
	if err != nil {
		return nil, e.fail(err)
	}
	ratios, err := e.resolveMix(req.Mix)
	if err != nil {
		return nil, e.fail(err)
	}
	if req.ViewerID == "" {
		return nil, e.fail(invalidArg("viewer id is required"))
	}

	q := Query{
		ViewerID:        req.ViewerID,
		Limit:           limit,
		Category:        req.Category,
		ExcludeCategory: req.ExcludeCategory,
		Language:        req.Language,
		Cursor:          cur,
		Now:             time.Now(),
	}

	var page *FeedPage
	if len(ratios) == 1 && ratios[StrategyFollowing] > 0 {
		page, err = e.composeKeyset(ctx, q)
	} else {
		page, err = e.composeBatched(ctx, q, ratios, req.Mix == "" || req.Mix == "balanced")
	}
	if err != nil {
		return nil, e.fail(err)
	}

	e.logger.Debug().
		Str("viewer_id", req.ViewerID).
		Int("count", page.Count).
		Bool("has_next", page.HasNext).
		Dur("duration", time.Since(start)).
		Msg("feed composed")
	return page, nil
}

// Recommend runs the collaborative-filtering strategy on its own, outside
// any mix. Cold-start viewers receive an empty list.
func (e *Engine) Recommend(ctx context.Context, req RecommendRequest) ([]ScoredContent, error) {
	e.recommendRequests.Add(1)

	if req.ViewerID == "" {
		return nil, e.fail(invalidArg("viewer id is required"))
	}
	limit, err := e.resolveLimit(req.Limit)
	if err != nil {
		return nil, e.fail(err)
	}
	sel, ok := e.selectors[StrategyCollaborative]
	if !ok {
		return nil, e.fail(invalidArg("collaborative strategy is not registered"))
	}

	sctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.SelectTimeout)
	defer cancel()

	items, err := sel.Select(sctx, Query{
		ViewerID:        req.ViewerID,
		Limit:           limit,
		Category:        req.Category,
		ExcludeCategory: req.ExcludeCategory,
		Language:        req.Language,
		Now:             time.Now(),
	})
	if err != nil {
		return nil, e.fail(err)
	}
	return items, nil
}

// Refresh drops the viewer's cached feed batches for one category filter
// so the next request recomputes from live data.
func (e *Engine) Refresh(ctx context.Context, viewerID string, category Category) error {
	if viewerID == "" {
		return e.fail(invalidArg("viewer id is required"))
	}
	if err := e.cache.Refresh(ctx, viewerID, category); err != nil {
		return e.fail(unavailable("feed cache refresh", err))
	}
	return nil
}

// InvalidateUser drops every cached batch for a viewer. Called when block
// lists or recorded interactions change.
func (e *Engine) InvalidateUser(ctx context.Context, viewerID string) error {
	if viewerID == "" {
		return e.fail(invalidArg("viewer id is required"))
	}
	if err := e.cache.InvalidateUser(ctx, viewerID); err != nil {
		return e.fail(unavailable("feed cache invalidation", err))
	}
	return nil
}

// Snapshot returns the current engine counters.
func (e *Engine) Snapshot() Metrics {
	return Metrics{
		ComposeRequests:   e.composeRequests.Load(),
		RecommendRequests: e.recommendRequests.Load(),
		CacheHits:         e.cacheHits.Load(),
		CacheMisses:       e.cacheMisses.Load(),
		Errors:            e.errorCount.Load(),
	}
}

func (e *Engine) fail(err error) error {
	e.errorCount.Add(1)
	return err
}

func (e *Engine) resolveLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, invalidArg("limit must not be negative, got %d", limit)
	case limit == 0:
		return e.cfg.Limits.DefaultLimit, nil
	case limit > e.cfg.Limits.MaxLimit:
		return e.cfg.Limits.MaxLimit, nil
	default:
		return limit, nil
	}
}

// resolveMix maps the request's mix selector to normalized strategy ratios:
// the configured balanced mix by default, or a single strategy at full
// weight when named explicitly.
func (e *Engine) resolveMix(mix string) (map[string]float64, error) {
	if mix == "" || mix == "balanced" {
		return e.cfg.normalizedMix(), nil
	}
	if _, ok := e.selectors[mix]; !ok {
		return nil, invalidArg("unknown mix %q", mix)
	}
	return map[string]float64{mix: 1.0}, nil
}

// composeKeyset serves a following-only feed with keyset pagination: one
// extra item is requested to learn whether a next page exists, and the
// cursor records the last returned (created_at, id) pair.
func (e *Engine) composeKeyset(ctx context.Context, q Query) (*FeedPage, error) {
	sel, ok := e.selectors[StrategyFollowing]
	if !ok {
		return nil, invalidArg("following strategy is not registered")
	}

	limit := q.Limit
	q.Limit = limit + 1

	sctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.SelectTimeout)
	defer cancel()

	items, err := sel.Select(sctx, q)
	if err != nil {
		return nil, err
	}

	hasNext := len(items) > limit
	if hasNext {
		items = items[:limit]
	}

	page := &FeedPage{Items: items, HasNext: hasNext, Count: len(items)}
	if hasNext && len(items) > 0 {
		last := items[len(items)-1].Content
		at := last.CreatedAt
		page.NextCursor = (&Cursor{LastID: last.ID, LastCreatedAt: &at}).Encode()
	}
	return page, nil
}

// composeBatched serves one batch of a mixed feed. The already-shown set
// for batch N is the union of batches 0..N-1, taken from the cache where
// entries survive and recomputed where they do not, so expiry changes
// latency but never correctness. cacheable is false for explicit
// single-strategy mixes, whose pages the batch key scheme does not encode.
func (e *Engine) composeBatched(ctx context.Context, q Query, ratios map[string]float64, cacheable bool) (*FeedPage, error) {
	batch := 0
	if q.Cursor != nil {
		batch = q.Cursor.Batch
	}

	exclude := make(map[string]struct{})
	var (
		final   *CachedBatch
		fromHit bool
	)
	for b := 0; b <= batch; b++ {
		key := e.cache.BatchKey(q.ViewerID, q.Category, q.Language, b)

		var cached *CachedBatch
		if cacheable {
			got, ok, err := e.cache.GetBatch(ctx, key)
			if err != nil {
				e.logger.Warn().Err(err).Str("key", key).Msg("feed cache read failed, recomputing")
			}
			if ok {
				cached = got
			}
		}
		if cached == nil {
			bq := q
			bq.Exclude = exclude
			items, hasNext, err := e.computeBatch(ctx, bq, ratios)
			if err != nil {
				return nil, err
			}
			cached = toCachedBatch(items, hasNext)
			if cacheable {
				if err := e.cache.PutBatch(ctx, key, cached); err != nil {
					e.logger.Warn().Err(err).Str("key", key).Msg("feed cache write failed")
				}
			}
			if b == batch {
				// Freshly computed items need no re-hydration.
				return e.finishBatched(batch, items, cached.HasNext, false)
			}
		} else if b == batch {
			final = cached
			fromHit = true
		}

		for _, entry := range cached.Entries {
			exclude[entry.ID] = struct{}{}
		}
	}

	items, err := e.hydrateBatch(ctx, q, final)
	if err != nil {
		return nil, err
	}
	return e.finishBatched(batch, items, final.HasNext, fromHit)
}

func (e *Engine) finishBatched(batch int, items []ScoredContent, hasNext, fromHit bool) (*FeedPage, error) {
	if fromHit {
		e.cacheHits.Add(1)
	} else {
		e.cacheMisses.Add(1)
	}

	page := &FeedPage{Items: items, HasNext: hasNext, Count: len(items)}
	if hasNext {
		page.NextCursor = (&Cursor{Batch: batch + 1}).Encode()
	}
	return page, nil
}

// hydrateBatch turns a cached id list back into served items: metadata is
// re-fetched in one batch call and every item is re-checked against the
// viewer's current block lists, so a block applied after the batch was
// cached still takes effect immediately.
func (e *Engine) hydrateBatch(ctx context.Context, q Query, batch *CachedBatch) ([]ScoredContent, error) {
	if len(batch.Entries) == 0 {
		return []ScoredContent{}, nil
	}

	blocked, err := e.blocks.Snapshot(ctx, q.ViewerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(batch.Entries))
	for i, entry := range batch.Entries {
		ids[i] = entry.ID
	}
	metadata, err := e.content.FindMetadataBatch(ctx, ids)
	if err != nil {
		return nil, unavailable("cached batch metadata", err)
	}

	hq := q
	hq.Exclude = nil
	items := make([]ScoredContent, 0, len(batch.Entries))
	for _, entry := range batch.Entries {
		item, ok := metadata[entry.ID]
		if !ok {
			continue
		}
		if !passes(item, hq, blocked) {
			continue
		}
		items = append(items, ScoredContent{Content: item, Score: entry.Score})
	}
	return items, nil
}

// computeBatch fans the query out to every strategy in the mix, then
// interleaves the ranked results.
func (e *Engine) computeBatch(ctx context.Context, q Query, ratios map[string]float64) ([]ScoredContent, bool, error) {
	names := make([]string, 0, len(ratios))
	for _, name := range StrategyOrder {
		if ratios[name] > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return []ScoredContent{}, false, nil
	}

	// Each strategy is asked for a full page plus one so the interleave can
	// backfill underfilled strategies and detect a next page.
	sq := q
	sq.Limit = q.Limit + 1

	results := make([][]ScoredContent, len(names))
	sctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.SelectTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(sctx)
	for i, name := range names {
		sel := e.selectors[name]
		g.Go(func() error {
			items, err := sel.Select(gctx, sq)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	return interleave(names, results, ratios, q.Limit)
}

// interleave merges per-strategy ranked lists into one page using weighted
// round-robin in the fixed strategy order, deduplicating by content id.
// Strategies whose allocation is exhausted are skipped; a second pass
// backfills remaining slots from whatever is left, so one empty strategy
// never shortens the page while others still have candidates.
func interleave(names []string, results [][]ScoredContent, ratios map[string]float64, limit int) ([]ScoredContent, bool, error) {
	alloc := allocate(names, ratios, limit)
	idx := make([]int, len(names))
	taken := make([]int, len(names))
	seen := make(map[string]struct{}, limit)
	page := make([]ScoredContent, 0, limit)

	next := func(i int) (ScoredContent, bool) {
		for idx[i] < len(results[i]) {
			item := results[i][idx[i]]
			idx[i]++
			if _, dup := seen[item.Content.ID]; dup {
				continue
			}
			return item, true
		}
		return ScoredContent{}, false
	}

	for pass := 0; pass < 2 && len(page) < limit; pass++ {
		for progress := true; progress && len(page) < limit; {
			progress = false
			for i := range names {
				if len(page) >= limit {
					break
				}
				if pass == 0 && taken[i] >= alloc[i] {
					continue
				}
				item, ok := next(i)
				if !ok {
					continue
				}
				seen[item.Content.ID] = struct{}{}
				page = append(page, item)
				taken[i]++
				progress = true
			}
		}
	}

	hasNext := false
	if len(page) == limit {
		for i := range names {
			for _, item := range results[i][idx[i]:] {
				if _, dup := seen[item.Content.ID]; !dup {
					hasNext = true
					break
				}
			}
			if hasNext {
				break
			}
		}
	}
	return page, hasNext, nil
}

// allocate splits the page size across strategies proportionally to their
// ratios, handing leftover slots out one at a time in strategy order.
func allocate(names []string, ratios map[string]float64, limit int) []int {
	alloc := make([]int, len(names))
	assigned := 0
	for i, name := range names {
		alloc[i] = int(math.Floor(ratios[name] * float64(limit)))
		assigned += alloc[i]
	}
	for i := 0; assigned < limit; i = (i + 1) % len(names) {
		alloc[i]++
		assigned++
	}
	return alloc
}

func toCachedBatch(items []ScoredContent, hasNext bool) *CachedBatch {
	entries := make([]BatchEntry, len(items))
	for i, item := range items {
		entries[i] = BatchEntry{ID: item.Content.ID, Score: item.Score}
	}
	return &CachedBatch{Entries: entries, HasNext: hasNext}
}
