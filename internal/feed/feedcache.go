// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// BatchEntry is one cached feed slot: the content id plus the score it was
// ranked with. Metadata is never cached; it is re-fetched on every hit so a
// soft-deleted or re-blocked item can be dropped at serve time.
type BatchEntry struct {
	ID    string  `json:"id"`
	Score float64 `json:"s"`
}

// CachedBatch is the stored form of one composed feed batch.
type CachedBatch struct {
	Entries []BatchEntry `json:"e"`
	HasNext bool         `json:"n"`
}

// Cache stores composed feed batches keyed by viewer, category filter,
// language and batch index. It is strictly an optimization: every read
// path must tolerate a miss and recompute, and cached ids are re-checked
// against the viewer's current block lists before serving.
type Cache struct {
	store   Store
	ttl     time.Duration
	enabled bool
}

// NewCache wraps a Store with the feed batch key scheme. A nil store
// disables caching regardless of cfg.
func NewCache(store Store, cfg CacheConfig) *Cache {
	return &Cache{
		store:   store,
		ttl:     cfg.TTL,
		enabled: cfg.Enabled && store != nil,
	}
}

// Enabled reports whether cache operations will touch the store.
func (c *Cache) Enabled() bool { return c != nil && c.enabled }

// BatchKey builds the cache key for one composed batch. Empty category and
// language collapse to fixed placeholders so unfiltered feeds share one
// key space per viewer.
func (c *Cache) BatchKey(viewerID string, category Category, language string, batch int) string {
	cat := string(category)
	if cat == "" {
		cat = "all"
	}
	if language == "" {
		language = "any"
	}
	var b strings.Builder
	b.WriteString("feed:")
	b.WriteString(viewerID)
	b.WriteByte(':')
	b.WriteString(cat)
	b.WriteByte(':')
	b.WriteString(language)
	b.WriteString(":b")
	b.WriteString(strconv.Itoa(batch))
	return b.String()
}

// GetBatch returns the cached batch for a key. Store errors are reported
// so the caller can log them, but semantically they are misses.
func (c *Cache) GetBatch(ctx context.Context, key string) (*CachedBatch, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var batch CachedBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		// Corrupt entry: drop it and miss.
		_ = c.store.Delete(ctx, key)
		return nil, false, err
	}
	return &batch, true, nil
}

// PutBatch stores one composed batch.
func (c *Cache) PutBatch(ctx context.Context, key string, batch *CachedBatch) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, raw, c.ttl)
}

// Refresh drops every cached batch for one viewer and category filter,
// across all languages and batch indexes.
func (c *Cache) Refresh(ctx context.Context, viewerID string, category Category) error {
	if !c.Enabled() {
		return nil
	}
	cat := string(category)
	if cat == "" {
		cat = "all"
	}
	return c.store.DeletePrefix(ctx, "feed:"+viewerID+":"+cat+":")
}

// InvalidateUser drops every cached batch for one viewer, across all
// category filters. Used when the viewer's block lists or interactions
// change.
func (c *Cache) InvalidateUser(ctx context.Context, viewerID string) error {
	if !c.Enabled() {
		return nil
	}
	return c.store.DeletePrefix(ctx, "feed:"+viewerID+":")
}
