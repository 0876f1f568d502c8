// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"testing"
	"time"
)

func testCacheConfig() CacheConfig {
	return CacheConfig{Enabled: true, TTL: 5 * time.Minute}
}

func TestCacheBatchKey(t *testing.T) {
	c := NewCache(newMemStore(), testCacheConfig())

	tests := []struct {
		name     string
		viewer   string
		category Category
		language string
		batch    int
		want     string
	}{
		{name: "fully qualified", viewer: "u1", category: CategoryMusic, language: "en", batch: 2, want: "feed:u1:music:en:b2"},
		{name: "no category", viewer: "u1", category: "", language: "en", batch: 0, want: "feed:u1:all:en:b0"},
		{name: "no language", viewer: "u1", category: CategoryMusic, language: "", batch: 0, want: "feed:u1:music:any:b0"},
		{name: "bare", viewer: "u1", category: "", language: "", batch: 0, want: "feed:u1:all:any:b0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.BatchKey(tt.viewer, tt.category, tt.language, tt.batch); got != tt.want {
				t.Errorf("BatchKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(newMemStore(), testCacheConfig())
	ctx := context.Background()
	key := c.BatchKey("u1", "", "en", 0)

	in := &CachedBatch{
		Entries: []BatchEntry{{ID: "c1", Score: 2.5}, {ID: "c2", Score: 1.0}},
		HasNext: true,
	}
	if err := c.PutBatch(ctx, key, in); err != nil {
		t.Fatalf("PutBatch() error = %v", err)
	}

	out, ok, err := c.GetBatch(ctx, key)
	if err != nil || !ok {
		t.Fatalf("GetBatch() = (%v, %v), want hit", ok, err)
	}
	if len(out.Entries) != 2 || out.Entries[0].ID != "c1" || out.Entries[0].Score != 2.5 {
		t.Errorf("GetBatch() entries = %+v", out.Entries)
	}
	if !out.HasNext {
		t.Error("HasNext lost in round trip")
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache(newMemStore(), testCacheConfig())
	_, ok, err := c.GetBatch(context.Background(), "feed:u1:all:any:b0")
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if ok {
		t.Error("GetBatch() reported a hit on an empty store")
	}
}

func TestCacheCorruptEntryBecomesMiss(t *testing.T) {
	store := newMemStore()
	c := NewCache(store, testCacheConfig())
	ctx := context.Background()
	key := c.BatchKey("u1", "", "", 0)

	_ = store.Set(ctx, key, []byte("not json"), time.Minute)

	_, ok, err := c.GetBatch(ctx, key)
	if ok {
		t.Error("corrupt entry reported as hit")
	}
	if err == nil {
		t.Error("corrupt entry should surface its decode error")
	}
	if _, stillThere, _ := store.Get(ctx, key); stillThere {
		t.Error("corrupt entry must be deleted on read")
	}
}

func TestCacheRefreshScopedToCategory(t *testing.T) {
	store := newMemStore()
	c := NewCache(store, testCacheConfig())
	ctx := context.Background()
	batch := &CachedBatch{Entries: []BatchEntry{{ID: "x"}}}

	keys := []string{
		c.BatchKey("u1", CategoryMusic, "en", 0),
		c.BatchKey("u1", CategoryMusic, "de", 1),
		c.BatchKey("u1", CategoryComedy, "en", 0),
		c.BatchKey("u2", CategoryMusic, "en", 0),
	}
	for _, key := range keys {
		if err := c.PutBatch(ctx, key, batch); err != nil {
			t.Fatalf("PutBatch(%s) error = %v", key, err)
		}
	}

	if err := c.Refresh(ctx, "u1", CategoryMusic); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	for i, wantGone := range []bool{true, true, false, false} {
		_, ok, _ := c.GetBatch(ctx, keys[i])
		if ok == wantGone {
			t.Errorf("key %s: hit=%v, want gone=%v", keys[i], ok, wantGone)
		}
	}
}

func TestCacheInvalidateUser(t *testing.T) {
	store := newMemStore()
	c := NewCache(store, testCacheConfig())
	ctx := context.Background()
	batch := &CachedBatch{Entries: []BatchEntry{{ID: "x"}}}

	mine := c.BatchKey("u1", CategoryMusic, "en", 0)
	other := c.BatchKey("u2", CategoryMusic, "en", 0)
	_ = c.PutBatch(ctx, mine, batch)
	_ = c.PutBatch(ctx, other, batch)

	if err := c.InvalidateUser(ctx, "u1"); err != nil {
		t.Fatalf("InvalidateUser() error = %v", err)
	}

	if _, ok, _ := c.GetBatch(ctx, mine); ok {
		t.Error("invalidated user's entry survived")
	}
	if _, ok, _ := c.GetBatch(ctx, other); !ok {
		t.Error("other user's entry was dropped")
	}
}

func TestCacheDisabled(t *testing.T) {
	t.Run("disabled by config", func(t *testing.T) {
		c := NewCache(newMemStore(), CacheConfig{Enabled: false})
		if c.Enabled() {
			t.Error("Enabled() = true with caching off")
		}
	})

	t.Run("nil store disables", func(t *testing.T) {
		c := NewCache(nil, testCacheConfig())
		if c.Enabled() {
			t.Error("Enabled() = true with nil store")
		}
		if err := c.PutBatch(context.Background(), "k", &CachedBatch{}); err != nil {
			t.Errorf("disabled PutBatch() error = %v", err)
		}
		if _, ok, err := c.GetBatch(context.Background(), "k"); ok || err != nil {
			t.Errorf("disabled GetBatch() = (%v, %v), want clean miss", ok, err)
		}
	})
}
