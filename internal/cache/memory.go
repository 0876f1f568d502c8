// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// entry is one stored value with its expiration instant.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Stats tracks memory-store performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Memory is a thread-safe in-process store with per-entry TTL.
//
// Expiration is lazy on Get plus a periodic janitor sweep, so memory use is
// bounded by the working set between sweeps, not by total keys ever
// written. Safe for concurrent use from multiple goroutines.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry

	statsMu sync.Mutex
	stats   Stats

	stop chan struct{}
	once sync.Once
}

// janitorInterval is how often the background sweep removes expired
// entries that were never read again.
const janitorInterval = 5 * time.Minute

// NewMemory creates a memory store and starts its janitor goroutine. Call
// Close to stop it.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		stats:   Stats{LastCleanup: time.Now()},
		stop:    make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Get returns the value stored under key. Expired entries are removed on
// access and count as misses.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.recordMiss()
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		m.recordMiss()
		m.recordEviction()
		return nil, false, nil
	}

	m.recordHit()
	return e.data, true, nil
}

// Set stores value under key with the given TTL, overwriting any previous
// entry. The value is copied; callers may reuse their buffer.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	m.mu.Lock()
	m.entries[key] = entry{data: cp, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes the entry under key if present.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix.
func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of live plus not-yet-swept entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// GetStats returns a snapshot of the store counters.
func (m *Memory) GetStats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	s := m.stats
	s.TotalKeys = int64(m.Len())
	return s
}

// HitRate returns the hit rate as a percentage of all reads.
func (m *Memory) HitRate() float64 {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	total := m.stats.Hits + m.stats.Misses
	if total == 0 {
		return 0
	}
	return float64(m.stats.Hits) / float64(total) * 100
}

// Close stops the janitor goroutine. The store remains usable afterwards;
// expiration then happens only lazily on reads.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) sweep() {
	now := time.Now()
	evicted := int64(0)

	m.mu.Lock()
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			evicted++
		}
	}
	m.mu.Unlock()

	m.statsMu.Lock()
	m.stats.Evictions += evicted
	m.stats.LastCleanup = now
	m.statsMu.Unlock()
}

func (m *Memory) recordHit() {
	m.statsMu.Lock()
	m.stats.Hits++
	m.statsMu.Unlock()
}

func (m *Memory) recordMiss() {
	m.statsMu.Lock()
	m.stats.Misses++
	m.statsMu.Unlock()
}

func (m *Memory) recordEviction() {
	m.statsMu.Lock()
	m.stats.Evictions++
	m.statsMu.Unlock()
}
