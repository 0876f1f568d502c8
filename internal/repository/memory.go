// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

// Package repository provides an in-memory implementation of the feed
// engine's repository ports. Production deployments implement the ports
// against their own storage; this implementation backs development and
// demo instances, seeded from an optional JSON fixture file.
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/reelmix/reelmix/internal/feed"
)

// Memory implements feed.ContentRepository, feed.InteractionRepository,
// feed.FollowRepository, and feed.BlockRepository over process-local maps.
// All methods are safe for concurrent use.
type Memory struct {
	mu sync.RWMutex

	content  map[string]feed.ContentItem
	counters map[string]feed.InteractionCounters

	interactionsByUser map[string][]feed.SeedInteraction
	usersByContent     map[string][]string

	following      map[string][]string
	blockedUsers   map[string][]string
	blockedContent map[string][]string
}

// NewMemory creates an empty repository set.
func NewMemory() *Memory {
	return &Memory{
		content:            make(map[string]feed.ContentItem),
		counters:           make(map[string]feed.InteractionCounters),
		interactionsByUser: make(map[string][]feed.SeedInteraction),
		usersByContent:     make(map[string][]string),
		following:          make(map[string][]string),
		blockedUsers:       make(map[string][]string),
		blockedContent:     make(map[string][]string),
	}
}

// AddContent inserts or replaces a content item.
func (m *Memory) AddContent(item feed.ContentItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[item.ID] = item
}

// DeleteContent soft-deletes a content item if present.
func (m *Memory) DeleteContent(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.content[id]; ok {
		item.Deleted = true
		m.content[id] = item
	}
}

// SetCounters replaces the interaction counters for one content id.
func (m *Memory) SetCounters(id string, counters feed.InteractionCounters) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[id] = counters
}

// RecordInteraction appends one interaction, updating the per-user history,
// the content-to-users index, and the aggregate counters.
func (m *Memory) RecordInteraction(in feed.SeedInteraction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.interactionsByUser[in.UserID] = append(m.interactionsByUser[in.UserID], in)

	users := m.usersByContent[in.ContentID]
	seen := false
	for _, u := range users {
		if u == in.UserID {
			seen = true
			break
		}
	}
	if !seen {
		m.usersByContent[in.ContentID] = append(users, in.UserID)
	}

	c := m.counters[in.ContentID]
	switch in.Type {
	case feed.InteractionView:
		c.Views++
	case feed.InteractionLike:
		c.Likes++
	case feed.InteractionComment:
		c.Comments++
	case feed.InteractionSave:
		c.Saves++
	case feed.InteractionShare:
		c.Shares++
	}
	m.counters[in.ContentID] = c
}

// Follow records that follower follows creator.
func (m *Memory) Follow(followerID, creatorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.following[followerID] = appendUnique(m.following[followerID], creatorID)
}

// BlockUser records a user-to-user block.
func (m *Memory) BlockUser(viewerID, blockedID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockedUsers[viewerID] = appendUnique(m.blockedUsers[viewerID], blockedID)
}

// BlockContent records a user-to-content block.
func (m *Memory) BlockContent(viewerID, contentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockedContent[viewerID] = appendUnique(m.blockedContent[viewerID], contentID)
}

// ListRecent implements feed.ContentRepository.
func (m *Memory) ListRecent(_ context.Context, category feed.Category, limit int) ([]feed.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]feed.ContentItem, 0, len(m.content))
	for _, item := range m.content {
		if item.Deleted {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		items = append(items, item)
	}
	sortNewestFirst(items)
	return capItems(items, limit), nil
}

// ListByCreators implements feed.ContentRepository.
func (m *Memory) ListByCreators(_ context.Context, creatorIDs []string, after *feed.Cursor, limit int) ([]feed.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	creators := make(map[string]struct{}, len(creatorIDs))
	for _, id := range creatorIDs {
		creators[id] = struct{}{}
	}

	var items []feed.ContentItem
	for _, item := range m.content {
		if item.Deleted {
			continue
		}
		if _, ok := creators[item.CreatorID]; !ok {
			continue
		}
		if !after.After(item.CreatedAt, item.ID) {
			continue
		}
		items = append(items, item)
	}
	sortNewestFirst(items)
	return capItems(items, limit), nil
}

// FindMetadataBatch implements feed.ContentRepository. Soft-deleted items are
// still returned; consumers filter on the Deleted flag.
func (m *Memory) FindMetadataBatch(_ context.Context, ids []string) (map[string]feed.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]feed.ContentItem, len(ids))
	for _, id := range ids {
		if item, ok := m.content[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

// CountersBatch implements feed.ContentRepository.
func (m *Memory) CountersBatch(_ context.Context, ids []string) (map[string]feed.InteractionCounters, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]feed.InteractionCounters, len(ids))
	for _, id := range ids {
		if c, ok := m.counters[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// FindSeedInteractions implements feed.InteractionRepository. Views carry no
// collaborative weight and are excluded.
func (m *Memory) FindSeedInteractions(_ context.Context, userID string, limit int) ([]feed.SeedInteraction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []feed.SeedInteraction
	for _, in := range m.interactionsByUser[userID] {
		if in.Type == feed.InteractionView {
			continue
		}
		out = append(out, in)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// FindUsersByContent implements feed.InteractionRepository.
func (m *Memory) FindUsersByContent(_ context.Context, contentID string, interactionType feed.InteractionType, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, userID := range m.usersByContent[contentID] {
		if interactionType != "" && !m.userInteractedWith(userID, contentID, interactionType) {
			continue
		}
		out = append(out, userID)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// FindByUser implements feed.InteractionRepository.
func (m *Memory) FindByUser(_ context.Context, userID string, limit int) ([]feed.SeedInteraction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.interactionsByUser[userID]
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	out := make([]feed.SeedInteraction, len(history))
	copy(out, history)
	return out, nil
}

// FollowingIDs implements feed.FollowRepository.
func (m *Memory) FollowingIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyStrings(m.following[userID]), nil
}

// BlockedUserIDs implements feed.BlockRepository.
func (m *Memory) BlockedUserIDs(_ context.Context, viewerID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyStrings(m.blockedUsers[viewerID]), nil
}

// BlockedContentIDs implements feed.BlockRepository.
func (m *Memory) BlockedContentIDs(_ context.Context, viewerID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyStrings(m.blockedContent[viewerID]), nil
}

// userInteractedWith reports whether userID has an interaction of the given
// type with contentID. Callers hold the read lock.
func (m *Memory) userInteractedWith(userID, contentID string, t feed.InteractionType) bool {
	for _, in := range m.interactionsByUser[userID] {
		if in.ContentID == contentID && in.Type == t {
			return true
		}
	}
	return false
}

func sortNewestFirst(items []feed.ContentItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}

func capItems(items []feed.ContentItem, limit int) []feed.ContentItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
