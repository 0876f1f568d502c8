// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
	"sort"
	"sync"
	"time"
)

// testNow is the fixed scoring instant used across the package tests so
// decay factors are reproducible.
var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// daysAgo returns a publication instant the given number of whole days
// before testNow.
func daysAgo(days int) time.Time {
	return testNow.Add(-time.Duration(days) * 24 * time.Hour)
}

func mkItem(id, creator, lang string, cat Category, createdAt time.Time) ContentItem {
	return ContentItem{
		ID:        id,
		CreatorID: creator,
		Type:      ContentVideo,
		Category:  cat,
		Language:  lang,
		CreatedAt: createdAt,
	}
}

func idsOf(items []ScoredContent) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.Content.ID
	}
	return ids
}

// fakeContentRepo is an in-memory ContentRepository ordered by publication
// time descending with id descending as tiebreak, matching the contract
// the selectors assume.
type fakeContentRepo struct {
	mu       sync.Mutex
	items    []ContentItem
	counters map[string]InteractionCounters

	listRecentErr     error
	listByCreatorsErr error
	metadataErr       error
	countersErr       error

	metadataCalls int
}

func newFakeContentRepo(items ...ContentItem) *fakeContentRepo {
	return &fakeContentRepo{items: items, counters: make(map[string]InteractionCounters)}
}

func (r *fakeContentRepo) setCounters(id string, c InteractionCounters) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[id] = c
}

func (r *fakeContentRepo) sorted() []ContentItem {
	out := make([]ContentItem, len(r.items))
	copy(out, r.items)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *fakeContentRepo) ListRecent(_ context.Context, category Category, limit int) ([]ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listRecentErr != nil {
		return nil, r.listRecentErr
	}
	out := make([]ContentItem, 0, limit)
	for _, item := range r.sorted() {
		if item.Deleted {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeContentRepo) ListByCreators(_ context.Context, creatorIDs []string, after *Cursor, limit int) ([]ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listByCreatorsErr != nil {
		return nil, r.listByCreatorsErr
	}
	want := make(map[string]struct{}, len(creatorIDs))
	for _, id := range creatorIDs {
		want[id] = struct{}{}
	}
	out := make([]ContentItem, 0, limit)
	for _, item := range r.sorted() {
		if item.Deleted {
			continue
		}
		if _, ok := want[item.CreatorID]; !ok {
			continue
		}
		if !after.After(item.CreatedAt, item.ID) {
			continue
		}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeContentRepo) FindMetadataBatch(_ context.Context, ids []string) (map[string]ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadataCalls++
	if r.metadataErr != nil {
		return nil, r.metadataErr
	}
	byID := make(map[string]ContentItem, len(r.items))
	for _, item := range r.items {
		byID[item.ID] = item
	}
	out := make(map[string]ContentItem, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (r *fakeContentRepo) CountersBatch(_ context.Context, ids []string) (map[string]InteractionCounters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countersErr != nil {
		return nil, r.countersErr
	}
	out := make(map[string]InteractionCounters, len(ids))
	for _, id := range ids {
		out[id] = r.counters[id]
	}
	return out, nil
}

// fakeInteractionRepo is an in-memory InteractionRepository. Per-user
// errors let collaborative-filtering tests fail exactly one similar-user
// fetch.
type fakeInteractionRepo struct {
	mu             sync.Mutex
	seeds          map[string][]SeedInteraction
	usersByContent map[string][]string
	byUser         map[string][]SeedInteraction

	seedErr          error
	usersErr         error
	byUserErrFor     map[string]error
	byUserFetchCount int
}

func newFakeInteractionRepo() *fakeInteractionRepo {
	return &fakeInteractionRepo{
		seeds:          make(map[string][]SeedInteraction),
		usersByContent: make(map[string][]string),
		byUser:         make(map[string][]SeedInteraction),
		byUserErrFor:   make(map[string]error),
	}
}

// record stores one interaction in all three read models.
func (r *fakeInteractionRepo) record(userID, contentID string, t InteractionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it := SeedInteraction{UserID: userID, ContentID: contentID, Type: t, OccurredAt: testNow}
	r.seeds[userID] = append(r.seeds[userID], it)
	r.byUser[userID] = append(r.byUser[userID], it)
	r.usersByContent[contentID] = append(r.usersByContent[contentID], userID)
}

func (r *fakeInteractionRepo) FindSeedInteractions(_ context.Context, userID string, limit int) ([]SeedInteraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seedErr != nil {
		return nil, r.seedErr
	}
	out := r.seeds[userID]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeInteractionRepo) FindUsersByContent(_ context.Context, contentID string, _ InteractionType, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usersErr != nil {
		return nil, r.usersErr
	}
	out := r.usersByContent[contentID]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeInteractionRepo) FindByUser(_ context.Context, userID string, limit int) ([]SeedInteraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUserFetchCount++
	if err, ok := r.byUserErrFor[userID]; ok {
		return nil, err
	}
	out := r.byUser[userID]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeFollowRepo is an in-memory FollowRepository.
type fakeFollowRepo struct {
	following map[string][]string
	err       error
}

func (r *fakeFollowRepo) FollowingIDs(_ context.Context, userID string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.following[userID], nil
}

// fakeBlockRepo is an in-memory BlockRepository.
type fakeBlockRepo struct {
	users   map[string][]string
	content map[string][]string

	userErr    error
	contentErr error
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{users: make(map[string][]string), content: make(map[string][]string)}
}

func (r *fakeBlockRepo) BlockedUserIDs(_ context.Context, userID string) ([]string, error) {
	if r.userErr != nil {
		return nil, r.userErr
	}
	return r.users[userID], nil
}

func (r *fakeBlockRepo) BlockedContentIDs(_ context.Context, userID string) ([]string, error) {
	if r.contentErr != nil {
		return nil, r.contentErr
	}
	return r.content[userID], nil
}

// memStore is a minimal in-memory Store for cache tests. Entries never
// expire unless expireAll is called.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	raw, ok := s.data[key]
	return raw, ok, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.data {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.data, key)
		}
	}
	return nil
}

func (s *memStore) expireAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
}
