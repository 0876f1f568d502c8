// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
)

// BlockFilter exposes a viewer's block edges as lookup sets. Every strategy
// selector takes a snapshot before returning results; if the underlying
// store is unavailable the snapshot fails with ErrDependencyUnavailable and
// the whole request aborts. Returning an unfiltered feed is never an
// acceptable fallback.
type BlockFilter struct {
	blocks BlockRepository
}

// NewBlockFilter creates a block filter over the given repository.
func NewBlockFilter(blocks BlockRepository) *BlockFilter {
	return &BlockFilter{blocks: blocks}
}

// BlockSnapshot holds one viewer's blocked-user and blocked-content sets,
// fetched once per request so every strategy filters against the same view.
type BlockSnapshot struct {
	users   map[string]struct{}
	content map[string]struct{}
}

// Snapshot fetches both block sets for the viewer.
func (f *BlockFilter) Snapshot(ctx context.Context, viewerID string) (*BlockSnapshot, error) {
	userIDs, err := f.blocks.BlockedUserIDs(ctx, viewerID)
	if err != nil {
		return nil, unavailable("blocked users", err)
	}

	contentIDs, err := f.blocks.BlockedContentIDs(ctx, viewerID)
	if err != nil {
		return nil, unavailable("blocked content", err)
	}

	s := &BlockSnapshot{
		users:   make(map[string]struct{}, len(userIDs)),
		content: make(map[string]struct{}, len(contentIDs)),
	}
	for _, id := range userIDs {
		s.users[id] = struct{}{}
	}
	for _, id := range contentIDs {
		s.content[id] = struct{}{}
	}
	return s, nil
}

// BlocksUser reports whether the viewer has blocked the given user. A nil
// snapshot blocks nobody.
func (s *BlockSnapshot) BlocksUser(userID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.users[userID]
	return ok
}

// BlocksContent reports whether the viewer has blocked the given content id.
// A nil snapshot blocks nothing.
func (s *BlockSnapshot) BlocksContent(contentID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.content[contentID]
	return ok
}

// Allows reports whether a content item survives the block filter: not
// individually blocked and not authored by a blocked user.
func (s *BlockSnapshot) Allows(item ContentItem) bool {
	if s == nil {
		return true
	}
	if s.BlocksContent(item.ID) {
		return false
	}
	return !s.BlocksUser(item.CreatorID)
}
