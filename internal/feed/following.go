// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"context"
)

// FollowingSelector returns content authored by users the viewer follows,
// newest first. It supports keyset pagination: the cursor records the
// (createdAt, id) pair of the last item served and the next page starts
// strictly after it, so replays produce no gaps or repeats as long as the
// underlying ordering is stable.
type FollowingSelector struct {
	content ContentRepository
	follows FollowRepository
	blocks  *BlockFilter
}

// NewFollowingSelector creates the following strategy.
func NewFollowingSelector(content ContentRepository, follows FollowRepository, blocks *BlockFilter) *FollowingSelector {
	return &FollowingSelector{
		content: content,
		follows: follows,
		blocks:  blocks,
	}
}

// Name implements Selector.
func (s *FollowingSelector) Name() string { return StrategyFollowing }

// Select implements Selector.
func (s *FollowingSelector) Select(ctx context.Context, q Query) ([]ScoredContent, error) {
	if q.Limit <= 0 {
		return []ScoredContent{}, nil
	}

	blocked, err := s.blocks.Snapshot(ctx, q.ViewerID)
	if err != nil {
		return nil, err
	}

	followed, err := s.follows.FollowingIDs(ctx, q.ViewerID)
	if err != nil {
		return nil, unavailable("following ids", err)
	}
	if len(followed) == 0 {
		return []ScoredContent{}, nil
	}

	// Blocked creators cannot contribute; dropping them up front also
	// shrinks the repository query.
	creators := make([]string, 0, len(followed))
	for _, id := range followed {
		if !blocked.BlocksUser(id) {
			creators = append(creators, id)
		}
	}
	if len(creators) == 0 {
		return []ScoredContent{}, nil
	}

	// The repository resumes at the cursor's keyset position. Over-fetch
	// so block/category filtering still leaves a full page in the common
	// case, and keep fetching until the page fills or the source runs out.
	fetchLimit := q.Limit * 3
	cursor := q.Cursor
	results := make([]ScoredContent, 0, q.Limit)
	for {
		items, err := s.content.ListByCreators(ctx, creators, cursor, fetchLimit)
		if err != nil {
			return nil, unavailable("content by creators", err)
		}
		for _, item := range items {
			if !passes(item, q, blocked) {
				continue
			}
			results = append(results, ScoredContent{Content: item, Score: float64(item.CreatedAt.Unix())})
			if len(results) == q.Limit {
				return results, nil
			}
		}
		if len(items) < fetchLimit {
			return results, nil
		}
		last := items[len(items)-1]
		at := last.CreatedAt
		cursor = &Cursor{LastID: last.ID, LastCreatedAt: &at}
	}
}
