// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package repository

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/reelmix/reelmix/internal/feed"
)

// Seed is the JSON fixture shape accepted by LoadSeedFile.
type Seed struct {
	Content      []feed.ContentItem     `json:"content"`
	Interactions []feed.SeedInteraction `json:"interactions"`
	Follows      []SeedFollow           `json:"follows"`
	Blocks       []SeedBlock            `json:"blocks"`
}

// SeedFollow is one follow edge.
type SeedFollow struct {
	FollowerID string `json:"follower_id"`
	CreatorID  string `json:"creator_id"`
}

// SeedBlock is one block edge; exactly one of BlockedID and ContentID is set.
type SeedBlock struct {
	ViewerID  string `json:"viewer_id"`
	BlockedID string `json:"blocked_id,omitempty"`
	ContentID string `json:"content_id,omitempty"`
}

// LoadSeedFile populates the repository from a JSON fixture. Interactions
// recorded here also build the aggregate counters, so popularity scoring
// works on seeded data without a separate counters section.
func (m *Memory) LoadSeedFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	m.Apply(seed)
	return nil
}

// Apply loads an already-parsed seed.
func (m *Memory) Apply(seed Seed) {
	for _, item := range seed.Content {
		m.AddContent(item)
	}
	for _, in := range seed.Interactions {
		m.RecordInteraction(in)
	}
	for _, f := range seed.Follows {
		m.Follow(f.FollowerID, f.CreatorID)
	}
	for _, b := range seed.Blocks {
		switch {
		case b.BlockedID != "":
			m.BlockUser(b.ViewerID, b.BlockedID)
		case b.ContentID != "":
			m.BlockContent(b.ViewerID, b.ContentID)
		}
	}
}
