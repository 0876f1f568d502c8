// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package feed

import (
	"fmt"
	"time"
)

// Config contains all tunables of the feed core.
type Config struct {
	// Mix is the strategy ratio mix for composed feeds, keyed by strategy
	// name. Ratios are normalized at runtime and need not sum to 1.
	Mix map[string]float64 `json:"mix" koanf:"mix"`

	// Decay contains the per-strategy time-decay rates.
	Decay DecayConfig `json:"decay" koanf:"decay"`

	// CF contains the collaborative-filtering fan-out caps.
	CF CFConfig `json:"cf" koanf:"cf"`

	// Limits contains page-size and concurrency limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache contains feed-cache parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`

	// Seed is the random seed for the random strategy. Zero selects a
	// fixed default so tests are deterministic.
	Seed int64 `json:"seed" koanf:"seed"`
}

// DecayConfig holds the two time-decay presets. The aggressive rate favors
// recency strongly and drives the popularity-adjacent strategies; the
// gentle rate keeps older taste matches alive in collaborative filtering.
type DecayConfig struct {
	AggressiveRate float64 `json:"aggressive_rate" koanf:"aggressive_rate"`
	GentleRate     float64 `json:"gentle_rate" koanf:"gentle_rate"`
}

// CFConfig holds the collaborative-filtering caps and fan-out width.
type CFConfig struct {
	// MaxSeedItems caps the viewer's own interactions fetched as seeds.
	MaxSeedItems int `json:"max_seed_items" koanf:"max_seed_items"`

	// MaxSimilarUsersPerItem caps the users fetched per seed item.
	MaxSimilarUsersPerItem int `json:"max_similar_users_per_item" koanf:"max_similar_users_per_item"`

	// MaxItemsPerSimilarUser caps the interactions fetched per similar user.
	MaxItemsPerSimilarUser int `json:"max_items_per_similar_user" koanf:"max_items_per_similar_user"`

	// FanOutWidth bounds the parallelism of the per-seed and
	// per-similar-user fetch fan-outs.
	FanOutWidth int `json:"fan_out_width" koanf:"fan_out_width"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit is the page size applied when a request leaves Limit
	// at zero.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit is the hard page-size ceiling.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// CandidatePool is how many eligible items a ranking strategy pulls
	// from the repository before scoring and truncating to the page size.
	CandidatePool int `json:"candidate_pool" koanf:"candidate_pool"`

	// SelectTimeout bounds one strategy selector invocation.
	SelectTimeout time.Duration `json:"select_timeout" koanf:"select_timeout"`
}

// CacheConfig contains feed-cache parameters.
type CacheConfig struct {
	// Enabled toggles batch memoization. The engine produces identical
	// results with the cache disabled, only slower.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is the entry lifetime.
	TTL time.Duration `json:"ttl" koanf:"ttl"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Mix: map[string]float64{
			StrategyFollowing:     0.30,
			StrategyPopular:       0.25,
			StrategyNew:           0.15,
			StrategyRandom:        0.10,
			StrategyCollaborative: 0.20,
		},
		Decay: DecayConfig{
			AggressiveRate: 0.10,
			GentleRate:     0.02,
		},
		CF: CFConfig{
			MaxSeedItems:           100,
			MaxSimilarUsersPerItem: 50,
			MaxItemsPerSimilarUser: 20,
			FanOutWidth:            8,
		},
		Limits: LimitsConfig{
			DefaultLimit:  20,
			MaxLimit:      100,
			CandidatePool: 500,
			SelectTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Seed: 0,
	}
}

// Validate checks invariants the engine depends on.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	var mixSum float64
	for name, ratio := range c.Mix {
		if ratio < 0 {
			return fmt.Errorf("mix ratio for %q is negative", name)
		}
		mixSum += ratio
	}
	if len(c.Mix) > 0 && mixSum <= 0 {
		return fmt.Errorf("mix ratios sum to zero")
	}

	if c.Decay.AggressiveRate <= 0 {
		return fmt.Errorf("aggressive decay rate must be positive, got %f", c.Decay.AggressiveRate)
	}
	if c.Decay.GentleRate <= 0 {
		return fmt.Errorf("gentle decay rate must be positive, got %f", c.Decay.GentleRate)
	}

	if c.CF.MaxSeedItems <= 0 {
		return fmt.Errorf("cf max seed items must be positive, got %d", c.CF.MaxSeedItems)
	}
	if c.CF.MaxSimilarUsersPerItem <= 0 {
		return fmt.Errorf("cf max similar users per item must be positive, got %d", c.CF.MaxSimilarUsersPerItem)
	}
	if c.CF.MaxItemsPerSimilarUser <= 0 {
		return fmt.Errorf("cf max items per similar user must be positive, got %d", c.CF.MaxItemsPerSimilarUser)
	}
	if c.CF.FanOutWidth <= 0 {
		return fmt.Errorf("cf fan-out width must be positive, got %d", c.CF.FanOutWidth)
	}

	if c.Limits.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("max limit %d below default limit %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.CandidatePool < c.Limits.MaxLimit {
		return fmt.Errorf("candidate pool %d below max limit %d", c.Limits.CandidatePool, c.Limits.MaxLimit)
	}
	if c.Limits.SelectTimeout <= 0 {
		return fmt.Errorf("select timeout must be positive")
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive when caching is enabled")
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Mix = make(map[string]float64, len(c.Mix))
	for name, ratio := range c.Mix {
		clone.Mix[name] = ratio
	}
	return &clone
}

// normalizedMix returns the mix ratios scaled to sum to 1, preserving only
// strategies with a positive ratio.
func (c *Config) normalizedMix() map[string]float64 {
	var sum float64
	for _, ratio := range c.Mix {
		if ratio > 0 {
			sum += ratio
		}
	}
	if sum == 0 {
		return map[string]float64{}
	}

	normalized := make(map[string]float64, len(c.Mix))
	for name, ratio := range c.Mix {
		if ratio > 0 {
			normalized[name] = ratio / sum
		}
	}
	return normalized
}
