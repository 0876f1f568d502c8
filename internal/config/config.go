// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

// Package config loads and validates the service configuration.
//
// Configuration is layered, lowest priority first: struct defaults, an
// optional YAML file, then REELMIX_-prefixed environment variables. Every
// value has a working default; a bare binary starts with an in-memory
// cache and no NATS connection.
package config

import (
	"fmt"
	"time"

	"github.com/reelmix/reelmix/internal/cache"
	"github.com/reelmix/reelmix/internal/feed"
	"github.com/reelmix/reelmix/internal/logging"
)

// Config is the root service configuration.
type Config struct {
	Server  ServerConfig   `json:"server" koanf:"server"`
	Logging logging.Config `json:"logging" koanf:"logging"`
	Cache   CacheConfig    `json:"cache" koanf:"cache"`
	NATS    NATSConfig     `json:"nats" koanf:"nats"`
	Data    DataConfig     `json:"data" koanf:"data"`
	Feed    feed.Config    `json:"feed" koanf:"feed"`
}

// ServerConfig holds the HTTP server parameters.
type ServerConfig struct {
	// Host is the bind address.
	Host string `json:"host" koanf:"host"`

	// Port is the listen port.
	Port int `json:"port" koanf:"port"`

	// ReadTimeout bounds reading one request including the body.
	ReadTimeout time.Duration `json:"read_timeout" koanf:"read_timeout"`

	// WriteTimeout bounds writing one response.
	WriteTimeout time.Duration `json:"write_timeout" koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful drain on termination.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout"`

	// Environment is development or production; it tunes log defaults and
	// error verbosity.
	Environment string `json:"environment" koanf:"environment"`

	// CORSOrigins lists allowed CORS origins. Empty allows none.
	CORSOrigins []string `json:"cors_origins" koanf:"cors_origins"`

	// RateLimitReqs is the per-IP request budget per RateLimitWindow.
	// Zero disables rate limiting.
	RateLimitReqs int `json:"rate_limit_reqs" koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate-limit window size.
	RateLimitWindow time.Duration `json:"rate_limit_window" koanf:"rate_limit_window"`
}

// CacheConfig selects and configures the feed-cache backend.
type CacheConfig struct {
	// Backend is memory or redis.
	Backend string `json:"backend" koanf:"backend"`

	// Redis holds the connection parameters when Backend is redis.
	Redis cache.RedisConfig `json:"redis" koanf:"redis"`
}

// NATSConfig holds the event-consumer connection parameters.
type NATSConfig struct {
	// Enabled toggles the NATS cache-invalidation consumer.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// URL is the NATS server address.
	URL string `json:"url" koanf:"url"`

	// SubjectPrefix is the prefix of all consumed subjects.
	SubjectPrefix string `json:"subject_prefix" koanf:"subject_prefix"`

	// QueueGroup distributes events across replicas; every event is
	// handled by exactly one member.
	QueueGroup string `json:"queue_group" koanf:"queue_group"`

	// ReconnectWait is the delay between reconnection attempts.
	ReconnectWait time.Duration `json:"reconnect_wait" koanf:"reconnect_wait"`

	// MaxReconnects caps reconnection attempts; negative means unlimited.
	MaxReconnects int `json:"max_reconnects" koanf:"max_reconnects"`
}

// DataConfig controls the in-memory repository backing development and demo
// deployments. Production deployments replace the repository wiring instead.
type DataConfig struct {
	// SeedFile is an optional JSON fixture loaded at startup.
	SeedFile string `json:"seed_file" koanf:"seed_file"`
}

// Default returns a Config with every field at its production default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			Environment:     "development",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: logging.DefaultConfig(),
		Cache: CacheConfig{
			Backend: "memory",
			Redis:   cache.DefaultRedisConfig(),
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			SubjectPrefix: "reelmix",
			QueueGroup:    "feed-invalidators",
			ReconnectWait: 2 * time.Second,
			MaxReconnects: -1,
		},
		Feed: *feed.DefaultConfig(),
	}
}

// Validate checks cross-field invariants the rest of the service assumes.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("environment must be development or production, got %q", c.Server.Environment)
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive when rate limiting is enabled")
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("redis backend selected but no address configured")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.NATS.Enabled {
		if c.NATS.URL == "" {
			return fmt.Errorf("nats enabled but no url configured")
		}
		if c.NATS.SubjectPrefix == "" {
			return fmt.Errorf("nats enabled but no subject prefix configured")
		}
	}

	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed config: %w", err)
	}
	return nil
}
