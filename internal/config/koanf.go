// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where the config file is searched, first match
// wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmix/config.yaml",
	"/etc/reelmix/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "REELMIX_CONFIG"

// envPrefix marks environment variables this service reads.
const envPrefix = "REELMIX_"

// Load builds the configuration from defaults, an optional YAML file and
// REELMIX_-prefixed environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the config file to use, or "" for defaults-only
// operation.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps flat environment variable names (prefix stripped,
// lowercased) to nested config paths. Multi-word leaf names make a naive
// underscore-to-dot translation ambiguous, so the mapping is explicit.
var envMappings = map[string]string{
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"environment":             "server.environment",
	"cors_origins":            "server.cors_origins",
	"rate_limit_reqs":         "server.rate_limit_reqs",
	"rate_limit_window":       "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"cache_backend":      "cache.backend",
	"redis_addr":         "cache.redis.addr",
	"redis_password":     "cache.redis.password",
	"redis_db":           "cache.redis.db",
	"redis_dial_timeout": "cache.redis.dial_timeout",
	"redis_scan_count":   "cache.redis.scan_count",

	"nats_enabled":        "nats.enabled",
	"nats_url":            "nats.url",
	"nats_subject_prefix": "nats.subject_prefix",
	"nats_queue_group":    "nats.queue_group",
	"nats_reconnect_wait": "nats.reconnect_wait",
	"nats_max_reconnects": "nats.max_reconnects",

	"feed_decay_aggressive_rate":     "feed.decay.aggressive_rate",
	"feed_decay_gentle_rate":         "feed.decay.gentle_rate",
	"feed_cf_max_seed_items":         "feed.cf.max_seed_items",
	"feed_cf_max_similar_users":      "feed.cf.max_similar_users_per_item",
	"feed_cf_max_items_per_user":     "feed.cf.max_items_per_similar_user",
	"feed_cf_fan_out_width":          "feed.cf.fan_out_width",
	"feed_default_limit":             "feed.limits.default_limit",
	"feed_max_limit":                 "feed.limits.max_limit",
	"feed_candidate_pool":            "feed.limits.candidate_pool",
	"feed_select_timeout":            "feed.limits.select_timeout",
	"feed_cache_enabled":             "feed.cache.enabled",
	"feed_cache_ttl":                 "feed.cache.ttl",
	"feed_seed":                      "feed.seed",
	"feed_mix_following":             "feed.mix.following",
	"feed_mix_popular":               "feed.mix.popular",
	"feed_mix_new":                   "feed.mix.new",
	"feed_mix_random":                "feed.mix.random",
	"feed_mix_collaborative":         "feed.mix.collaborative",

	"seed_file": "data.seed_file",
}

// envTransform maps REELMIX_SERVER_PORT to server.port and friends.
// Unmapped variables are dropped rather than guessed into the tree.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if path, ok := envMappings[key]; ok {
		return path
	}
	return ""
}
