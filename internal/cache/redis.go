// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// RedisConfig holds the Redis store connection parameters.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string `json:"addr" koanf:"addr"`

	// Password authenticates the connection; empty for unauthenticated
	// servers.
	Password string `json:"-" koanf:"password"`

	// DB is the logical database index.
	DB int `json:"db" koanf:"db"`

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration `json:"dial_timeout" koanf:"dial_timeout"`

	// ScanCount is the COUNT hint for SCAN during prefix deletion.
	ScanCount int64 `json:"scan_count" koanf:"scan_count"`
}

// DefaultRedisConfig returns production defaults for a local Redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:        "localhost:6379",
		DB:          0,
		DialTimeout: 5 * time.Second,
		ScanCount:   256,
	}
}

// getResult carries a Get through the typed circuit breaker.
type getResult struct {
	data  []byte
	found bool
}

// Redis adapts a Redis server to the feed store contract. All commands run
// through a circuit breaker: once the server misbehaves repeatedly, calls
// fail fast instead of stacking timeouts onto every feed request, and the
// engine falls back to recomputing batches.
type Redis struct {
	client    *redis.Client
	reads     *gobreaker.CircuitBreaker[getResult]
	writes    *gobreaker.CircuitBreaker[struct{}]
	scanCount int64
}

// NewRedis creates a Redis-backed store. The connection is lazy; a dead
// server surfaces as store errors, not as a constructor failure.
func NewRedis(cfg RedisConfig) *Redis {
	if cfg.ScanCount <= 0 {
		cfg.ScanCount = 256
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	settings := gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Redis{
		client:    client,
		reads:     gobreaker.NewCircuitBreaker[getResult](settings),
		writes:    gobreaker.NewCircuitBreaker[struct{}](settings),
		scanCount: cfg.ScanCount,
	}
}

// Get returns the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := r.reads.Execute(func() (getResult, error) {
		data, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// A miss is a successful round trip.
			return getResult{}, nil
		}
		if err != nil {
			return getResult{}, err
		}
		return getResult{data: data, found: true}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return res.data, res.found, nil
}

// Set stores value under key with the given TTL.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := r.writes.Execute(func() (struct{}, error) {
		return struct{}{}, r.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the entry under key if present.
func (r *Redis) Delete(ctx context.Context, key string) error {
	_, err := r.writes.Execute(func() (struct{}, error) {
		return struct{}{}, r.client.Del(ctx, key).Err()
	})
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix, walking
// the keyspace with SCAN so large deletions never block the server the way
// KEYS would.
func (r *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	_, err := r.writes.Execute(func() (struct{}, error) {
		var cursor uint64
		for {
			keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", r.scanCount).Result()
			if err != nil {
				return struct{}{}, err
			}
			if len(keys) > 0 {
				if err := r.client.Del(ctx, keys...).Err(); err != nil {
					return struct{}{}, err
				}
			}
			cursor = next
			if cursor == 0 {
				return struct{}{}, nil
			}
		}
	})
	if err != nil {
		return fmt.Errorf("redis delete prefix: %w", err)
	}
	return nil
}

// Ping verifies server reachability, for health checks.
func (r *Redis) Ping(ctx context.Context) error {
	_, err := r.writes.Execute(func() (struct{}, error) {
		return struct{}{}, r.client.Ping(ctx).Err()
	})
	if err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the client's connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
