// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

// Package main is the entry point for the Reelmix feed server.
//
// Reelmix composes personalized content feeds for a short-form video and
// photo app. Five ranking strategies (following, popular, new, random,
// collaborative) are interleaved by configurable mix ratios, block
// relationships are filtered out, and composed batches are cached per
// viewer with cursor pagination.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Cache store: In-memory store, or Redis with a circuit breaker
//  3. Repositories: In-memory content/interaction/follow/block stores, optionally seeded
//  4. Feed engine: Strategy selectors, scorer, composer, and feed cache
//  5. NATS (optional): Event-driven cache invalidation consumer
//  6. HTTP Server: REST API with Prometheus metrics and health probes
//
// All long-running components run under a suture supervisor tree split into
// a messaging layer and an API layer, so a crashing consumer never restarts
// the HTTP server and vice versa.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (REELMIX_* prefix)
//   - Config file (config.yaml)
//   - Built-in defaults
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reelmix/reelmix/internal/api"
	"github.com/reelmix/reelmix/internal/cache"
	"github.com/reelmix/reelmix/internal/config"
	"github.com/reelmix/reelmix/internal/events"
	"github.com/reelmix/reelmix/internal/feed"
	"github.com/reelmix/reelmix/internal/logging"
	"github.com/reelmix/reelmix/internal/repository"
	"github.com/reelmix/reelmix/internal/supervisor"
	"github.com/reelmix/reelmix/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(cfg.Logging)

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Reelmix feed server")

	// Cache store backing the feed cache. Redis runs behind a circuit
	// breaker so a flapping instance degrades to cache misses rather than
	// request failures.
	var store feed.Store
	var redisStore *cache.Redis
	switch cfg.Cache.Backend {
	case "redis":
		redisStore = cache.NewRedis(cfg.Cache.Redis)
		store = redisStore
		if err := redisStore.Ping(context.Background()); err != nil {
			logging.Warn().Err(err).Str("addr", cfg.Cache.Redis.Addr).
				Msg("Failed to connect to Redis (will retry)")
		} else {
			logging.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("Connected to Redis successfully")
		}
	default:
		store = cache.NewMemory()
		logging.Info().Msg("Using in-memory cache store")
	}

	// In-memory repositories, optionally seeded from a JSON fixture.
	repo := repository.NewMemory()
	if cfg.Data.SeedFile != "" {
		if err := repo.LoadSeedFile(cfg.Data.SeedFile); err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Data.SeedFile).Msg("Failed to load seed file")
		}
		logging.Info().Str("path", cfg.Data.SeedFile).Msg("Seed data loaded")
	}

	engine, err := buildEngine(&cfg.Feed, store, repo)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build feed engine")
	}
	logging.Info().Msg("Feed engine initialized")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handler := api.NewHandler(engine, logging.Logger())
	if redisStore != nil {
		handler.SetPinger(redisStore)
	}

	middleware := api.NewMiddleware(api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	})
	router := api.NewRouter(handler, middleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Messaging layer services
	if cfg.NATS.Enabled {
		consumer := events.NewConsumer(events.Config{
			URL:           cfg.NATS.URL,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
			QueueGroup:    cfg.NATS.QueueGroup,
			ReconnectWait: cfg.NATS.ReconnectWait,
			MaxReconnects: cfg.NATS.MaxReconnects,
		}, engine, logging.Logger())
		tree.AddMessagingService(consumer)
		logging.Info().Str("url", cfg.NATS.URL).Msg("NATS invalidation consumer added to supervisor tree")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// buildEngine wires the block filter, the five strategy selectors, and the
// feed cache into an engine. The in-memory repository satisfies every
// repository port; production deployments substitute their own stores here.
func buildEngine(cfg *feed.Config, store feed.Store, repo *repository.Memory) (*feed.Engine, error) {
	logger := logging.Logger()
	blocks := feed.NewBlockFilter(repo)
	feedCache := feed.NewCache(store, cfg.Cache)

	pool := cfg.Limits.CandidatePool
	selectors := []feed.Selector{
		feed.NewFollowingSelector(repo, repo, blocks),
		feed.NewPopularSelector(repo, blocks, pool),
		feed.NewNewSelector(repo, blocks, pool, cfg.Decay.AggressiveRate),
		feed.NewRandomSelector(repo, blocks, pool, cfg.Seed),
		feed.NewCollaborativeSelector(repo, repo, blocks, cfg.CF, cfg.Decay.GentleRate, logger),
	}

	return feed.NewEngine(cfg, logger, repo, blocks, feedCache, selectors...)
}
