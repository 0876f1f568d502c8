// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

// Package events consumes invalidation events from NATS and translates them
// into feed-cache refreshes. Subscriptions use a queue group so multiple
// Reelmix instances split the event load instead of each invalidating the
// same keys.
//
// Subjects (relative to the configured prefix):
//
//	{prefix}.content.interaction  a user liked/saved/shared/commented
//	{prefix}.user.block           a user blocked another user or a video
//	{prefix}.content.deleted      a creator removed content
//	{prefix}.feed.refresh         an explicit refresh request
//
// The cache is disposable, so event handling is best effort: a failed
// invalidation is logged and counted, never retried here. Stale batches age
// out with the TTL.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/reelmix/reelmix/internal/feed"
	"github.com/reelmix/reelmix/internal/metrics"
)

// handleTimeout bounds one event's cache invalidation.
const handleTimeout = 10 * time.Second

// Config holds the NATS consumer settings.
type Config struct {
	URL           string
	SubjectPrefix string
	QueueGroup    string
	ReconnectWait time.Duration
	MaxReconnects int
}

// Invalidator is the engine surface the consumer needs.
type Invalidator interface {
	Refresh(ctx context.Context, viewerID string, category feed.Category) error
	InvalidateUser(ctx context.Context, viewerID string) error
}

// InteractionEvent is published when a user interacts with content. The
// viewer's collaborative candidates change, so their cached batches go.
type InteractionEvent struct {
	UserID     string    `json:"user_id"`
	ContentID  string    `json:"content_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BlockEvent is published when a user blocks a creator or a piece of content.
type BlockEvent struct {
	BlockerID string `json:"blocker_id"`
	BlockedID string `json:"blocked_id,omitempty"`
	ContentID string `json:"content_id,omitempty"`
}

// ContentDeletedEvent is published when content is removed. Only the
// creator's own feed variants are invalidated eagerly; everyone else's
// cached batches drop the item at hydration time and age out with the TTL.
type ContentDeletedEvent struct {
	ContentID string `json:"content_id"`
	CreatorID string `json:"creator_id"`
}

// RefreshEvent is an explicit refresh request, category-scoped when set.
type RefreshEvent struct {
	UserID   string `json:"user_id"`
	Category string `json:"category,omitempty"`
}

// Consumer subscribes to invalidation subjects and applies them to the
// engine. It implements suture.Service via Serve.
type Consumer struct {
	cfg    Config
	engine Invalidator
	logger zerolog.Logger

	mu   sync.Mutex
	nc   *nats.Conn
	subs []*nats.Subscription
}

// NewConsumer creates a Consumer. Connection happens in Serve.
func NewConsumer(cfg Config, engine Invalidator, logger zerolog.Logger) *Consumer {
	return &Consumer{
		cfg:    cfg,
		engine: engine,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Serve connects, subscribes, and blocks until ctx is canceled. Returning an
// error lets the supervisor restart the consumer with backoff.
func (c *Consumer) Serve(ctx context.Context) error {
	nc, err := nats.Connect(c.cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(c.cfg.MaxReconnects),
		nats.ReconnectWait(c.cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, derr error) {
			if derr != nil {
				c.logger.Warn().Err(derr).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			c.logger.Info().Str("url", conn.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}

	c.mu.Lock()
	c.nc = nc
	c.mu.Unlock()

	defer c.close()

	handlers := map[string]nats.MsgHandler{
		c.subject("content.interaction"): c.onMsg(c.processInteraction),
		c.subject("user.block"):          c.onMsg(c.processBlock),
		c.subject("content.deleted"):     c.onMsg(c.processContentDeleted),
		c.subject("feed.refresh"):        c.onMsg(c.processRefresh),
	}

	for subj, handler := range handlers {
		sub, serr := nc.QueueSubscribe(subj, c.cfg.QueueGroup, handler)
		if serr != nil {
			return fmt.Errorf("subscribe %s: %w", subj, serr)
		}
		c.subs = append(c.subs, sub)
	}

	c.logger.Info().
		Str("url", c.cfg.URL).
		Str("queue_group", c.cfg.QueueGroup).
		Int("subjects", len(handlers)).
		Msg("event consumer started")

	<-ctx.Done()
	return ctx.Err()
}

func (c *Consumer) subject(suffix string) string {
	return c.cfg.SubjectPrefix + "." + suffix
}

// onMsg adapts a payload processor into a nats handler with timeout,
// metrics, and error logging applied uniformly.
func (c *Consumer) onMsg(process func(ctx context.Context, data []byte) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()

		err := process(ctx, msg.Data)
		metrics.RecordEvent(msg.Subject, err)
		if err != nil {
			c.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("event handling failed")
		}
	}
}

func (c *Consumer) processInteraction(ctx context.Context, data []byte) error {
	var ev InteractionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode interaction event: %w", err)
	}
	if ev.UserID == "" {
		return fmt.Errorf("interaction event without user_id")
	}
	return c.engine.InvalidateUser(ctx, ev.UserID)
}

func (c *Consumer) processBlock(ctx context.Context, data []byte) error {
	var ev BlockEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode block event: %w", err)
	}
	if ev.BlockerID == "" {
		return fmt.Errorf("block event without blocker_id")
	}
	return c.engine.InvalidateUser(ctx, ev.BlockerID)
}

func (c *Consumer) processContentDeleted(ctx context.Context, data []byte) error {
	var ev ContentDeletedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode content-deleted event: %w", err)
	}
	if ev.CreatorID == "" {
		return fmt.Errorf("content-deleted event without creator_id")
	}
	return c.engine.InvalidateUser(ctx, ev.CreatorID)
}

func (c *Consumer) processRefresh(ctx context.Context, data []byte) error {
	var ev RefreshEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode refresh event: %w", err)
	}
	if ev.UserID == "" {
		return fmt.Errorf("refresh event without user_id")
	}
	return c.engine.Refresh(ctx, ev.UserID, feed.Category(ev.Category))
}

// close drains subscriptions and closes the connection.
func (c *Consumer) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			c.logger.Debug().Err(err).Msg("drain subscription")
		}
	}
	c.subs = nil

	if c.nc != nil {
		c.nc.Close()
		c.nc = nil
	}
}

// String names the service in supervisor logs.
func (c *Consumer) String() string {
	return "events-consumer"
}
