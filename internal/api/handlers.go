// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/reelmix/reelmix/internal/feed"
	"github.com/reelmix/reelmix/internal/metrics"
	"github.com/reelmix/reelmix/internal/models"
	"github.com/reelmix/reelmix/internal/validation"
)

// Engine is the feed-engine surface the handlers depend on.
type Engine interface {
	ComposeFeed(ctx context.Context, req feed.ComposeRequest) (*feed.FeedPage, error)
	Recommend(ctx context.Context, req feed.RecommendRequest) ([]feed.ScoredContent, error)
	Refresh(ctx context.Context, viewerID string, category feed.Category) error
	InvalidateUser(ctx context.Context, viewerID string) error
	Snapshot() feed.Metrics
}

// Handler carries the dependencies of every HTTP handler.
type Handler struct {
	engine  Engine
	logger  zerolog.Logger
	pinger  Pinger
	started time.Time
}

// NewHandler creates a Handler around the feed engine.
func NewHandler(engine Engine, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		logger:  logger,
		started: time.Now(),
	}
}

// Feed handles GET /api/v1/feed/{userID}.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	req, ok := h.bindFeedRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	page, err := h.engine.ComposeFeed(r.Context(), feed.ComposeRequest{
		ViewerID:        userID,
		Limit:           req.Limit,
		Cursor:          req.Cursor,
		Mix:             req.Mix,
		Category:        feed.Category(req.Category),
		ExcludeCategory: feed.Category(req.ExcludeCategory),
		Language:        req.Language,
	})
	elapsed := time.Since(start)
	metrics.RecordCompose(req.Mix, elapsed, err)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, page, &models.Metadata{ComposeTimeMS: elapsed.Milliseconds()})
}

// Recommendations handles GET /api/v1/recommendations/{userID}. It runs the
// collaborative strategy standalone, outside any mix.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	q := r.URL.Query()

	limit, ok := parseLimit(w, r, q.Get("limit"))
	if !ok {
		return
	}

	req := models.RecommendRequest{
		Limit:           limit,
		Category:        q.Get("category"),
		ExcludeCategory: q.Get("exclude_category"),
		Language:        q.Get("language"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr.ToAPIError())
		return
	}

	start := time.Now()
	items, err := h.engine.Recommend(r.Context(), feed.RecommendRequest{
		ViewerID:        userID,
		Limit:           req.Limit,
		Category:        feed.Category(req.Category),
		ExcludeCategory: feed.Category(req.ExcludeCategory),
		Language:        req.Language,
	})
	elapsed := time.Since(start)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	payload := map[string]any{
		"items": items,
		"count": len(items),
	}
	respondSuccess(w, r, payload, &models.Metadata{ComposeTimeMS: elapsed.Milliseconds()})
}

// RefreshFeed handles POST /api/v1/feed/{userID}/refresh. With ?all=true it
// drops every cached variant for the viewer; otherwise it scopes the refresh
// to the requested category (empty category means the uncategorized feed).
func (h *Handler) RefreshFeed(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	q := r.URL.Query()

	if q.Get("all") == "true" {
		if err := h.engine.InvalidateUser(r.Context(), userID); err != nil {
			respondEngineError(w, r, err)
			return
		}
		metrics.RecordCacheInvalidation("user")
		respondSuccess(w, r, map[string]any{"refreshed": "all"}, nil)
		return
	}

	req := models.RefreshRequest{Category: q.Get("category")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr.ToAPIError())
		return
	}

	if err := h.engine.Refresh(r.Context(), userID, feed.Category(req.Category)); err != nil {
		respondEngineError(w, r, err)
		return
	}
	metrics.RecordCacheInvalidation("category")

	scope := req.Category
	if scope == "" {
		scope = "uncategorized"
	}
	respondSuccess(w, r, map[string]any{"refreshed": scope}, nil)
}

// bindFeedRequest binds and validates feed query parameters. It writes the
// error response itself and reports success through the second return.
func (h *Handler) bindFeedRequest(w http.ResponseWriter, r *http.Request) (models.FeedRequest, bool) {
	q := r.URL.Query()

	limit, ok := parseLimit(w, r, q.Get("limit"))
	if !ok {
		return models.FeedRequest{}, false
	}

	req := models.FeedRequest{
		Limit:           limit,
		Cursor:          q.Get("cursor"),
		Mix:             q.Get("mix"),
		Category:        q.Get("category"),
		ExcludeCategory: q.Get("exclude_category"),
		Language:        q.Get("language"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr.ToAPIError())
		return models.FeedRequest{}, false
	}

	return req, true
}

// parseLimit converts the limit query parameter. Empty means "use the server
// default" and parses to zero.
func parseLimit(w http.ResponseWriter, r *http.Request, raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.CodeValidation, "limit must be an integer")
		return 0, false
	}
	return limit, true
}
