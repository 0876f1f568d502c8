// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/reelmix/reelmix/internal/models"
)

// Pinger reports whether a backing service is reachable. The Redis cache
// backend satisfies it; the in-memory backend has nothing to ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetPinger installs an optional readiness probe target.
func (h *Handler) SetPinger(p Pinger) {
	h.pinger = p
}

// Health handles GET /healthz. It always answers 200 while the process is
// serving, and carries the engine counters for quick inspection.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"engine":         h.engine.Snapshot(),
	}, nil)
}

// Ready handles GET /readyz. Readiness fails only when a configured backend
// probe fails; with no probe installed the service is ready as soon as it
// serves.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			respondError(w, r, http.StatusServiceUnavailable, models.CodeDependency, "cache backend unreachable")
			return
		}
	}

	respondSuccess(w, r, map[string]any{"status": "ready"}, nil)
}
