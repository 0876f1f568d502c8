// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelmix/reelmix/internal/models"
)

// Router wires handlers and middleware into the served http.Handler.
type Router struct {
	handler *Handler
	mw      *Middleware
}

// NewRouter creates a Router from a handler and middleware set.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	return &Router{handler: handler, mw: mw}
}

// Setup configures all routes and returns the root handler.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global stack, applied to every route in order. CORS is global so
	// OPTIONS preflight is answered before routing.
	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.mw.CORS())

	// Operational endpoints stay outside the rate limiter so probes and
	// scrapes never get throttled by client traffic.
	r.Get("/healthz", rt.handler.Health)
	r.Get("/readyz", rt.handler.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.mw.RateLimit())
		r.Use(Instrument())
		r.Use(RequestLogging())

		r.Get("/feed/{userID}", rt.handler.Feed)
		r.Post("/feed/{userID}/refresh", rt.handler.RefreshFeed)
		r.Get("/recommendations/{userID}", rt.handler.Recommendations)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, models.CodeNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, models.CodeMethodNotAllow, "method not allowed")
	})

	return r
}
