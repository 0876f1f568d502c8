// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/reelmix/reelmix/internal/logging"
	"github.com/reelmix/reelmix/internal/metrics"
	"github.com/reelmix/reelmix/internal/models"
)

// MiddlewareConfig holds the knobs for the CORS and rate-limit factories.
type MiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSMaxAge         int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// DefaultMiddlewareConfig returns a secure default configuration. CORS
// origins default to empty so a deployment has to opt in explicitly.
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSMaxAge:         86400,
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
	}
}

// Middleware provides Chi-compatible middleware built from config.
type Middleware struct {
	cfg  MiddlewareConfig
	cors func(http.Handler) http.Handler
}

// NewMiddleware builds the middleware set from config.
func NewMiddleware(cfg MiddlewareConfig) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         cfg.CORSMaxAge,
	})

	return &Middleware{cfg: cfg, cors: corsHandler}
}

// CORS returns the go-chi/cors handler. Must be installed globally so OPTIONS
// preflight requests are answered before routing.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns a per-IP limiter using go-chi/httprate. Rejections are
// counted and answered with the standard error envelope.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	if m.cfg.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		m.cfg.RateLimitRequests,
		m.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitHit(routePattern(r))
			respondError(w, r, http.StatusTooManyRequests, models.CodeRateLimited, "rate limit exceeded")
		}),
	)
}

// RequestID ensures every request carries an X-Request-ID, propagated through
// the logging context and echoed on the response for client-side correlation.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
			}

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogging emits one structured log line per request after it
// completes.
func RequestLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logging.Ctx(r.Context()).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// Instrument records Prometheus request metrics. Installed inside the router
// so chi's route pattern is available as a bounded-cardinality label.
func Instrument() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			next.ServeHTTP(rec, r)

			metrics.RecordAPIRequest(r.Method, routePattern(r), strconv.Itoa(rec.status), time.Since(start))
		})
	}
}

// routePattern returns chi's matched route pattern, falling back to the raw
// path when routing has not resolved yet.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}
