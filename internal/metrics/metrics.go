// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Feed composition and per-strategy selection
// - Feed cache efficiency
// - Collaborative-filtering fan-out health
// - NATS invalidation events

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Feed Composition Metrics
	FeedComposeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_compose_total",
			Help: "Total number of feed composition requests",
		},
		[]string{"mix", "outcome"}, // outcome: "success", "error"
	)

	FeedComposeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_compose_duration_seconds",
			Help:    "Feed composition duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mix"},
	)

	StrategySelectDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_strategy_select_duration_seconds",
			Help:    "Per-strategy candidate selection duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	StrategySelectErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_strategy_select_errors_total",
			Help: "Total number of failed strategy selections",
		},
		[]string{"strategy"},
	)

	// Feed Cache Metrics
	FeedCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cache_hits_total",
			Help: "Total number of feed batch cache hits",
		},
	)

	FeedCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cache_misses_total",
			Help: "Total number of feed batch cache misses",
		},
	)

	FeedCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_invalidations_total",
			Help: "Total number of feed cache invalidations",
		},
		[]string{"scope"}, // "category", "user"
	)

	// Collaborative Filtering Metrics
	CFSkippedUserFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cf_skipped_user_fetches_total",
			Help: "Total number of similar-user history fetches skipped after errors",
		},
	)

	CFCandidateCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cf_candidate_count",
			Help:    "Number of scored candidates produced per collaborative run",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// NATS Event Metrics
	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of invalidation events consumed from NATS",
		},
		[]string{"subject"},
	)

	EventFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_failed_total",
			Help: "Total number of invalidation events that failed processing",
		},
		[]string{"subject"},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records one rate-limited request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordCompose records one feed composition, successful or not.
func RecordCompose(mix string, duration time.Duration, err error) {
	if mix == "" {
		mix = "balanced"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	FeedComposeTotal.WithLabelValues(mix, outcome).Inc()
	FeedComposeDuration.WithLabelValues(mix).Observe(duration.Seconds())
}

// RecordStrategySelect records one strategy selector invocation.
func RecordStrategySelect(strategy string, duration time.Duration, err error) {
	StrategySelectDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if err != nil {
		StrategySelectErrors.WithLabelValues(strategy).Inc()
	}
}

// RecordCacheHit records one feed-cache batch hit.
func RecordCacheHit() {
	FeedCacheHits.Inc()
}

// RecordCacheMiss records one feed-cache batch miss.
func RecordCacheMiss() {
	FeedCacheMisses.Inc()
}

// RecordCacheInvalidation records one invalidation; scope is "category" for a
// single-category refresh or "user" for whole-user invalidation.
func RecordCacheInvalidation(scope string) {
	FeedCacheInvalidations.WithLabelValues(scope).Inc()
}

// RecordCFRun records the outcome of one collaborative-filtering run.
func RecordCFRun(candidates int, skippedUsers int64) {
	CFCandidateCount.Observe(float64(candidates))
	if skippedUsers > 0 {
		CFSkippedUserFetches.Add(float64(skippedUsers))
	}
}

// RecordEvent records one consumed NATS event and whether handling failed.
func RecordEvent(subject string, err error) {
	EventsConsumed.WithLabelValues(subject).Inc()
	if err != nil {
		EventFailures.WithLabelValues(subject).Inc()
	}
}
