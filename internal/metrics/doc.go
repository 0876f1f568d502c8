// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

/*
Package metrics provides Prometheus instrumentation for Reelmix.

Collectors are registered with promauto on the default registry and
exposed by the API layer at GET /metrics via promhttp. Recording goes
through the small helper functions (RecordAPIRequest, RecordCompose,
RecordCacheHit, ...) so call sites never touch label plumbing directly.

Metric families:

  - api_requests_total, api_request_duration_seconds, api_active_requests
  - feed_compose_total, feed_compose_duration_seconds
  - feed_strategy_select_duration_seconds, feed_strategy_select_errors_total
  - feed_cache_hits_total, feed_cache_misses_total, feed_cache_invalidations_total
  - cf_skipped_user_fetches_total, cf_candidate_count
  - events_consumed_total, events_failed_total
*/
package metrics
