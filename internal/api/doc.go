// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

/*
Package api provides the HTTP surface of Reelmix using the Chi router.

The surface is deliberately thin: handlers bind and validate query
parameters, call the feed engine, and map the engine's error taxonomy
to HTTP status codes. All composition, ranking, and caching logic lives
in internal/feed.

Routes:

	GET  /api/v1/feed/{userID}             Compose a personalized feed page
	POST /api/v1/feed/{userID}/refresh     Invalidate cached feed batches
	GET  /api/v1/recommendations/{userID}  Standalone collaborative filtering
	GET  /healthz                          Liveness with engine counters
	GET  /readyz                           Readiness (cache backend ping)
	GET  /metrics                          Prometheus exposition

Status mapping: validation failures and malformed cursors return 400,
a failed repository or cache dependency returns 503, anything else 500.
Every response uses the models.APIResponse envelope.
*/
package api
