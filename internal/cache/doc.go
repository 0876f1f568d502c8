// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

/*
Package cache provides the byte-oriented key-value stores the feed cache
memoizes composed batches through.

Two implementations share one contract (feed.Store):

  - Memory: a thread-safe in-process map with per-entry TTL, lazy
    expiration on reads and a periodic janitor. Suitable for single-node
    deployments and tests.
  - Redis: a thin wrapper over go-redis guarded by a circuit breaker, for
    deployments where feed batches must survive restarts or be shared
    across replicas.

Both stores treat the cache as disposable: every error is reported to the
caller, which degrades to recomputation rather than failing the request.
*/
package cache
