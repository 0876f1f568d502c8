// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

/*
Package supervisor provides Suture-based process supervision for Reelmix.

The Tree arranges long-running components under a root supervisor with two
child layers, messaging and api, so a restarting component only disturbs
its own layer. Supervisor events are logged through sutureslog, which in
turn feeds the zerolog-backed slog handler from internal/logging.

Services are plain suture.Service implementations. The services
subpackage contains the wrapper that adapts net/http's blocking
ListenAndServe lifecycle to suture's context-driven Serve; the NATS
consumer in internal/events implements Serve natively.
*/
package supervisor
