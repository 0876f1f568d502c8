// Reelmix - Personalized Feed Composition and Ranking for Short-Form Media
// Copyright 2026 Reelmix Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelmix/reelmix

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/feed/{userID}", "200"))

	RecordAPIRequest("GET", "/api/v1/feed/{userID}", "200", 42*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/feed/{userID}", "200"))
	if after != before+1 {
		t.Errorf("api_requests_total = %f, want %f", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("after inc: gauge = %f, want %f", got, base+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("after dec: gauge = %f, want %f", got, base)
	}
}

func TestRecordCompose(t *testing.T) {
	tests := []struct {
		name        string
		mix         string
		err         error
		wantMix     string
		wantOutcome string
	}{
		{name: "empty mix counts as balanced", mix: "", err: nil, wantMix: "balanced", wantOutcome: "success"},
		{name: "explicit mix success", mix: "following", err: nil, wantMix: "following", wantOutcome: "success"},
		{name: "failure outcome", mix: "collaborative", err: errors.New("boom"), wantMix: "collaborative", wantOutcome: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(FeedComposeTotal.WithLabelValues(tt.wantMix, tt.wantOutcome))

			RecordCompose(tt.mix, 10*time.Millisecond, tt.err)

			after := testutil.ToFloat64(FeedComposeTotal.WithLabelValues(tt.wantMix, tt.wantOutcome))
			if after != before+1 {
				t.Errorf("feed_compose_total{%s,%s} = %f, want %f", tt.wantMix, tt.wantOutcome, after, before+1)
			}
		})
	}
}

func TestRecordStrategySelectErrorsOnlyOnFailure(t *testing.T) {
	before := testutil.ToFloat64(StrategySelectErrors.WithLabelValues("popular"))

	RecordStrategySelect("popular", time.Millisecond, nil)
	if got := testutil.ToFloat64(StrategySelectErrors.WithLabelValues("popular")); got != before {
		t.Errorf("error counter moved on success: %f", got)
	}

	RecordStrategySelect("popular", time.Millisecond, errors.New("unavailable"))
	if got := testutil.ToFloat64(StrategySelectErrors.WithLabelValues("popular")); got != before+1 {
		t.Errorf("error counter = %f, want %f", got, before+1)
	}
}

func TestCacheCounters(t *testing.T) {
	hits := testutil.ToFloat64(FeedCacheHits)
	misses := testutil.ToFloat64(FeedCacheMisses)

	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheMiss()

	if got := testutil.ToFloat64(FeedCacheHits); got != hits+1 {
		t.Errorf("hits = %f, want %f", got, hits+1)
	}
	if got := testutil.ToFloat64(FeedCacheMisses); got != misses+2 {
		t.Errorf("misses = %f, want %f", got, misses+2)
	}
}

func TestRecordCacheInvalidationScopes(t *testing.T) {
	for _, scope := range []string{"category", "user"} {
		before := testutil.ToFloat64(FeedCacheInvalidations.WithLabelValues(scope))
		RecordCacheInvalidation(scope)
		if got := testutil.ToFloat64(FeedCacheInvalidations.WithLabelValues(scope)); got != before+1 {
			t.Errorf("invalidations{%s} = %f, want %f", scope, got, before+1)
		}
	}
}

func TestRecordCFRun(t *testing.T) {
	before := testutil.ToFloat64(CFSkippedUserFetches)

	RecordCFRun(12, 0)
	if got := testutil.ToFloat64(CFSkippedUserFetches); got != before {
		t.Errorf("skipped counter moved with zero skips: %f", got)
	}

	RecordCFRun(3, 2)
	if got := testutil.ToFloat64(CFSkippedUserFetches); got != before+2 {
		t.Errorf("skipped counter = %f, want %f", got, before+2)
	}
}

func TestRecordEvent(t *testing.T) {
	subject := "reelmix.content.interaction"
	consumed := testutil.ToFloat64(EventsConsumed.WithLabelValues(subject))
	failed := testutil.ToFloat64(EventFailures.WithLabelValues(subject))

	RecordEvent(subject, nil)
	RecordEvent(subject, errors.New("invalidate failed"))

	if got := testutil.ToFloat64(EventsConsumed.WithLabelValues(subject)); got != consumed+2 {
		t.Errorf("consumed = %f, want %f", got, consumed+2)
	}
	if got := testutil.ToFloat64(EventFailures.WithLabelValues(subject)); got != failed+1 {
		t.Errorf("failed = %f, want %f", got, failed+1)
	}
}

func TestConcurrentRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordCacheHit()
				RecordCompose("balanced", time.Millisecond, nil)
				RecordStrategySelect("random", time.Microsecond, nil)
			}
		}()
	}
	wg.Wait()
}
