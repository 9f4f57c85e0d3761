package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksSourceAttemptsAndErrors(t *testing.T) {
	rec := NewRecorder()
	rec.RecordSourceAttempt("feed", 10*time.Millisecond, nil)
	rec.RecordSourceAttempt("feed", 15*time.Millisecond, errors.New("boom"))

	if got := rec.SourceCalls("feed"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if got := rec.SourceErrors("feed"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}

	snap := rec.Snapshot("feed")
	if snap.LastCallLatency != 15*time.Millisecond {
		t.Fatalf("expected last latency to be 15ms, got %s", snap.LastCallLatency)
	}
	if other := rec.Snapshot("chat"); other.Calls != 0 {
		t.Fatalf("expected streams tracked separately, got %+v", other)
	}
}

func TestRecorderTracksRateLimits(t *testing.T) {
	rec := NewRecorder()
	rec.RecordRateLimit("market", 5*time.Second)
	rec.RecordRateLimit("market", 0)

	if got := rec.RateLimitHits("market"); got != 2 {
		t.Fatalf("expected 2 rate limit hits, got %d", got)
	}
	if got := rec.LastRetryAfter("market"); got != 5*time.Second {
		t.Fatalf("expected last retry-after to be 5s, got %s", got)
	}
}

func TestRecorderTracksCyclesItemsAndHandlers(t *testing.T) {
	rec := NewRecorder()
	rec.RecordCycle("chat", time.Millisecond, nil)
	rec.RecordCycle("chat", time.Millisecond, errors.New("fetch failed"))
	rec.RecordNewItems("chat", 3)
	rec.RecordNewItems("chat", 0)
	rec.RecordHandlerError("chat")

	snap := rec.Snapshot("chat")
	if snap.Cycles != 2 || snap.CycleErrors != 1 {
		t.Fatalf("unexpected cycle counts %+v", snap)
	}
	if snap.NewItems != 3 {
		t.Fatalf("expected 3 new items, got %d", snap.NewItems)
	}
	if snap.HandlerErrors != 1 {
		t.Fatalf("expected 1 handler error, got %d", snap.HandlerErrors)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordSourceAttempt("feed", time.Millisecond, nil)
	rec.RecordCycle("feed", time.Millisecond, nil)
	rec.RecordNewItems("feed", 1)
	rec.RecordHandlerError("feed")
	rec.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
	if snap := rec.Snapshot("feed"); snap != (Snapshot{}) {
		t.Fatalf("expected empty snapshot from nil recorder")
	}
}
