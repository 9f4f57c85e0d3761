package testutil

import (
	"testing"
	"time"

	"github.com/preston-bernstein/league-watch/internal/metrics"
)

const pollEvery = 2 * time.Millisecond

// Eventually polls cond until it holds, failing t with msg after timeout.
func Eventually(t testing.TB, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %s: %s", timeout, msg)
		}
		time.Sleep(pollEvery)
	}
}

// WaitForCycles blocks until rec has counted at least n cycles for stream and
// returns the snapshot seen at that point.
func WaitForCycles(t testing.TB, rec *metrics.Recorder, stream string, n int, timeout time.Duration) metrics.Snapshot {
	t.Helper()
	var snap metrics.Snapshot
	Eventually(t, timeout, func() bool {
		snap = rec.Snapshot(stream)
		return snap.Cycles >= n
	}, stream+" cycles")
	return snap
}
