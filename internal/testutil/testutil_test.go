package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/league-watch/internal/metrics"
)

func TestClockHelpers(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := NowAt(now)(); !got.Equal(now) {
		t.Fatalf("expected fixed time, got %v", got)
	}
	if MustParseRFC3339(now.Format(time.RFC3339)) != now {
		t.Fatalf("expected parse round trip")
	}
	step := StepClock(now, time.Second)
	if first, second := step(), step(); !first.Equal(now) || second.Sub(first) != time.Second {
		t.Fatalf("expected step clock to advance by one second, got %s then %s", first, second)
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on invalid RFC3339")
		}
	}()
	MustParseRFC3339("not-a-time")
}

func TestFixturesHelper(t *testing.T) {
	feed := FeedRange("f", 0, 3)
	if len(feed) != 3 || feed[2].ID != "f-2" || !feed[1].Date.After(feed[0].Date) {
		t.Fatalf("unexpected feed fixtures %+v", feed)
	}
	chat := ChatRange("c", 5, 2)
	if len(chat) != 2 || chat[0].ID != "c-5" {
		t.Fatalf("unexpected chat fixtures %+v", chat)
	}
	market := SampleMarket("a", "b")
	if !market.HasPlayer("b") || !market.Date.IsZero() {
		t.Fatalf("unexpected market fixture %+v", market)
	}
	if SampleLeague("L1").ID != "L1" || SampleUser().ID == "" {
		t.Fatalf("unexpected league/user fixtures")
	}
}

func TestServeHelpers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	rr := Serve(handler, http.MethodPost, "/test", strings.NewReader("{}"))
	AssertStatus(t, rr, http.StatusCreated)
	AssertJSON(t, rr)
	var body map[string]bool
	DecodeJSON(t, rr, &body)
	if !body["ok"] {
		t.Fatalf("expected ok=true")
	}

	req := httptest.NewRequest(http.MethodGet, "/req", nil)
	rr2 := ServeRequest(handler, req)
	AssertStatus(t, rr2, http.StatusCreated)
}

func TestBufferLoggerIsConcurrencySafe(t *testing.T) {
	logger, buf := NewBufferLogger()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Debug("hello")
		}()
	}
	wg.Wait()
	if strings.Count(buf.String(), "hello") != 8 || buf.Len() == 0 {
		t.Fatalf("expected 8 log lines, got %q", buf.String())
	}
	DiscardLogger().Info("dropped")
}

func TestWaitForCycles(t *testing.T) {
	rec := metrics.NewRecorder()
	go func() {
		for i := 0; i < 3; i++ {
			rec.RecordCycle(metrics.StreamChat, time.Millisecond, nil)
		}
	}()
	if snap := WaitForCycles(t, rec, metrics.StreamChat, 3, time.Second); snap.Cycles < 3 {
		t.Fatalf("expected three cycles, got %+v", snap)
	}
}

func TestEventuallyReturnsOnceConditionHolds(t *testing.T) {
	calls := 0
	Eventually(t, time.Second, func() bool {
		calls++
		return calls == 3
	}, "three calls")
	if calls != 3 {
		t.Fatalf("expected polling to stop at the third call, got %d", calls)
	}
}
