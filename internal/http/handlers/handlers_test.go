package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/http/middleware"
	"github.com/preston-bernstein/league-watch/internal/poller"
	"github.com/preston-bernstein/league-watch/internal/store"
	"github.com/preston-bernstein/league-watch/internal/testutil"
)

type stubStatus struct {
	ready    bool
	failing  string
	statuses map[string]poller.Status
}

func (s stubStatus) Statuses() map[string]poller.Status { return s.statuses }
func (s stubStatus) Ready() (bool, string)              { return s.ready, s.failing }

type failingReader struct{}

func (failingReader) LeagueData(context.Context) ([]domain.League, error) {
	return nil, errors.New("down")
}
func (failingReader) FeedItems(context.Context) ([]domain.FeedItem, error) {
	return nil, errors.New("down")
}
func (failingReader) ChatItems(context.Context) ([]domain.ChatItem, error) {
	return nil, errors.New("down")
}
func (failingReader) MarketSnapshots(context.Context, store.MarketQuery) ([]domain.MarketSnapshot, error) {
	return nil, errors.New("down")
}

// seededStore returns a memory store with two feed items, one chat message,
// a league and three market snapshots an hour apart.
func seededStore(t *testing.T) *store.Gateway {
	t.Helper()
	ctx := context.Background()
	gw := store.NewMemory(nil)
	for _, item := range testutil.FeedRange("f", 0, 2) {
		if err := gw.SaveFeedItem(ctx, item); err != nil {
			t.Fatalf("seed feed: %v", err)
		}
	}
	_ = gw.SaveChatItem(ctx, testutil.SampleChatItem("c1", "user-2", 0))
	_ = gw.SaveLeagueData(ctx, testutil.SampleLeague("L1"))
	for i, ids := range [][]string{{"p1"}, {"p1", "p2"}, {"p2"}} {
		snap := testutil.SampleMarket(ids...)
		snap.Date = testutil.BaseTime.Add(time.Duration(i) * time.Hour)
		if err := gw.SaveMarketSnapshot(ctx, snap); err != nil {
			t.Fatalf("seed market: %v", err)
		}
	}
	return gw
}

func TestHealth(t *testing.T) {
	h := NewHandler(store.NewMemory(nil), nil, nil)

	rr := testutil.Serve(h, http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSON(t, rr)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h := NewHandler(store.NewMemory(nil), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req.WithContext(ctx))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "shutting down" {
		t.Fatalf("unexpected error %q", resp["error"])
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		status StatusReporter
		want   int
		errMsg string
	}{
		{name: "no reporter", status: nil, want: http.StatusOK},
		{name: "all ready", status: stubStatus{ready: true}, want: http.StatusOK},
		{
			name: "failing loop",
			status: stubStatus{failing: "chat", statuses: map[string]poller.Status{
				"chat": {ConsecutiveFailures: 3, LastError: "bot: chat fetch failed: 503"},
			}},
			want:   http.StatusServiceUnavailable,
			errMsg: "chat: bot: chat fetch failed: 503",
		},
		{
			name:   "not yet run",
			status: stubStatus{failing: "feed", statuses: map[string]poller.Status{"feed": {}}},
			want:   http.StatusServiceUnavailable,
			errMsg: "feed: not ready",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(store.NewMemory(nil), tt.status, nil)
			rr := testutil.Serve(h, http.MethodGet, "/ready", nil)
			testutil.AssertStatus(t, rr, tt.want)
			if tt.errMsg == "" {
				return
			}
			var resp map[string]string
			testutil.DecodeJSON(t, rr, &resp)
			if resp["error"] != tt.errMsg {
				t.Fatalf("expected error %q, got %q", tt.errMsg, resp["error"])
			}
		})
	}
}

func TestStatusListsLoops(t *testing.T) {
	status := stubStatus{ready: true, statuses: map[string]poller.Status{
		"feed":   {Cycles: 4},
		"market": {Cycles: 1, LastError: "boom"},
	}}
	h := NewHandler(store.NewMemory(nil), status, nil)

	rr := testutil.Serve(h, http.MethodGet, "/status", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp statusResponse
	testutil.DecodeJSON(t, rr, &resp)
	if !resp.Ready || len(resp.Loops) != 2 {
		t.Fatalf("unexpected status %+v", resp)
	}
	if resp.Loops["feed"].Cycles != 4 || resp.Loops["market"].LastError != "boom" {
		t.Fatalf("unexpected loops %+v", resp.Loops)
	}
}

func TestReadEndpoints(t *testing.T) {
	h := NewHandler(seededStore(t), nil, nil)

	var feed listResponse[domain.FeedItem]
	rr := testutil.Serve(h, http.MethodGet, "/feed", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.DecodeJSON(t, rr, &feed)
	if feed.Count != 2 || feed.Items[0].ID != "f-0" {
		t.Fatalf("unexpected feed %+v", feed)
	}

	var chat listResponse[domain.ChatItem]
	rr = testutil.Serve(h, http.MethodGet, "/chat", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.DecodeJSON(t, rr, &chat)
	if chat.Count != 1 || chat.Items[0].Message != "message c1" {
		t.Fatalf("unexpected chat %+v", chat)
	}

	var league listResponse[domain.League]
	rr = testutil.Serve(h, http.MethodGet, "/league", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.DecodeJSON(t, rr, &league)
	if league.Count != 1 || league.Items[0].ID != "L1" {
		t.Fatalf("unexpected league %+v", league)
	}
}

func TestMarketFiltersAndLimits(t *testing.T) {
	h := NewHandler(seededStore(t), nil, nil)

	var all listResponse[domain.MarketSnapshot]
	rr := testutil.Serve(h, http.MethodGet, "/market", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.DecodeJSON(t, rr, &all)
	if all.Count != 3 || !all.Items[0].Date.After(all.Items[2].Date) {
		t.Fatalf("expected 3 snapshots newest first, got %+v", all)
	}

	var p1 listResponse[domain.MarketSnapshot]
	rr = testutil.Serve(h, http.MethodGet, "/market?player=p1&limit=1", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.DecodeJSON(t, rr, &p1)
	if p1.Count != 1 || !p1.Items[0].HasPlayer("p1") || !p1.Items[0].HasPlayer("p2") {
		t.Fatalf("expected the newest snapshot listing p1, got %+v", p1)
	}
}

func TestMarketRejectsInvalidLimit(t *testing.T) {
	h := NewHandler(seededStore(t), nil, nil)
	for _, limit := range []string{"abc", "0", "-1", "501"} {
		rr := testutil.Serve(h, http.MethodGet, "/market?limit="+limit, nil)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	}
}

func TestStorageErrorsReturnServerError(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	h := NewHandler(failingReader{}, nil, logger)

	for _, path := range []string{"/league", "/feed", "/chat", "/market"} {
		rr := testutil.Serve(h, http.MethodGet, path, nil)
		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	}
	if !strings.Contains(buf.String(), "store read failed") {
		t.Fatalf("expected storage error logged")
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	h := NewHandler(store.NewMemory(nil), nil, nil)
	rr := testutil.Serve(h, http.MethodGet, "/standings", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewHandler(store.NewMemory(nil), nil, nil)
	for _, path := range []string{"/health", "/ready", "/status", "/league", "/feed", "/chat", "/market"} {
		t.Run(path, func(t *testing.T) {
			rr := testutil.Serve(h, http.MethodPost, path, nil)
			testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
		})
	}
}

func TestRequestIDPropagatesThroughMiddleware(t *testing.T) {
	h := NewHandler(store.NewMemory(nil), nil, nil)
	wrapped := middleware.LoggingMiddleware(nil, nil, h)

	req := httptest.NewRequest(http.MethodGet, "/market?limit=x", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := testutil.ServeRequest(wrapped, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["requestId"] != "req-42" {
		t.Fatalf("expected request id in error body, got %+v", resp)
	}
}
