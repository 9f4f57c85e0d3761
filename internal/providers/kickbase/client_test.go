package kickbase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/providers"
)

func TestLoginStoresTokenAndMapsLeagues(t *testing.T) {
	var gotBody loginRequest
	var cookies []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/login":
			if r.Method != http.MethodPost {
				t.Fatalf("expected POST login, got %s", r.Method)
			}
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = io.WriteString(w, `{
				"token": "tok-1",
				"user": {"id": "u1", "name": "Ana", "email": "ana@example.com"},
				"leagues": [{"id": "L1", "name": "Office", "creationDate": "2023-07-01T10:00:00+02:00"}]
			}`)
		case "/leagues/L1/market":
			if c, err := r.Cookie(authCookie); err == nil {
				cookies = append(cookies, c.Value)
			}
			_, _ = io.WriteString(w, `{"players": []}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/"})
	user, leagues, err := client.Login(context.Background(), "ana@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if gotBody.Email != "ana@example.com" || gotBody.Password != "pw" {
		t.Fatalf("unexpected login body %+v", gotBody)
	}
	if user.ID != "u1" || user.Name != "Ana" {
		t.Fatalf("unexpected user %+v", user)
	}
	if len(leagues) != 1 || leagues[0].ID != "L1" {
		t.Fatalf("unexpected leagues %+v", leagues)
	}
	wantCreated := time.Date(2023, 7, 1, 8, 0, 0, 0, time.UTC)
	if !leagues[0].CreationDate.Equal(wantCreated) || leagues[0].CreationDate.Location() != time.UTC {
		t.Fatalf("expected UTC creation date, got %s", leagues[0].CreationDate)
	}

	if _, err := client.FetchMarket(context.Background(), leagues[0]); err != nil {
		t.Fatalf("market: %v", err)
	}
	if len(cookies) != 1 || cookies[0] != "tok-1" {
		t.Fatalf("expected auth cookie on follow-up request, got %v", cookies)
	}
}

func TestFetchFeedPageSendsOffsetAndMapsMeta(t *testing.T) {
	var start string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/leagues/L1/feed" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		start = r.URL.Query().Get("start")
		_, _ = io.WriteString(w, `{"items": [{
			"id": "f1", "date": "2024-03-01T10:00:00Z", "type": 2,
			"meta": {"pid": "p7", "pfn": "Leroy", "pln": "Sane", "sn": "Ana", "p": 15000000, "ext": "x"}
		}]}`)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	items, err := client.FetchFeedPage(context.Background(), domain.League{ID: "L1"}, 20)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if start != "20" {
		t.Fatalf("expected start=20, got %s", start)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	it := items[0]
	if it.Type != domain.FeedTypeSale || it.Meta.PlayerID != "p7" || it.Meta.SellerName != "Ana" || it.Meta.Price != 15_000_000 {
		t.Fatalf("unexpected item %+v", it)
	}
	if it.Meta.Extra["ext"] != "x" {
		t.Fatalf("expected unknown meta key in extra, got %+v", it.Meta.Extra)
	}
}

func TestFetchChatPagePassesTokenAndReturnsNext(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		_, _ = io.WriteString(w, `{"items": [{"id": "c1", "date": "2024-03-01 10:00:00", "userId": "u2", "userName": "Ben", "message": "hi"}], "nextPageToken": "t2"}`)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	items, next, err := client.FetchChatPage(context.Background(), domain.League{ID: "L1"}, 0, "t1")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if next != "t2" {
		t.Fatalf("expected next token t2, got %q", next)
	}
	if len(queries) != 1 || !strings.Contains(queries[0], "pageSize=100") || !strings.Contains(queries[0], "nextPageToken=t1") {
		t.Fatalf("unexpected query %v", queries)
	}
	if items[0].Username != "Ben" || !items[0].Date.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected chat item %+v", items[0])
	}
}

func TestRateLimitResponseMapsToRateLimitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.FetchMarket(context.Background(), domain.League{ID: "L1"})
	rl, ok := providers.AsRateLimitError(err)
	if !ok {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rl.RetryAfter != 7*time.Second || rl.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected rate limit error %+v", rl)
	}
}

func TestUnauthorizedRenewsSessionOnce(t *testing.T) {
	logins := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user/login" {
			logins++
			_, _ = io.WriteString(w, `{"token": "tok-`+string(rune('0'+logins))+`", "user": {"id": "u1"}, "leagues": []}`)
			return
		}
		c, err := r.Cookie(authCookie)
		if err != nil || c.Value != "tok-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"items": []}`)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	if _, _, err := client.Login(context.Background(), "ana", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	items, err := client.FetchFeedPage(context.Background(), domain.League{ID: "L1"}, 0)
	if err != nil {
		t.Fatalf("expected renewed session to succeed, got %v", err)
	}
	if len(items) != 0 || logins != 2 {
		t.Fatalf("expected one renewal login, got %d logins", logins)
	}
}

func TestUnauthorizedWithoutLoginFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, _, err := client.FetchChatPage(context.Background(), domain.League{ID: "L1"}, 10, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNon200AndDecodeErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "boom")
		},
		"decode": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "{not-json")
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			client := NewClient(Config{BaseURL: srv.URL})
			_, err := client.FetchFeedPage(context.Background(), domain.League{ID: "L1"}, 0)
			if err == nil {
				t.Fatalf("expected error")
			}
			var sErr *providers.StatusError
			if isStatus := errors.As(err, &sErr); isStatus != (name == "status") {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			if sErr != nil && (sErr.StatusCode != http.StatusInternalServerError || sErr.Body != "boom") {
				t.Fatalf("unexpected status error %+v", sErr)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := parseRetryAfter("3", now); got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
	if got := parseRetryAfter(now.Add(10*time.Second).Format(http.TimeFormat), now); got != 10*time.Second {
		t.Fatalf("expected 10s from http date, got %s", got)
	}
	if got := parseRetryAfter("soon", now); got != 0 {
		t.Fatalf("expected 0 for garbage, got %s", got)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	if c.baseURL != defaultBaseURL {
		t.Fatalf("expected default base url, got %s", c.baseURL)
	}
	if hc, ok := c.httpClient.(*http.Client); !ok || hc.Timeout != defaultHTTPTimeout {
		t.Fatalf("expected default http client with timeout")
	}
}

func TestRetryingSourceDoesNotRepeatRejectedLogins(t *testing.T) {
	var logins, fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user/login" {
			if logins.Add(1) == 1 {
				_, _ = io.WriteString(w, `{"token": "stale", "user": {"id": "u1"}, "leagues": []}`)
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fetches.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	if _, _, err := client.Login(context.Background(), "ana", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	rs := providers.NewRetryingSource(client, nil, nil, 3, time.Millisecond)

	// Expired session and the renewal login is rejected too.
	_, err := rs.FetchFeedPage(context.Background(), domain.League{ID: "L1"}, 0)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if fetches.Load() != 1 || logins.Load() != 2 {
		t.Fatalf("expected one fetch and one renewal, got %d fetches and %d logins", fetches.Load(), logins.Load())
	}

	// Wrong password on a fresh login.
	_, _, err = rs.Login(context.Background(), "ana", "wrong")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if logins.Load() != 3 {
		t.Fatalf("expected a single login attempt, got %d logins in total", logins.Load())
	}
}
