package handlers

import (
	"context"
	"log/slog"
	nethttp "net/http"
	"strconv"

	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/poller"
	"github.com/preston-bernstein/league-watch/internal/store"
)

const maxMarketLimit = 500

// Reader is the read side of the store. *store.Gateway satisfies it.
type Reader interface {
	LeagueData(ctx context.Context) ([]domain.League, error)
	FeedItems(ctx context.Context) ([]domain.FeedItem, error)
	ChatItems(ctx context.Context) ([]domain.ChatItem, error)
	MarketSnapshots(ctx context.Context, q store.MarketQuery) ([]domain.MarketSnapshot, error)
}

// StatusReporter exposes poll loop health. *bot.Bot satisfies it.
type StatusReporter interface {
	Statuses() map[string]poller.Status
	Ready() (bool, string)
}

// Handler serves the status and read API.
type Handler struct {
	store  Reader
	status StatusReporter
	logger *slog.Logger
}

// NewHandler constructs a Handler. A nil status reporter reports ready.
func NewHandler(reader Reader, status StatusReporter, logger *slog.Logger) *Handler {
	return &Handler{store: reader, status: status, logger: logger}
}

func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	switch r.URL.Path {
	case "/health":
		h.Health(w, r)
	case "/ready":
		h.Ready(w, r)
	case "/status":
		h.Status(w, r)
	case "/league":
		h.League(w, r)
	case "/feed":
		h.Feed(w, r)
	case "/chat":
		h.Chat(w, r)
	case "/market":
		h.Market(w, r)
	default:
		writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
	}
}

// Health reports the process is up.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.allowGet(w, r) {
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready is 200 while every poll loop is healthy and 503 with the failing loop's error otherwise.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.allowGet(w, r) {
		return
	}
	if h.status == nil {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	ready, failing := h.status.Ready()
	if ready {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := "not ready"
	if failing != "" {
		msg = failing + ": not ready"
		if st, ok := h.status.Statuses()[failing]; ok && st.LastError != "" {
			msg = failing + ": " + st.LastError
		}
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, msg, h.logger)
}

// Status returns every loop's status keyed by stream.
func (h *Handler) Status(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.allowGet(w, r) {
		return
	}
	resp := statusResponse{Ready: true, Loops: map[string]poller.Status{}}
	if h.status != nil {
		resp.Ready, _ = h.status.Ready()
		resp.Loops = h.status.Statuses()
	}
	writeJSON(w, nethttp.StatusOK, resp, h.logger)
}

// League returns the stored league data.
func (h *Handler) League(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.allowGet(w, r) {
		return
	}
	leagues, err := h.store.LeagueData(r.Context())
	if err != nil {
		h.storageError(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, listResponse[domain.League]{Count: len(leagues), Items: leagues}, h.logger)
}

// Feed returns stored feed items, oldest first.
func (h *Handler) Feed(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.allowGet(w, r) {
		return
	}
	items, err := h.store.FeedItems(r.Context())
	if err != nil {
		h.storageError(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, listResponse[domain.FeedItem]{Count: len(items), Items: items}, h.logger)
}

// Chat returns stored chat messages, oldest first.
func (h *Handler) Chat(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.allowGet(w, r) {
		return
	}
	items, err := h.store.ChatItems(r.Context())
	if err != nil {
		h.storageError(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, listResponse[domain.ChatItem]{Count: len(items), Items: items}, h.logger)
}

// Market returns snapshots newest first, optionally filtered by ?player= and capped by ?limit=.
func (h *Handler) Market(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.allowGet(w, r) {
		return
	}
	q := store.MarketQuery{PlayerID: r.URL.Query().Get("player")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxMarketLimit {
			writeError(w, r, nethttp.StatusBadRequest, "invalid limit (expected 1-"+strconv.Itoa(maxMarketLimit)+")", h.logger)
			return
		}
		q.Limit = n
	}
	snaps, err := h.store.MarketSnapshots(r.Context(), q)
	if err != nil {
		h.storageError(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, listResponse[domain.MarketSnapshot]{Count: len(snaps), Items: snaps}, h.logger)
}

type statusResponse struct {
	Ready bool                     `json:"ready"`
	Loops map[string]poller.Status `json:"loops"`
}

type listResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

func (h *Handler) allowGet(w nethttp.ResponseWriter, r *nethttp.Request) bool {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return false
	}
	return true
}

func (h *Handler) storageError(w nethttp.ResponseWriter, r *nethttp.Request, err error) {
	logging.Error(requestLogger(r, h.logger), "store read failed", err)
	writeError(w, r, nethttp.StatusInternalServerError, "storage unavailable", h.logger)
}
