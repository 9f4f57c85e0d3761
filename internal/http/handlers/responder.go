package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/league-watch/internal/http/middleware"
	"github.com/preston-bernstein/league-watch/internal/http/requestutil"
	"github.com/preston-bernstein/league-watch/internal/logging"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err, logging.FieldStatusCode, status)
	}
}

// writeError echoes the request id so callers can match a failure to the
// access log line.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get(requestutil.HeaderRequestID)
	}
	writeJSON(w, status, errorResponse{Error: message, RequestID: reqID}, logger)
}

// requestLogger prefers the logger the middleware stored on the request. The
// fallback is tagged with the path since it carries no request fields.
func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	if logger := logging.FromContext(r.Context(), nil); logger != nil {
		return logger
	}
	if fallback == nil {
		return nil
	}
	return fallback.With(logging.FieldPath, r.URL.Path)
}
