package providers

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSourceUnavailable is returned when no upstream source is configured.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrUnauthorized matches a StatusError for a rejected login or session.
var ErrUnauthorized = errors.New("source unauthorized")

// RateLimitError is a 429 from the upstream service. RetryAfter is zero when
// the response did not say how long to wait.
type RateLimitError struct {
	Source     string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "source rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// StatusError is any other non-OK upstream response. Body holds at most a
// short prefix of the response body.
type StatusError struct {
	Source     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Source, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 and 403 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// Retryable reports whether the same request may succeed later. Client
// errors, including rejected credentials, are final.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// retryable is false for errors a repeat of the same call cannot fix.
func retryable(err error) bool {
	var sErr *StatusError
	if errors.As(err, &sErr) {
		return sErr.Retryable()
	}
	return true
}
