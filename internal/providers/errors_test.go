package providers

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRateLimitErrorString(t *testing.T) {
	err := &RateLimitError{
		Source:     "kickbase",
		StatusCode: 429,
		Message:    "rate limited",
	}
	if got := err.Error(); got != "rate limited (status=429)" {
		t.Fatalf("unexpected error string %q", got)
	}

	rl, ok := AsRateLimitError(fmt.Errorf("feed: %w", err))
	if !ok || rl != err {
		t.Fatalf("expected to unwrap wrapped rate limit error")
	}
	if got := (&RateLimitError{}).Error(); got != "source rate limited" {
		t.Fatalf("expected fallback message, got %q", got)
	}
	if _, ok := AsRateLimitError(errors.New("other")); ok {
		t.Fatalf("did not expect plain error to unwrap")
	}
}

func TestStatusErrorRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: &StatusError{Source: "kickbase", StatusCode: 503}, want: true},
		{err: fmt.Errorf("chat: %w", &StatusError{Source: "kickbase", StatusCode: 404}), want: false},
		{err: &RateLimitError{StatusCode: 429}, want: true},
		{err: errors.New("connection reset"), want: true},
	}
	for _, tt := range tests {
		if got := retryable(tt.err); got != tt.want {
			t.Fatalf("%v: expected retryable=%v", tt.err, tt.want)
		}
	}

	withBody := &StatusError{Source: "kickbase", StatusCode: 500, Body: "boom"}
	if !strings.Contains(withBody.Error(), "500: boom") {
		t.Fatalf("unexpected message %q", withBody.Error())
	}
}

func TestStatusErrorMatchesUnauthorized(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{code: 401, want: true},
		{code: 403, want: true},
		{code: 404, want: false},
		{code: 500, want: false},
	}
	for _, tt := range tests {
		err := fmt.Errorf("feed: %w", &StatusError{Source: "kickbase", StatusCode: tt.code})
		if got := errors.Is(err, ErrUnauthorized); got != tt.want {
			t.Fatalf("%d: expected unauthorized=%v", tt.code, tt.want)
		}
	}
	if retryable(&StatusError{StatusCode: 401}) {
		t.Fatalf("expected rejected credentials to be final")
	}
}
