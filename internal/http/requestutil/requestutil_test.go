package requestutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestSanitizeRequestID(t *testing.T) {
	if got := SanitizeRequestID("valid-123"); got != "valid-123" {
		t.Fatalf("expected pass-through, got %s", got)
	}
	for _, bad := range []string{"", "bad id", "x;drop", string(make([]byte, 80))} {
		got := SanitizeRequestID(bad)
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("%q: expected minted uuid, got %q", bad, got)
		}
	}
	if NewRequestID() == NewRequestID() {
		t.Fatalf("expected distinct request ids")
	}
}

func TestClientIP(t *testing.T) {
	if got := ClientIP(nil); got != "" {
		t.Fatalf("expected empty for nil request, got %q", got)
	}

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, want: "1.2.3.4"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "4.4.4.4"}, want: "4.4.4.4"},
		{name: "empty forwarded hop", headers: map[string]string{"X-Forwarded-For": " ,5.6.7.8", "X-Real-IP": "4.4.4.4"}, want: "4.4.4.4"},
		{name: "remote host", remote: "9.9.9.9:1234", want: "9.9.9.9"},
		{name: "remote without port", remote: "pipe", want: "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			if got := ClientIP(req); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
