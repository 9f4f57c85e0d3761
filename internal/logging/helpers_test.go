package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestHelpersTolerateNilLogger(t *testing.T) {
	Debug(nil, "debug")
	Info(nil, "info")
	Warn(nil, "warn")
	Error(nil, "error", errors.New("boom"))
}

func TestErrorAppendsErrorAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Error(logger, "cycle failed", errors.New("boom"), FieldStream, "feed")

	out := buf.String()
	if !strings.Contains(out, "error=boom") || !strings.Contains(out, "stream=feed") {
		t.Fatalf("expected error and stream attrs, got %q", out)
	}
}
