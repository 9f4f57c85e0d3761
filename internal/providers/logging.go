package providers

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/league-watch/internal/logging"
)

// logWithStream emits a log entry if a logger is available and always includes the stream name.
func logWithStream(ctx context.Context, logger *slog.Logger, level slog.Level, stream string, msg string, args ...any) {
	logger = logging.FromContext(ctx, logger)
	if logger == nil {
		return
	}
	args = append(args, slog.String(logging.FieldStream, stream))
	logger.Log(ctx, level, msg, args...)
}
