package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/league-watch/internal/bot"
	"github.com/preston-bernstein/league-watch/internal/config"
	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/server"
)

const appVersion = "dev"

const (
	exitOK            = 0
	exitFailure       = 1
	exitMisconfigured = 2
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitMisconfigured)
	}
	cfg := config.Load().Apply(config.MustParseArgs())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, stop, cfg, os.Stdout)
	stop()
	os.Exit(code)
}

// run validates cfg and runs the server until ctx is cancelled. It returns
// the process exit code.
func run(ctx context.Context, stop context.CancelFunc, cfg config.Config, out io.Writer) int {
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "league-watch",
		Version: appVersion,
		Output:  out,
	})

	if err := cfg.Validate(); err != nil {
		logging.Error(logger, "invalid configuration", err)
		return exitMisconfigured
	}

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logging.Error(logger, "startup failed", err)
		return exitFailure
	}
	if err := srv.Run(ctx, stop); err != nil {
		return exitCode(err, logger)
	}
	return exitOK
}

func exitCode(err error, logger *slog.Logger) int {
	if _, ok := bot.AsConfigurationError(err); ok {
		logging.Error(logger, "league configuration rejected", err)
		return exitMisconfigured
	}
	logging.Error(logger, "bot stopped with error", err)
	return exitFailure
}
