package server

import (
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/league-watch/internal/config"
	"github.com/preston-bernstein/league-watch/internal/metrics"
	"github.com/preston-bernstein/league-watch/internal/providers"
	"github.com/preston-bernstein/league-watch/internal/providers/fixture"
	"github.com/preston-bernstein/league-watch/internal/providers/kickbase"
)

// sourceFactory assembles the upstream source with the shared retry wrapper.
type sourceFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newSourceFactory(logger *slog.Logger, metrics *metrics.Recorder) sourceFactory {
	return sourceFactory{logger: logger, metrics: metrics}
}

func (f sourceFactory) build(cfg config.Config) (providers.Source, error) {
	base, err := selectSource(cfg)
	if err != nil {
		return nil, err
	}
	return providers.NewRetryingSource(base, f.logger, f.metrics, cfg.Retry.Attempts, cfg.Retry.Backoff), nil
}

func selectSource(cfg config.Config) (providers.Source, error) {
	switch cfg.Source {
	case config.SourceKickbase, "":
		return kickbase.NewClient(kickbase.Config{BaseURL: cfg.Kickbase.BaseURL}), nil
	case config.SourceFixture:
		return fixture.New(), nil
	default:
		return nil, fmt.Errorf("server: unknown source %q", cfg.Source)
	}
}
