package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/league-watch/internal/bot"
	"github.com/preston-bernstein/league-watch/internal/config"
	"github.com/preston-bernstein/league-watch/internal/http/handlers"
	"github.com/preston-bernstein/league-watch/internal/http/middleware"
	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/metrics"
	"github.com/preston-bernstein/league-watch/internal/store"
)

var metricsSetup = metrics.Setup

// Server owns the bot, its store, the relays and the HTTP listeners for one process.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         *store.Gateway
	bot           Bot
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
	closers       []func() error
}

// New builds every component from cfg. It opens the store and relay
// connections but does not contact the league yet.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(ctx, cfg, logger, nil)
}

func newServerWithMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	source, err := newSourceFactory(logger, recorder).build(cfg)
	if err != nil {
		stopMetrics(metricsShutdown, logger)
		return nil, err
	}
	gw, err := buildStore(ctx, cfg.Storage, logger)
	if err != nil {
		stopMetrics(metricsShutdown, logger)
		return nil, fmt.Errorf("server: open %s store: %w", cfg.Storage.Backend, err)
	}

	b := bot.New(bot.Options{
		Source:  source,
		Store:   gw,
		Logger:  logger,
		Metrics: recorder,
		Intervals: bot.Intervals{
			Feed:   cfg.Intervals.Feed,
			Chat:   cfg.Intervals.Chat,
			Market: cfg.Intervals.Market,
		},
		ChatPageSize: cfg.ChatPageSize,
	})
	closers, err := registerNotifiers(b, cfg.Notify, logger)
	closers = append(closers, gw.Close)
	if err != nil {
		closeAll(closers, logger)
		return nil, fmt.Errorf("server: register notifiers: %w", err)
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         gw,
		bot:           b,
		httpServer:    buildHTTPServer(cfg, gw, b, logger, recorder),
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
		closers:       closers,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, b Bot, httpSrv httpServer) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		bot:        b,
		httpServer: httpSrv,
	}
}

func buildHTTPServer(cfg config.Config, reader handlers.Reader, status handlers.StatusReporter, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	handler := handlers.NewHandler(reader, status, logger)
	wrapped := middleware.LoggingMiddleware(logger, recorder, handler)

	return newListener(cfg.Port, wrapped, cfg.HTTP)
}

// Run logs in, selects the league, starts the listeners and the poll loops,
// then blocks until ctx is cancelled. Login and league selection errors are
// returned before any loop starts.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) error {
	s.startMetrics()

	if err := s.bot.Connect(ctx, s.cfg.Kickbase.Username, s.cfg.Kickbase.Password); err != nil {
		logging.Error(s.logger, "login failed", err)
		s.gracefulShutdown(nil)
		return err
	}
	if err := s.bot.Initialize(ctx, s.cfg.LeagueID); err != nil {
		logging.Error(s.logger, "league selection failed", err)
		s.gracefulShutdown(nil)
		return err
	}

	s.startServer(stop)
	runDone := make(chan error, 1)
	go func() { runDone <- s.bot.Run(ctx) }()

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info(s.logger, "shutdown signal received")
	case runErr = <-runDone:
		runDone = nil
		if runErr != nil {
			logging.Error(s.logger, "bot exited", runErr)
		}
	}

	s.gracefulShutdown(runDone)
	return runErr
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// gracefulShutdown stops the loops, waits for Run to return when runDone is
// set, then closes listeners, relays and the store.
func (s *Server) gracefulShutdown(runDone <-chan error) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(s.cfg.HTTP))
	defer cancel()

	if runDone != nil {
		if err := s.bot.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop poll loops", err)
		}
		select {
		case <-runDone:
		case <-shutdownCtx.Done():
			logging.Warn(s.logger, "poll loops did not stop before timeout")
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	closeAll(s.closers, s.logger)
	logging.Info(s.logger, "shutdown complete")
}

func closeAll(closers []func() error, logger *slog.Logger) {
	for _, c := range closers {
		if err := c(); err != nil {
			logging.Warn(logger, "close failed", "error", err)
		}
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = newListener(recCfg.Port, handler, config.HTTPConfig{ReadTimeout: cfg.HTTP.ReadTimeout})
	}

	return rec, metricsSrv, shutdown
}

// stopMetrics releases the meter provider when New fails after metrics setup.
func stopMetrics(shutdown func(context.Context) error, logger *slog.Logger) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), fallbackShutdown)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logging.Warn(logger, "metrics shutdown failed", "error", err)
	}
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
