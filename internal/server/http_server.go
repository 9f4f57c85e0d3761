package server

import (
	"context"
	"net/http"
	"time"

	"github.com/preston-bernstein/league-watch/internal/config"
)

// fallbackShutdown applies when the config leaves ShutdownTimeout unset.
const fallbackShutdown = 10 * time.Second

// httpServer is the listener surface Server drives; tests swap in stubs.
type httpServer interface {
	ListenAndServe() error
	Shutdown(context.Context) error
	Addr() string
	Handler() http.Handler
}

type netHTTPServer struct {
	srv *http.Server
}

// newListener binds handler to port with the configured timeouts. The
// metrics listener passes zero write and idle timeouts so long scrapes are
// not cut off.
func newListener(port string, handler http.Handler, t config.HTTPConfig) netHTTPServer {
	return netHTTPServer{srv: &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: t.ReadTimeout,
		ReadTimeout:       t.ReadTimeout,
		WriteTimeout:      t.WriteTimeout,
		IdleTimeout:       t.IdleTimeout,
	}}
}

func (s netHTTPServer) ListenAndServe() error              { return s.srv.ListenAndServe() }
func (s netHTTPServer) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
func (s netHTTPServer) Addr() string                       { return s.srv.Addr }
func (s netHTTPServer) Handler() http.Handler              { return s.srv.Handler }

func shutdownTimeout(cfg config.HTTPConfig) time.Duration {
	if cfg.ShutdownTimeout <= 0 {
		return fallbackShutdown
	}
	return cfg.ShutdownTimeout
}
