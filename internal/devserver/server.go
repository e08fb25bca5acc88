// Package devserver serves a built wasm bundle over HTTP for local development.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	dberrors "git.home.luguber.info/inful/runwasm/internal/foundation/errors"
	"git.home.luguber.info/inful/runwasm/internal/logfields"
	"git.home.luguber.info/inful/runwasm/internal/metrics"
)

const (
	// MetricsPath exposes Prometheus metrics when a metrics handler is configured.
	MetricsPath = "/metrics"

	shutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	// Dir is the bundle directory to serve.
	Dir  string
	Host string
	Port int

	LiveReload bool
	// Metrics is mounted at MetricsPath when non-nil.
	Metrics  http.Handler
	Recorder metrics.Recorder
}

// Server is the development HTTP server.
type Server struct {
	opts    Options
	hub     *LiveReloadHub
	handler http.Handler
}

// New builds a server. It does not listen until Run or Serve is called.
func New(opts Options) *Server {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	s := &Server{opts: opts}
	if opts.LiveReload {
		s.hub = NewLiveReloadHub()
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	var static http.Handler = http.FileServer(http.Dir(s.opts.Dir))
	if s.hub != nil {
		static = injectLiveReload(static)
		mux.Handle(LiveReloadPath, s.hub)
	}
	mux.Handle("/", staticHeaders(static))

	if s.opts.Metrics != nil {
		mux.Handle(MetricsPath, s.opts.Metrics)
	}
	return recoverPanics(observe(s.opts.Recorder, mux))
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
}

// URL is the browser address of the bundle.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Reload tells connected browsers that buildID is available. It is a no-op
// without live reload.
func (s *Server) Reload(buildID string) {
	if s.hub != nil {
		s.hub.Broadcast(buildID)
	}
}

// Run listens on Addr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.Addr())
	if err != nil {
		return dberrors.ServerError("failed to listen").WithCause(err).
			WithContext("addr", s.Addr()).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	slog.Info("Dev server listening", logfields.Addr(ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return dberrors.ServerError("dev server failed").WithCause(err).Build()
	case <-ctx.Done():
	}

	if s.hub != nil {
		s.hub.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return dberrors.ServerError("dev server shutdown failed").WithCause(err).Build()
	}
	slog.Info("Dev server stopped")
	return nil
}
