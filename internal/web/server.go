// Package web serves the interactive chart over HTTP, one dispatcher per viewer.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/leen324/locscope/internal/contract"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// Server is the HTTP host for the chart.
type Server struct {
	cfg      *contract.Config
	router   *http.ServeMux
	server   *http.Server
	handler  http.Handler
	sessions *sessionStore
	metrics  *Metrics
}

// NewServer creates a server for cfg. A nil mgr disables caching and history.
func NewServer(cfg *contract.Config, mgr contract.CacheManager) *Server {
	metrics := NewMetrics()
	s := &Server{
		cfg:      cfg,
		router:   http.NewServeMux(),
		sessions: newSessionStore(cfg, mgr, metrics, contract.SessionIdleTimeout),
		metrics:  metrics,
	}
	s.registerRoutes()

	s.handler = requestIDMiddleware(loggingMiddleware(metrics)(recoveryMiddleware(s.router)))
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("GET /api/state", s.handleState)
	s.router.HandleFunc("POST /api/brush", s.handleBrush)
	s.router.HandleFunc("POST /api/cutoff", s.handleCutoff)
	s.router.HandleFunc("POST /api/hover", s.handleHover)
	s.router.HandleFunc("GET /api/fragments", s.handleFragments)
	s.router.HandleFunc("POST /api/reload", s.handleReload)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.Handle("GET /metrics", s.metrics.Handler())
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Listen binds the configured address. It is separate from Serve so callers can
// learn the bound address before serving.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return ln, nil
}

// Serve runs the server on ln until ctx is cancelled, then shuts it down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		contract.Logger.WithField("addr", ln.Addr().String()).Info("Starting HTTP server")
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.sessions.janitor(ctx, sweepInterval)
	})

	g.Go(func() error {
		<-ctx.Done()
		contract.Logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
