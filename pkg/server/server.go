package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"hypedigitaly/claude-relay/pkg/config"
	"hypedigitaly/claude-relay/pkg/proxy"
	"hypedigitaly/claude-relay/pkg/proxy/handlers"
	"hypedigitaly/claude-relay/pkg/proxy/middleware"
	"hypedigitaly/claude-relay/pkg/proxy/types"
	"hypedigitaly/claude-relay/pkg/telemetry/health"
	"hypedigitaly/claude-relay/pkg/telemetry/metrics"
	"hypedigitaly/claude-relay/pkg/telemetry/tracing"

	"github.com/go-chi/chi/v5"
)

// Chat routes served by the relay handler.
var chatRoutes = []string{"/chat", "/api/claude/chat", "/api/claude-stream"}

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger *slog.Logger

	// Metrics enables the metrics middleware and endpoint when non-nil and
	// enabled.
	Metrics *metrics.Collector

	// Tracer enables the tracing middleware when non-nil.
	Tracer *tracing.Tracer

	// Health serves GET /ready when non-nil.
	Health *health.Checker
}

// Server is the relay's HTTP server.
type Server struct {
	cfg        *config.Config
	chat       http.Handler
	opts       Options
	logger     *slog.Logger
	httpServer *http.Server

	mu        sync.Mutex
	listener  net.Listener
	isRunning bool
}

// New creates a server that serves chat on the chat routes.
func New(cfg *config.Config, chat http.Handler, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		chat:   chat,
		opts:   opts,
		logger: logger,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Server.ListenAddress,
		Handler:           s.Routes(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	return s
}

// Routes builds the router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware(s.logger))
	r.Use(middleware.RequestIDMiddleware)
	if s.opts.Tracer != nil {
		r.Use(middleware.TracingMiddleware(s.opts.Tracer))
	}
	r.Use(middleware.LoggingMiddleware(s.logger))
	if s.metricsEnabled() {
		r.Use(middleware.MetricsMiddleware(s.opts.Metrics))
	}
	r.Use(middleware.CORSMiddleware(s.cfg.CORS))

	liveness := handlers.NewHealthHandler()
	r.Method(http.MethodGet, "/", liveness)
	r.Method(http.MethodGet, "/health", liveness)
	if s.opts.Health != nil {
		r.Method(http.MethodGet, "/ready", s.opts.Health.ReadinessHandler())
	}

	for _, path := range chatRoutes {
		r.Method(http.MethodPost, path, s.chat)
	}

	if s.metricsEnabled() {
		r.Method(http.MethodGet, s.cfg.Telemetry.Metrics.Path, s.opts.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = proxy.WriteError(w, http.StatusNotFound, types.MessageNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = proxy.WriteError(w, http.StatusMethodNotAllowed, types.MessageMethodNotAllowed)
	})

	return r
}

func (s *Server) metricsEnabled() bool {
	return s.opts.Metrics != nil && s.opts.Metrics.Enabled()
}

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("starting relay server",
		"address", ln.Addr().String(),
		"metrics", s.metricsEnabled(),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	}
}

// Addr returns the listening address, or "" before Serve.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits up to the configured
// shutdown timeout for in-flight streams. Streams still running after that
// are cut off.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	timeout := s.cfg.Server.ShutdownTimeout
	s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("graceful shutdown incomplete, closing connections", "error", err)
		_ = s.httpServer.Close()
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("relay server stopped")
	return nil
}
