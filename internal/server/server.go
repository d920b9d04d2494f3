// Package server exposes the processing pipeline over HTTP.
//
// The configuration is loaded on every request, so runtime sources always
// reflect the current configuration file or URL.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/engine"
)

// DefaultMaxUpload bounds the request body of a process call.
const DefaultMaxUpload = 32 << 20

// ConfigLoader returns the current application configuration.
type ConfigLoader func(ctx context.Context) (*config.AppConfig, error)

// Server routes HTTP requests to the engine.
//
// Thread-safety: a Server is immutable after New and safe for concurrent use.
type Server struct {
	load      ConfigLoader
	engine    *engine.Engine
	logger    *slog.Logger
	maxUpload int64
	router    *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithEngine sets the engine used to process uploads. Default: engine.New().
func WithEngine(e *engine.Engine) Option {
	return func(s *Server) {
		s.engine = e
	}
}

// WithLogger sets the request logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxUpload sets the largest accepted request body in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		s.maxUpload = n
	}
}

// New creates a Server that reads its configuration through load.
func New(load ConfigLoader, opts ...Option) *Server {
	s := &Server{
		load:      load,
		logger:    slog.Default(),
		maxUpload: DefaultMaxUpload,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = engine.New(engine.WithLogger(s.logger))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/app", s.handleApp)
		r.Get("/sources", s.handleSources)
		r.Post("/sources/{name}/process", s.handleProcess)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
