// Package app wires the dev backend: routes, middleware and the HTTP server lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/invoicekeeper/internal/config"
	"github.com/iudanet/invoicekeeper/internal/server/handlers"
	"github.com/iudanet/invoicekeeper/internal/server/middleware"
	"github.com/iudanet/invoicekeeper/internal/server/storage/sqlite"
)

// ShutdownTimeout ограничивает ожидание активных запросов при остановке
const ShutdownTimeout = 10 * time.Second

// Server is the dev backend HTTP server
type Server struct {
	logger  *slog.Logger
	limiter *middleware.RateLimiter
	http    *http.Server
}

// New builds the server and its routes on top of the SQLite store
func New(cfg *config.ServerConfig, logger *slog.Logger, store *sqlite.Storage, version string) *Server {
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, logger)

	return &Server{
		logger:  logger,
		limiter: limiter,
		http: &http.Server{
			Addr:              cfg.Address,
			Handler:           NewHandler(logger, store, limiter, version),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// NewHandler returns the routed handler with the middleware chain applied.
// /exec answers every method so that a HEAD probe from the client sees it online.
func NewHandler(logger *slog.Logger, store *sqlite.Storage, limiter *middleware.RateLimiter, version string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/exec", middleware.RateLimitMiddleware(limiter, logger)(
		handlers.NewExecHandler(logger, store, store, store),
	))
	mux.HandleFunc("GET /health", handlers.NewHealthHandler(logger, version, store).Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Chain(mux,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger, "/health", "/metrics"),
	)
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until ctx is canceled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.limiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server started", "address", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server stopped")
	return nil
}
