// Package server runs the HTTP listener and coordinates graceful
// shutdown of the listener and its backing resources.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Config describes the listener and its timeouts.
type Config struct {
	Handler         http.Handler
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

// Server wraps http.Server with signal handling and ordered teardown
// of registered resources.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
	closers         []closer
}

// New creates a Server from cfg. Resources registered via OnShutdown
// are closed after the listener drains, in reverse registration order.
func New(cfg Config) *Server {
	return &Server{
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      cfg.Handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          cfg.Logger,
	}
}

// OnShutdown registers a named resource to close during shutdown.
// Register in dependency order: the database before the cache means
// the cache closes first.
func (s *Server) OnShutdown(name string, fn func(ctx context.Context) error) {
	s.closers = append(s.closers, closer{name: name, fn: fn})
}

// Run serves until SIGINT or SIGTERM arrives, then drains in-flight
// requests and closes registered resources. It blocks for the life of
// the process.
func (s *Server) Run() error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	failed := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("listen: %w", err)
	case sig := <-signals:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.http.SetKeepAlivesEnabled(false)
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("listener shutdown error", "error", err)
	}
	s.logger.Info("listener drained")

	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.fn(ctx); err != nil {
			s.logger.Error("resource close error", "name", c.name, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("close %s: %w", c.name, err)
			}
			continue
		}
		s.logger.Info("resource closed", "name", c.name)
	}

	if firstErr != nil {
		return firstErr
	}
	s.logger.Info("server stopped")
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}
