package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// shutdownTimeout bounds the whole graceful shutdown sequence.
const shutdownTimeout = 10 * time.Second

// Start runs the HTTP server until ctx is cancelled or the listener fails,
// then shuts everything down.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Cfg.GetServerAddr()
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", addr)
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var startErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case startErr = <-errCh:
		slog.Error("HTTP server failed", "error", startErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return errors.Join(startErr, s.Shutdown(shutdownCtx))
}
