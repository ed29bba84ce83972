package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nfrund/eventdesk/internal/module"
)

// Shutdown stops the server in dependency order: the HTTP listener first,
// then modules, the realtime gateway, the bus transport and finally the
// message store. Every step runs even when an earlier one fails.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}

	if err := module.ShutdownAll(ctx, s.modules); err != nil {
		errs = append(errs, err)
	}

	if err := s.Gateway.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("gateway: %w", err))
	}
	if err := s.PubSub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("pubsub: %w", err))
	}
	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		slog.Error("Shutdown completed with errors", "error", err)
	} else {
		slog.Info("Shutdown complete")
	}
	return err
}
