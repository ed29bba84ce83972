package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/eventdesk/internal/module"
	"github.com/nfrund/eventdesk/internal/registry"
)

// InitModules registers every module, then boots each one on its own route
// group under /api/<name>. Registration completes for all modules before
// any module boots.
func (s *Server) InitModules(ctx context.Context, modules []module.Module, reg *registry.Registry) error {
	if err := module.RegisterAll(modules, reg); err != nil {
		return err
	}

	for _, m := range modules {
		g := s.E.Group("/api/" + m.Name())
		if err := m.Boot(ctx, g, reg); err != nil {
			return fmt.Errorf("boot module %s: %w", m.Name(), err)
		}
		s.modules = append(s.modules, m)
		slog.Debug("Module booted", "module", m.Name())
	}
	return nil
}
