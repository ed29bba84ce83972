// Package module defines the lifecycle of a feature mounted on the server.
package module

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventdesk/internal/registry"
)

// Module is a feature with its own routes under /api/<Name>.
//
// The server calls Register on every module before it calls Boot on any of
// them, so Boot may look up services other modules registered. Shutdown runs
// in reverse boot order.
type Module interface {
	Name() string
	Register(reg *registry.Registry) error
	Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error
	Shutdown(ctx context.Context) error
}

// BaseModule supplies no-op lifecycle methods for embedding.
type BaseModule struct{}

func (BaseModule) Register(*registry.Registry) error                           { return nil }
func (BaseModule) Boot(context.Context, *echo.Group, *registry.Registry) error { return nil }
func (BaseModule) Shutdown(context.Context) error                              { return nil }

// RegisterAll registers modules in order and stops at the first failure.
func RegisterAll(modules []Module, reg *registry.Registry) error {
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if seen[m.Name()] {
			return fmt.Errorf("duplicate module name %q", m.Name())
		}
		seen[m.Name()] = true
		if err := m.Register(reg); err != nil {
			return fmt.Errorf("register module %s: %w", m.Name(), err)
		}
	}
	return nil
}

// ShutdownAll shuts modules down in reverse order. Every module is asked to
// stop even when an earlier one fails.
func ShutdownAll(ctx context.Context, modules []Module) error {
	var errs []error
	for i := len(modules) - 1; i >= 0; i-- {
		if err := modules[i].Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("module %s: %w", modules[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}
