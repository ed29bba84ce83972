package contact

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventdesk/internal/domain"
	"github.com/nfrund/eventdesk/internal/middleware"
	"github.com/nfrund/eventdesk/internal/module"
	"github.com/nfrund/eventdesk/internal/registry"
)

// ServiceKey exposes the contact service to other modules.
const ServiceKey registry.Key[*Service] = "contact.service"

// ContactModule implements the module.Module interface for contact intake.
type ContactModule struct {
	module.BaseModule
	store     domain.ContactRepository
	notifier  Notifier
	adminAuth echo.MiddlewareFunc
	rateLimit int
	service   *Service
}

// Dependencies holds all the services that the ContactModule requires to operate.
type Dependencies struct {
	Store    domain.ContactRepository
	Notifier Notifier
	// AdminAuth guards the admin routes. When nil, the admin token from the
	// registry configuration is used.
	AdminAuth echo.MiddlewareFunc
	// RateLimit is the number of submissions allowed per minute per client IP.
	RateLimit int
}

// New creates a new instance of the ContactModule, injecting its dependencies.
func New(deps Dependencies) *ContactModule {
	return &ContactModule{
		store:     deps.Store,
		notifier:  deps.Notifier,
		adminAuth: deps.AdminAuth,
		rateLimit: deps.RateLimit,
	}
}

// Name returns the module name.
func (m *ContactModule) Name() string {
	return "contact"
}

// Register creates the contact service and shares it through the registry.
func (m *ContactModule) Register(reg *registry.Registry) error {
	m.service = NewService(m.store, m.notifier)
	registry.Set(reg, ServiceKey, m.service)
	return nil
}

// Boot mounts the contact routes. The server mounts us under /api/contact.
func (m *ContactModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	if m.service == nil {
		m.service = NewService(m.store, m.notifier)
	}
	adminAuth := m.adminAuth
	if adminAuth == nil {
		adminAuth = middleware.AdminAuth(reg.Config().GetAdminToken())
	}

	handler := NewHandler(m.service)

	g.POST("", handler.Submit, middleware.RateLimiter(m.rateLimit))

	g.GET("", handler.List, adminAuth)
	g.GET("/:id", handler.Get, adminAuth)
	g.PATCH("/:id/read", handler.MarkRead, adminAuth)
	g.DELETE("/:id", handler.Delete, adminAuth)

	slog.InfoContext(ctx, "ContactModule booted", "rate_limit_per_minute", m.rateLimit)
	return nil
}
