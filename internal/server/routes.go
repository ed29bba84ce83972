package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	appmiddleware "github.com/nfrund/eventdesk/internal/middleware"
)

// storePinger is implemented by stores that can report reachability.
type storePinger interface {
	Ping(ctx context.Context) error
}

const healthCheckTimeout = 2 * time.Second

// RegisterRoutes sets up the core, non-module routes.
func (s *Server) RegisterRoutes() {
	s.E.GET("/health", s.health)

	// Realtime notification channel for admin clients.
	s.E.GET("/ws/notifications", s.Gateway.Handler(), s.adminAuth)

	s.E.GET("/api/gateway/stats", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"stats":   s.Gateway.Stats(),
		})
	}, s.adminAuth)
}

// health reports 200 while the contact store answers and 503 otherwise.
func (s *Server) health(c echo.Context) error {
	p, ok := s.Store.(storePinger)
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		appmiddleware.FromContext(c.Request().Context()).Warn("Store health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "store": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "store": "ok"})
}
