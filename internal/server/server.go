package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/eventdesk/internal/config"
	"github.com/nfrund/eventdesk/internal/contact"
	"github.com/nfrund/eventdesk/internal/domain"
	appmiddleware "github.com/nfrund/eventdesk/internal/middleware"
	"github.com/nfrund/eventdesk/internal/module"
	"github.com/nfrund/eventdesk/internal/notify"
	"github.com/nfrund/eventdesk/internal/websocket"
)

// Closer is satisfied by the pub/sub transport shut down after the gateway.
type Closer interface {
	Close() error
}

// Dependencies holds everything the server needs. Every field except Echo
// is required.
type Dependencies struct {
	Config  config.Provider
	Store   domain.ContactRepository
	Bus     *notify.Bus
	Gateway *websocket.Gateway
	PubSub  Closer
	Echo    *echo.Echo
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E       *echo.Echo
	Cfg     config.Provider
	Store   domain.ContactRepository
	Bus     *notify.Bus
	Gateway *websocket.Gateway
	PubSub  Closer

	adminAuth echo.MiddlewareFunc
	modules   []module.Module
}

// New creates a new Server instance with its global middleware installed.
func New(deps Dependencies) (*Server, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("server: config is required")
	case deps.Store == nil:
		return nil, errors.New("server: contact store is required")
	case deps.Bus == nil:
		return nil, errors.New("server: notification bus is required")
	case deps.Gateway == nil:
		return nil, errors.New("server: realtime gateway is required")
	case deps.PubSub == nil:
		return nil, errors.New("server: pub/sub transport is required")
	}

	e := deps.Echo
	if e == nil {
		e = echo.New()
	}
	e.HideBanner = true
	e.HidePort = true
	e.Validator = contact.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: deps.Config.GetCORSAllowOrigins(),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit("64K"))
	setupErrorHandling(e)

	return &Server{
		E:         e,
		Cfg:       deps.Config,
		Store:     deps.Store,
		Bus:       deps.Bus,
		Gateway:   deps.Gateway,
		PubSub:    deps.PubSub,
		adminAuth: appmiddleware.AdminAuth(deps.Config.GetAdminToken()),
	}, nil
}

// setupErrorHandling installs a JSON error handler. Errors that are not
// *echo.HTTPError are unexpected and are logged with a stack trace.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		} else {
			appmiddleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				slog.String("error", err.Error()),
				slog.String("path", c.Request().URL.Path),
				slog.String("stack_trace", string(debug.Stack())),
			)
		}

		var respErr error
		if c.Request().Method == http.MethodHead {
			respErr = c.NoContent(code)
		} else {
			respErr = c.JSON(code, map[string]any{
				"success": false,
				"error": map[string]string{
					"code":    errorCode(code),
					"message": message,
				},
			})
		}
		if respErr != nil {
			slog.Error("Failed to write error response", "error", respErr)
		}
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusUnauthorized:
		return "unauthorized"
	}
	if status >= 500 {
		return "internal_error"
	}
	return "bad_request"
}
