package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AdminAuth protects admin-only routes with a static bearer token. The token
// is read from the Authorization header, or from the "token" query parameter
// for clients that cannot set headers on a WebSocket handshake.
//
// An empty token disables the check.
func AdminAuth(token string) echo.MiddlewareFunc {
	if token == "" {
		slog.Warn("ADMIN_API_TOKEN is not set; admin routes are unauthenticated")
	}

	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(echo.Context) bool {
			return token == ""
		},
		KeyLookup:  "header:" + echo.HeaderAuthorization + ":Bearer ,query:token",
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			FromContext(c.Request().Context()).Debug("Admin authentication failed",
				"path", c.Path(), "error", err)
			return c.JSON(http.StatusUnauthorized, denied("unauthorized", "a valid admin token is required"))
		},
	})
}
