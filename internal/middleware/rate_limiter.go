package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// idleClientTTL is how long a client's token bucket survives without requests.
const idleClientTTL = 3 * time.Minute

// RateLimiter limits each client, keyed by real IP, to perMinute requests a
// minute with bursts of the same size. Denied requests get 429 and a
// Retry-After hint. A non-positive perMinute disables limiting.
func RateLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	limit := rate.Every(time.Minute / time.Duration(perMinute))
	retryAfter := strconv.Itoa(max(1, int(time.Minute/time.Duration(perMinute)/time.Second)))

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      limit,
			Burst:     perMinute,
			ExpiresIn: idleClientTTL,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, denied("forbidden", "unable to identify client"))
		},
		DenyHandler: func(c echo.Context, client string, err error) error {
			FromContext(c.Request().Context()).Warn("Rate limit exceeded",
				"client_ip", client, "path", c.Path(), "per_minute", perMinute)
			c.Response().Header().Set("Retry-After", retryAfter)
			return c.JSON(http.StatusTooManyRequests, denied("rate_limited", "Too many requests. Please try again later."))
		},
	})
}

// denied renders the JSON error envelope used for rejected requests.
func denied(code, message string) echo.Map {
	return echo.Map{
		"success": false,
		"error":   echo.Map{"code": code, "message": message},
	}
}
