package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedEcho(perMinute int) *echo.Echo {
	e := echo.New()
	e.POST("/contact", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, RateLimiter(perMinute))
	return e
}

func submitFrom(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = ip + ":40000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	e := limitedEcho(3)

	for i := range 3 {
		require.Equal(t, http.StatusCreated, submitFrom(e, "192.0.2.2").Code, "submission %d", i+1)
	}

	rec := submitFrom(e, "192.0.2.2")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "20", rec.Header().Get("Retry-After"))
	assert.JSONEq(t,
		`{"success":false,"error":{"code":"rate_limited","message":"Too many requests. Please try again later."}}`,
		rec.Body.String())
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	e := limitedEcho(1)

	require.Equal(t, http.StatusCreated, submitFrom(e, "192.0.2.10").Code)
	require.Equal(t, http.StatusTooManyRequests, submitFrom(e, "192.0.2.10").Code)

	assert.Equal(t, http.StatusCreated, submitFrom(e, "192.0.2.11").Code)
}

func TestRateLimiter_RetryAfterHasFloorOfOneSecond(t *testing.T) {
	e := limitedEcho(600)
	var rec *httptest.ResponseRecorder
	for range 1000 {
		if rec = submitFrom(e, "192.0.2.20"); rec.Code != http.StatusCreated {
			break
		}
	}
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	e := limitedEcho(0)
	for range 50 {
		require.Equal(t, http.StatusCreated, submitFrom(e, "192.0.2.30").Code)
	}
}
