package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestKeyedLimiter_PerKeyBudget(t *testing.T) {
	k := NewKeyedLimiter(0.001, 2, time.Minute)
	assert.True(t, k.Allow("a"))
	assert.True(t, k.Allow("a"))
	assert.False(t, k.Allow("a"))
	assert.True(t, k.Allow("b"))
}

func TestRateLimit_Returns429(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(NewKeyedLimiter(0.001, 1, time.Minute)))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
