package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func corsServer(origins ...string) *echo.Echo {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType},
		MaxAge:       600,
	}))
	e.GET("/api/decisions", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.OPTIONS("/api/decisions", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func TestCORS_Preflight(t *testing.T) {
	e := corsServer("http://localhost:3000")

	req := httptest.NewRequest(http.MethodOptions, "/api/decisions", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET, POST", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}

func TestCORS_RejectsUnknownOrigin(t *testing.T) {
	e := corsServer("http://localhost:3000")

	req := httptest.NewRequest(http.MethodGet, "/api/decisions", nil)
	req.Header.Set(echo.HeaderOrigin, "http://evil.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORS_Wildcard(t *testing.T) {
	e := corsServer("*")

	req := httptest.NewRequest(http.MethodGet, "/api/decisions", nil)
	req.Header.Set(echo.HeaderOrigin, "http://any.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
