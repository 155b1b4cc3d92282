package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_HealthAndReadiness(t *testing.T) {
	var down error
	s := NewServer(nil, nil, WithMetricsPath(""), WithReadiness(func(context.Context) error { return down }))

	assert.Equal(t, http.StatusOK, serve(s, "/healthz").Code)
	assert.Equal(t, http.StatusOK, serve(s, "/readyz").Code)

	down = errors.New("clickhouse: connection refused")
	rec := serve(s, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	assert.Equal(t, http.StatusNotFound, serve(s, "/metrics").Code)
}

func TestServer_WithoutReadinessCheck(t *testing.T) {
	s := NewServer(nil, nil)
	assert.Equal(t, http.StatusNotFound, serve(s, "/readyz").Code)
	assert.Equal(t, http.StatusOK, serve(s, "/metrics").Code)
}
