package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gapRequest struct {
	StockCode string `query:"stock_code" validate:"required,max=16"`
	Bin       int    `query:"signal_bin" validate:"gte=1,lte=20"`
	Gap       string `query:"gap" default:"ALL" validate:"oneof=ALL ABOVE BELOW"`
}

func (r *gapRequest) Normalize() { r.Gap = strings.ToUpper(r.Gap) }

func bindQuery(t *testing.T, query string, req interface{}) []ValidationError {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?"+query, nil), httptest.NewRecorder())
	verr := ReadAndValidateRequest(c, req)
	if verr == nil {
		return nil
	}
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)
	return errs
}

func TestReadAndValidateRequest_DefaultsAndNormalize(t *testing.T) {
	var req gapRequest
	require.Nil(t, bindQuery(t, "stock_code=7203&signal_bin=3", &req))
	assert.Equal(t, "ALL", req.Gap)

	req = gapRequest{}
	require.Nil(t, bindQuery(t, "stock_code=7203&signal_bin=3&gap=below", &req))
	assert.Equal(t, "BELOW", req.Gap)
}

func TestReadAndValidateRequest_FieldErrors(t *testing.T) {
	errs := bindQuery(t, "signal_bin=21&gap=sideways", &gapRequest{})
	require.Len(t, errs, 3)

	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "ERR_REQUIRED", byField["stock_code"].Code)
	assert.Equal(t, "ERR_LTE", byField["signal_bin"].Code)
	assert.Equal(t, "20", byField["signal_bin"].Params["max"])
	assert.Equal(t, "ERR_ONEOF", byField["gap"].Code)
	assert.Equal(t, "gap must be one of: ALL, ABOVE, BELOW", byField["gap"].Message)
}

func TestReadAndValidateRequest_BindError(t *testing.T) {
	errs := bindQuery(t, "stock_code=7203&signal_bin=abc", &gapRequest{})
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_BIND", errs[0].Code)
}
