package api

import (
	"github.com/labstack/echo/v4"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/usecase"
	xhttp "SignalAxis/pkg/http"
	applogger "SignalAxis/pkg/logger"
)

// AxisHandler serves per-axis detail and the per-stock signal-type summary.
type AxisHandler struct {
	base
	details *usecase.AxisDetails
	types   *usecase.SignalTypes
}

func NewAxisHandler(l *applogger.Logger, m domrepo.Metrics, details *usecase.AxisDetails, types *usecase.SignalTypes) *AxisHandler {
	return &AxisHandler{base: base{l: l, metrics: m}, details: details, types: types}
}

func (h *AxisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/axis")
	g.GET("/signal-types/:stock_code/:trade_type", h.SignalTypes)
	g.GET("/:signal_type/:signal_bin/:trade_type/:stock_code", h.Detail)
}

func (h *AxisHandler) Detail(c echo.Context) error {
	req := &models.AxisQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	axis, err := req.Axis()
	if err != nil {
		return badTradeType(c)
	}

	res, err := h.details.Get(c.Request().Context(), axis)
	if err != nil {
		return h.writeError(c, "axis_detail", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AxisHandler) SignalTypes(c echo.Context) error {
	req := &models.StockDirectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tt, err := models.ParseTradeType(req.TradeType)
	if err != nil {
		return badTradeType(c)
	}

	rows, err := h.types.Summarize(c.Request().Context(), req.StockCode, tt)
	if err != nil {
		return h.writeError(c, "signal_types", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
