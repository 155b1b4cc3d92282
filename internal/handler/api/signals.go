package api

import (
	"github.com/labstack/echo/v4"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/usecase"
	xhttp "SignalAxis/pkg/http"
	applogger "SignalAxis/pkg/logger"
)

// SignalsHandler serves exit-rule tuning, verification and the tomorrow views.
type SignalsHandler struct {
	base
	tuning       *usecase.Tuning
	verification *usecase.Verification
	tomorrow     *usecase.TomorrowSignals
	bins         *usecase.BinSelection
}

func NewSignalsHandler(
	l *applogger.Logger,
	m domrepo.Metrics,
	tuning *usecase.Tuning,
	verification *usecase.Verification,
	tomorrow *usecase.TomorrowSignals,
	bins *usecase.BinSelection,
) *SignalsHandler {
	return &SignalsHandler{
		base:         base{l: l, metrics: m},
		tuning:       tuning,
		verification: verification,
		tomorrow:     tomorrow,
		bins:         bins,
	}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/signals")
	g.GET("/config", h.Config)
	g.GET("/verification", h.Verification)
	g.GET("/tomorrow", h.Tomorrow)
	g.GET("/tomorrow/:stock_code/:trade_type/details", h.TomorrowDetails)
	// Per-bin tuning as linked from the tomorrow view; same evaluation as /config.
	g.GET("/tomorrow/:stock_code/:trade_type/config/:signal_type/:signal_bin", h.Config)
}

func (h *SignalsHandler) Config(c echo.Context) error {
	req := &models.TuningRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	axis, err := req.Axis()
	if err != nil {
		return badTradeType(c)
	}

	res, err := h.tuning.Evaluate(c.Request().Context(), axis, req.ExitConfig(axis.TradeType))
	if err != nil {
		return h.writeError(c, "tuning", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Verification(c echo.Context) error {
	req := &models.TuningRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	axis, err := req.Axis()
	if err != nil {
		return badTradeType(c)
	}

	res, err := h.verification.Verify(c.Request().Context(), axis, req.ExitConfig(axis.TradeType))
	if err != nil {
		return h.writeError(c, "verification", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Tomorrow(c echo.Context) error {
	req := &models.TomorrowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	page, err := h.tomorrow.List(c.Request().Context(), *req)
	if err != nil {
		return h.writeError(c, "tomorrow", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, page)
}

func (h *SignalsHandler) TomorrowDetails(c echo.Context) error {
	req := &models.StockDirectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tt, err := models.ParseTradeType(req.TradeType)
	if err != nil {
		return badTradeType(c)
	}

	res, err := h.bins.Details(c.Request().Context(), req.StockCode, tt)
	if err != nil {
		return h.writeError(c, "bin_selection", err)
	}
	return xhttp.SuccessResponse(c, res)
}
