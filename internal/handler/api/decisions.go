package api

import (
	"github.com/labstack/echo/v4"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/usecase"
	xhttp "SignalAxis/pkg/http"
	applogger "SignalAxis/pkg/logger"
)

type DecisionsHandler struct {
	base
	decisions *usecase.Decisions
}

func NewDecisionsHandler(l *applogger.Logger, m domrepo.Metrics, decisions *usecase.Decisions) *DecisionsHandler {
	return &DecisionsHandler{base: base{l: l, metrics: m}, decisions: decisions}
}

func (h *DecisionsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/decisions")
	g.POST("", h.Record)
	g.GET("", h.List)
}

func (h *DecisionsHandler) Record(c echo.Context) error {
	req := &models.DecisionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if _, err := models.ParseTradeType(req.TradeType); err != nil {
		return badTradeType(c)
	}

	dec, err := h.decisions.Record(c.Request().Context(), *req)
	if err != nil {
		return h.writeError(c, "record_decision", err)
	}
	return xhttp.CreatedResponse(c, dec)
}

func (h *DecisionsHandler) List(c echo.Context) error {
	req := &models.DecisionListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.decisions.List(c.Request().Context(), models.DecisionStatus(req.Status), req.Limit)
	if err != nil {
		return h.writeError(c, "list_decisions", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
