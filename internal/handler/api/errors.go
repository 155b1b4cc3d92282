package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/services/replay"
	"SignalAxis/internal/usecase"
	xhttp "SignalAxis/pkg/http"
	applogger "SignalAxis/pkg/logger"
	"SignalAxis/pkg/resilience"
)

// base carries what every handler needs to report failures.
type base struct {
	l       *applogger.Logger
	metrics domrepo.Metrics
}

// toAppError maps use case errors to HTTP errors. Unknown errors yield nil.
func toAppError(err error) *xhttp.AppError {
	var (
		occErr  *replay.OccurrenceError
		cfgErr  *replay.ConfigError
		confErr *usecase.ConfiguredError
	)
	switch {
	case errors.As(err, &confErr):
		return xhttp.NewAppError("ERR_ALREADY_CONFIGURED", "", "axis already has a configured exit rule", http.StatusConflict).
			WithParam("decision", confErr.Existing).
			WithError(err)
	case errors.As(err, &occErr):
		return xhttp.NewAppError("ERR_INVALID_OCCURRENCE", occErr.Field, occErr.Error(), http.StatusUnprocessableEntity).
			WithError(err)
	case errors.As(err, &cfgErr):
		return xhttp.NewAppError("ERR_INVALID_EXIT_CONFIG", cfgErr.Field, cfgErr.Error(), http.StatusUnprocessableEntity).
			WithError(err)
	case errors.Is(err, usecase.ErrInvalidDecision):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrNoLearningStats):
		return xhttp.NewAppError("ERR_NO_LEARNING_STATS", "", "no learning-period data for this axis", http.StatusNotFound).WithError(err)
	case errors.Is(err, usecase.ErrNoVerificationData):
		return xhttp.NewAppError("ERR_NO_VERIFICATION_DATA", "", "no verification-period data for this axis", http.StatusNotFound).WithError(err)
	case errors.Is(err, usecase.ErrNothingFires):
		return xhttp.NewAppError("ERR_NOTHING_FIRES", "", "no signals fire on the next trading date", http.StatusNotFound).WithError(err)
	case errors.Is(err, domrepo.ErrNotFound):
		return xhttp.NotFoundError("not found").WithError(err)
	case errors.Is(err, resilience.ErrUnavailable):
		return xhttp.ServiceUnavailableError("warehouse temporarily unavailable").WithError(err)
	}
	return nil
}

// writeError responds with the mapped error, logging only unexpected failures.
func (b *base) writeError(c echo.Context, op string, err error) error {
	if appErr := toAppError(err); appErr != nil {
		if appErr.Status >= http.StatusInternalServerError {
			b.l.Warn(op+" failed", applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appErr)
	}
	b.metrics.RecordError(op)
	b.l.Error(op+" failed", applogger.Error(err))
	return xhttp.InternalServerErrorResponse(c)
}

func badTradeType(c echo.Context) error {
	return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
		Code:    "ERR_ONEOF",
		Field:   "trade_type",
		Message: "trade_type must be one of: BUY, SELL",
		Params:  map[string]interface{}{"options": []string{"BUY", "SELL"}},
	}})
}
