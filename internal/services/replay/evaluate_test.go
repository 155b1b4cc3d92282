package replay

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalAxis/internal/domain/models"
)

func TestEvaluate_BaselineAndFiltered(t *testing.T) {
	occs := []models.SignalOccurrence{
		occ(1000, 1060, 980, 1010, 5, 0.2),  // target hit: 5.0
		occ(1000, 1040, 965, 1000, -5, 0.0), // loss cut: -3.0
		occ(1000, 1010, 995, 1000, 0, 0.0),  // baseline zero, dropped from filtered
		occ(1000, 1020, 990, 1010, 3, 1.0),  // baseline 1.0
	}
	ev, err := Evaluate(occs, buy(50, 30))
	require.NoError(t, err)

	assert.True(t, ev.HasFilter)
	assert.Equal(t, 4, ev.Baseline.TotalSamples)
	assert.Equal(t, 0.3, ev.Baseline.AvgProfitRate)

	assert.Equal(t, 3, ev.Filtered.TotalSamples)
	assert.Equal(t, 1.0, ev.Filtered.AvgProfitRate)
	assert.Equal(t, 66.7, ev.Filtered.WinRate)

	require.Len(t, ev.Details, 4)
	assert.Equal(t, 5.0, ev.Details[0].FilteredProfitRate)
	assert.Equal(t, 6.0, ev.Details[0].OpenToHighPct)
	assert.Equal(t, -3.5, ev.Details[1].OpenToLowPct)
	assert.Equal(t, models.ExitLossCut, ev.Details[1].Exit)
}

func TestEvaluate_GapFilterExcludesFromBothPasses(t *testing.T) {
	occs := []models.SignalOccurrence{
		occ(1000, 1010, 990, 1000, 4, 0.5),
		occ(1000, 1010, 990, 1000, -4, -2.0),
		occ(1000, 1010, 990, 1000, 0, -1.0),
	}
	cfg := buy(0, 0)
	cfg.GapCondition = models.GapAbove
	ev, err := Evaluate(occs, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, ev.Baseline.TotalSamples)
	assert.Equal(t, 1, ev.Filtered.TotalSamples)
	assert.False(t, ev.Details[2].Included)
}

func TestEvaluate_NoOverrideMirrorsBaseline(t *testing.T) {
	occs := []models.SignalOccurrence{occ(1000, 1010, 990, 1000, 1, 0), occ(1000, 1010, 990, 1000, 1, 1)}
	ev, err := Evaluate(occs, models.ExitConfig{TradeType: models.TradeTypeSell})
	require.NoError(t, err)
	assert.False(t, ev.HasFilter)
	assert.Equal(t, ev.Baseline, ev.Filtered)
	assert.Equal(t, 2, ev.Filtered.TotalSamples)
}

func TestEvaluate_RejectsMalformedInput(t *testing.T) {
	_, err := Evaluate(nil, buy(-1, 0))
	assert.True(t, errors.Is(err, ErrInvalidExitConfig))

	_, err = Evaluate(nil, models.ExitConfig{TradeType: "HOLD"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "trade_type", cfgErr.Field)

	bad := occ(1000, 990, 1010, 1000, 0, 0)
	_, err = Evaluate([]models.SignalOccurrence{bad}, buy(10, 10))
	var occErr *OccurrenceError
	require.ErrorAs(t, err, &occErr)
	assert.True(t, errors.Is(err, ErrInvalidOccurrence))
	assert.Equal(t, "day_high", occErr.Field)
}

func TestValidateOccurrence(t *testing.T) {
	assert.NoError(t, ValidateOccurrence(occ(1000, 1010, 990, 1000, 0, 0)))
	assert.Error(t, ValidateOccurrence(occ(-1, 1010, 990, 1000, 0, 0)))
	assert.Error(t, ValidateOccurrence(occ(1000, 1010, 1001, 1005, 0, 0)), "low above open")
	assert.Error(t, ValidateOccurrence(occ(1000, 1010, 990, 1020, 0, 0)), "close above high")

	zero := 0.0
	o := occ(1000, 1010, 990, 1000, 0, 0)
	o.PrevClose = &zero
	assert.Error(t, ValidateOccurrence(o))
}

func TestFromRow(t *testing.T) {
	f := func(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }
	row := models.OccurrenceRow{
		SignalDate:         time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		DayOpen:            f(1000),
		DayHigh:            f(1020),
		DayLow:             f(990),
		DayClose:           f(1010),
		PrevClose:          f(1012),
		BaselineProfitRate: f(1.0),
		TradingVolume:      sql.NullInt64{Int64: 300, Valid: true},
	}
	o, err := FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, -12.0, o.PrevCloseToOpenGap)
	assert.Equal(t, int64(300), o.TradingVolume)

	row.PrevCloseToOpenGap = f(3)
	o, err = FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, 3.0, o.PrevCloseToOpenGap)

	row.PrevClose = sql.NullFloat64{}
	row.PrevCloseToOpenGap = sql.NullFloat64{}
	o, err = FromRow(row)
	require.NoError(t, err)
	assert.Nil(t, o.PrevClose)
	assert.Zero(t, o.PrevCloseToOpenGap)

	row.DayHigh = sql.NullFloat64{}
	_, err = FromRow(row)
	assert.ErrorIs(t, err, ErrInvalidOccurrence)
}
