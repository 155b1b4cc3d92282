package replay

import (
	"math"

	"SignalAxis/internal/domain/models"
)

// ValidateExitConfig checks direction, gap condition and non-negative thresholds.
func ValidateExitConfig(cfg models.ExitConfig) error {
	if !cfg.TradeType.Valid() {
		return &ConfigError{Field: "trade_type", Reason: "must be BUY or SELL"}
	}
	if !cfg.GapCondition.Valid() {
		return &ConfigError{Field: "prev_close_gap_condition", Reason: "must be ALL, ABOVE or BELOW"}
	}
	if !finite(cfg.ProfitTargetYen) || cfg.ProfitTargetYen < 0 {
		return &ConfigError{Field: "profit_target_yen", Reason: "must be a non-negative number"}
	}
	if !finite(cfg.LossCutYen) || cfg.LossCutYen < 0 {
		return &ConfigError{Field: "loss_cut_yen", Reason: "must be a non-negative number"}
	}
	return nil
}

// ValidateOccurrence checks that prices are positive and the session range is consistent.
func ValidateOccurrence(o models.SignalOccurrence) error {
	bad := func(field, reason string) error {
		return &OccurrenceError{Date: o.SignalDate, Field: field, Reason: reason}
	}
	prices := []struct {
		name string
		v    float64
	}{
		{"day_open", o.DayOpen},
		{"day_high", o.DayHigh},
		{"day_low", o.DayLow},
		{"day_close", o.DayClose},
	}
	for _, p := range prices {
		if !finite(p.v) || p.v <= 0 {
			return bad(p.name, "must be positive")
		}
	}
	if o.DayHigh < o.DayLow {
		return bad("day_high", "below day_low")
	}
	if o.DayLow > o.DayOpen || o.DayLow > o.DayClose {
		return bad("day_low", "above open or close")
	}
	if o.DayHigh < o.DayOpen || o.DayHigh < o.DayClose {
		return bad("day_high", "below open or close")
	}
	if o.PrevClose != nil && (!finite(*o.PrevClose) || *o.PrevClose <= 0) {
		return bad("prev_close", "must be positive")
	}
	if !finite(o.PrevCloseToOpenGap) {
		return bad("prev_close_to_open_gap", "must be finite")
	}
	if !finite(o.BaselineProfitRate) {
		return bad("baseline_profit_rate", "must be finite")
	}
	return nil
}

// FromRow converts a warehouse row into a validated occurrence. A null gap is derived
// from open and prev_close when both exist, otherwise it is zero.
func FromRow(row models.OccurrenceRow) (models.SignalOccurrence, error) {
	required := []struct {
		name string
		v    bool
	}{
		{"day_open", row.DayOpen.Valid},
		{"day_high", row.DayHigh.Valid},
		{"day_low", row.DayLow.Valid},
		{"day_close", row.DayClose.Valid},
		{"baseline_profit_rate", row.BaselineProfitRate.Valid},
	}
	for _, r := range required {
		if !r.v {
			return models.SignalOccurrence{}, &OccurrenceError{Date: row.SignalDate, Field: r.name, Reason: "is null"}
		}
	}
	o := models.SignalOccurrence{
		SignalDate:         row.SignalDate,
		DayOpen:            row.DayOpen.Float64,
		DayHigh:            row.DayHigh.Float64,
		DayLow:             row.DayLow.Float64,
		DayClose:           row.DayClose.Float64,
		BaselineProfitRate: row.BaselineProfitRate.Float64,
	}
	if row.PrevClose.Valid {
		pc := row.PrevClose.Float64
		o.PrevClose = &pc
	}
	switch {
	case row.PrevCloseToOpenGap.Valid:
		o.PrevCloseToOpenGap = row.PrevCloseToOpenGap.Float64
	case o.PrevClose != nil:
		o.PrevCloseToOpenGap = o.DayOpen - *o.PrevClose
	}
	if row.TradingVolume.Valid {
		o.TradingVolume = row.TradingVolume.Int64
	}
	if err := ValidateOccurrence(o); err != nil {
		return models.SignalOccurrence{}, err
	}
	return o, nil
}

// FromRows converts rows in order, stopping at the first malformed one.
func FromRows(rows []models.OccurrenceRow) ([]models.SignalOccurrence, error) {
	out := make([]models.SignalOccurrence, 0, len(rows))
	for _, r := range rows {
		o, err := FromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
