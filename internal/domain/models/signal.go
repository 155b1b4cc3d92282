package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type TradeType string

const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

// ParseTradeType accepts BUY/SELL in any case and the LONG/SHORT aliases used by older clients.
func ParseTradeType(s string) (TradeType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG":
		return TradeTypeBuy, nil
	case "SELL", "SHORT":
		return TradeTypeSell, nil
	default:
		return "", fmt.Errorf("unknown trade type %q", s)
	}
}

func (t TradeType) Valid() bool {
	return t == TradeTypeBuy || t == TradeTypeSell
}

// GapCondition filters occurrences by the sign of the previous-close-to-open gap.
type GapCondition string

const (
	GapAll   GapCondition = "ALL"
	GapAbove GapCondition = "ABOVE"
	GapBelow GapCondition = "BELOW"
)

// ParseGapCondition maps an empty value to ALL.
func ParseGapCondition(s string) (GapCondition, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL":
		return GapAll, nil
	case "ABOVE":
		return GapAbove, nil
	case "BELOW":
		return GapBelow, nil
	default:
		return "", fmt.Errorf("unknown gap condition %q", s)
	}
}

func (g GapCondition) Valid() bool {
	return g == GapAll || g == GapAbove || g == GapBelow
}

// SignalOccurrence is one historical trading day on which a signal fired.
// Prices share one currency unit; PrevCloseToOpenGap is DayOpen-PrevClose in that unit.
type SignalOccurrence struct {
	SignalDate         time.Time
	DayOpen            float64
	DayHigh            float64
	DayLow             float64
	DayClose           float64
	PrevClose          *float64
	PrevCloseToOpenGap float64
	BaselineProfitRate float64
	TradingVolume      int64
}

// OccurrenceRow is the loosely typed shape read from the warehouse.
type OccurrenceRow struct {
	SignalType         string
	SignalBin          int
	TradeType          string
	StockCode          string
	StockName          string
	SignalDate         time.Time
	DayOpen            sql.NullFloat64
	DayHigh            sql.NullFloat64
	DayLow             sql.NullFloat64
	DayClose           sql.NullFloat64
	PrevClose          sql.NullFloat64
	PrevCloseToOpenGap sql.NullFloat64
	BaselineProfitRate sql.NullFloat64
	TradingVolume      sql.NullInt64
}

// Axis returns the grouping key of the row. The trade type is taken verbatim.
func (r OccurrenceRow) Axis() AxisKey {
	return AxisKey{
		SignalType: r.SignalType,
		SignalBin:  r.SignalBin,
		TradeType:  TradeType(strings.ToUpper(r.TradeType)),
		StockCode:  r.StockCode,
	}
}

// ExitConfig is a candidate exit rule. Zero ProfitTargetYen/LossCutYen disables that leg.
type ExitConfig struct {
	TradeType       TradeType    `json:"trade_type"`
	ProfitTargetYen float64      `json:"profit_target_yen"`
	LossCutYen      float64      `json:"loss_cut_yen"`
	GapCondition    GapCondition `json:"prev_close_gap_condition"`
}

// RecomputedOutcome is the result of replaying one occurrence under an ExitConfig.
type RecomputedOutcome struct {
	ProfitRate float64 `json:"profit_rate"`
	Included   bool    `json:"included"`
	// Exit shows which leg fired: "loss_cut", "profit_target", "baseline" or "gap_excluded".
	Exit string `json:"exit"`
}

const (
	ExitLossCut      = "loss_cut"
	ExitProfitTarget = "profit_target"
	ExitBaseline     = "baseline"
	ExitGapExcluded  = "gap_excluded"
)
