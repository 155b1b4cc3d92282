package models

import (
	"fmt"
	"time"
)

// AxisKey identifies a four-axis combination: signal type, bin, direction, stock.
type AxisKey struct {
	SignalType string    `json:"signal_type"`
	SignalBin  int       `json:"signal_bin"`
	TradeType  TradeType `json:"trade_type"`
	StockCode  string    `json:"stock_code"`
}

// String renders the decision key, e.g. "rsi_3_BUY_7203".
func (k AxisKey) String() string {
	return fmt.Sprintf("%s_%d_%s_%s", k.SignalType, k.SignalBin, k.TradeType, k.StockCode)
}

// StatsSummary aggregates a set of recomputed outcomes. Rates are percentages.
type StatsSummary struct {
	TotalSamples     int     `json:"total_samples"`
	WinRate          float64 `json:"win_rate"`
	AvgProfitRate    float64 `json:"avg_profit_rate"`
	StdDeviation     float64 `json:"std_deviation"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MedianProfitRate float64 `json:"median_profit_rate"`
	MaxProfitRate    float64 `json:"max_profit_rate"`
	MinProfitRate    float64 `json:"min_profit_rate"`
	TotalProfitRate  float64 `json:"total_profit_rate"`
}

type PatternCategory string

const (
	PatternPremium   PatternCategory = "PREMIUM"
	PatternExcellent PatternCategory = "EXCELLENT"
	PatternGood      PatternCategory = "GOOD"
	PatternNormal    PatternCategory = "NORMAL"
	PatternCaution   PatternCategory = "CAUTION"
)

// AxisSnapshot holds learning-period statistics of one axis, rebuilt by the snapshot job.
type AxisSnapshot struct {
	AxisKey
	StockName       string          `json:"stock_name"`
	Learning        StatsSummary    `json:"learning"`
	PatternCategory PatternCategory `json:"pattern_category"`
	IsExcellent     bool            `json:"is_excellent"`
	FourA           bool            `json:"four_a"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// FiredSignal is an axis that fires on a given trading date.
type FiredSignal struct {
	AxisKey
	StockName  string    `json:"stock_name"`
	SignalDate time.Time `json:"signal_date"`
}

// SignalTypeInfo is a row of the signal-type master.
type SignalTypeInfo struct {
	SignalType   string `json:"signal_type"`
	Category     string `json:"signal_category"`
	Description  string `json:"description"`
	PriorityRank int    `json:"priority_rank"`
	IsActive     bool   `json:"is_active"`
}

// Period is an inclusive date range; a zero bound is open.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && t.After(p.To) {
		return false
	}
	return true
}

// OccurrenceQuery selects warehouse occurrences. Empty fields are not filtered.
type OccurrenceQuery struct {
	SignalType string
	SignalBin  int // 0 = any
	TradeType  TradeType
	StockCode  string
	Period     Period
}

// ForAxis builds a query for a single axis within a period.
func ForAxis(k AxisKey, p Period) OccurrenceQuery {
	return OccurrenceQuery{
		SignalType: k.SignalType,
		SignalBin:  k.SignalBin,
		TradeType:  k.TradeType,
		StockCode:  k.StockCode,
		Period:     p,
	}
}

// SnapshotFilter selects axis snapshots.
type SnapshotFilter struct {
	StockCode string
	TradeType TradeType
	Axes      []AxisKey
}
