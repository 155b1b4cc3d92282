package usecase

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"SignalAxis/internal/domain/models"
	"SignalAxis/internal/repository/memory"
	"SignalAxis/pkg/metrics"
)

var (
	rsiBuy  = models.AxisKey{SignalType: "rsi", SignalBin: 3, TradeType: models.TradeTypeBuy, StockCode: "7203"}
	rsiSell = models.AxisKey{SignalType: "rsi", SignalBin: 3, TradeType: models.TradeTypeSell, StockCode: "7203"}
	macdBuy = models.AxisKey{SignalType: "macd", SignalBin: 1, TradeType: models.TradeTypeBuy, StockCode: "6758"}
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func valid(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }

// occRow builds a session that opens at 1000 and trades between 950 and 1050.
func occRow(axis models.AxisKey, date time.Time, rate float64) models.OccurrenceRow {
	return models.OccurrenceRow{
		SignalType:         axis.SignalType,
		SignalBin:          axis.SignalBin,
		TradeType:          string(axis.TradeType),
		StockCode:          axis.StockCode,
		StockName:          "Stock " + axis.StockCode,
		SignalDate:         date,
		DayOpen:            valid(1000),
		DayHigh:            valid(1050),
		DayLow:             valid(950),
		DayClose:           valid(1000 + rate*10),
		PrevClose:          valid(995),
		PrevCloseToOpenGap: valid(5),
		BaselineProfitRate: valid(rate),
		TradingVolume:      sql.NullInt64{Int64: 1000, Valid: true},
	}
}

// seed adds one row per rate on consecutive days from start.
func seed(w *memory.Warehouse, axis models.AxisKey, start string, rates ...float64) {
	d := day(start)
	for i, r := range rates {
		w.AddRows(occRow(axis, d.AddDate(0, 0, i), r))
	}
}

func repeat(rate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rate
	}
	return out
}

type capturePublisher struct {
	mu     sync.Mutex
	events []models.DecisionEvent
	err    error
}

func (p *capturePublisher) PublishDecision(_ context.Context, ev models.DecisionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

var noMetrics = metrics.Noop{}
