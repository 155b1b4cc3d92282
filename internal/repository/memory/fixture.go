package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"SignalAxis/internal/domain/models"
	"SignalAxis/pkg/util"
)

// OccurrenceFixture is one occurrence in a JSON fixture. Missing prices stay null.
type OccurrenceFixture struct {
	SignalType         string   `json:"signal_type"`
	SignalBin          int      `json:"signal_bin"`
	TradeType          string   `json:"trade_type"`
	StockCode          string   `json:"stock_code"`
	StockName          string   `json:"stock_name"`
	SignalDate         string   `json:"signal_date"`
	DayOpen            *float64 `json:"day_open"`
	DayHigh            *float64 `json:"day_high"`
	DayLow             *float64 `json:"day_low"`
	DayClose           *float64 `json:"day_close"`
	PrevClose          *float64 `json:"prev_close"`
	PrevCloseToOpenGap *float64 `json:"prev_close_to_open_gap"`
	BaselineProfitRate *float64 `json:"baseline_profit_rate"`
	TradingVolume      *int64   `json:"trading_volume"`
}

// Row converts the fixture to the warehouse row shape.
func (f OccurrenceFixture) Row() (models.OccurrenceRow, error) {
	date, ok := util.ParseDate(f.SignalDate)
	if !ok {
		return models.OccurrenceRow{}, fmt.Errorf("invalid signal_date %q", f.SignalDate)
	}
	row := models.OccurrenceRow{
		SignalType:         f.SignalType,
		SignalBin:          f.SignalBin,
		TradeType:          f.TradeType,
		StockCode:          f.StockCode,
		StockName:          f.StockName,
		SignalDate:         date,
		DayOpen:            nullFloat(f.DayOpen),
		DayHigh:            nullFloat(f.DayHigh),
		DayLow:             nullFloat(f.DayLow),
		DayClose:           nullFloat(f.DayClose),
		PrevClose:          nullFloat(f.PrevClose),
		PrevCloseToOpenGap: nullFloat(f.PrevCloseToOpenGap),
		BaselineProfitRate: nullFloat(f.BaselineProfitRate),
	}
	if f.TradingVolume != nil {
		row.TradingVolume = sql.NullInt64{Int64: *f.TradingVolume, Valid: true}
	}
	return row, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// FiredFixture is a signal firing on a date.
type FiredFixture struct {
	SignalType string `json:"signal_type"`
	SignalBin  int    `json:"signal_bin"`
	StockCode  string `json:"stock_code"`
	StockName  string `json:"stock_name"`
	SignalDate string `json:"signal_date"`
}

// Fixture is the on-disk shape of a memory warehouse.
type Fixture struct {
	NextTradingDate string                  `json:"next_trading_date"`
	Occurrences     []OccurrenceFixture     `json:"occurrences"`
	FiredSignals    []FiredFixture          `json:"fired_signals"`
	SignalTypes     []models.SignalTypeInfo `json:"signal_types"`
	Snapshots       []models.AxisSnapshot   `json:"snapshots"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// LoadOccurrenceRows reads a fixture file and returns its occurrences as rows.
// A bare JSON array of occurrences is accepted as well.
func LoadOccurrenceRows(path string) ([]models.OccurrenceRow, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read occurrences: %w", err)
	}
	var occs []OccurrenceFixture
	if err := json.Unmarshal(b, &occs); err != nil {
		var f Fixture
		if ferr := json.Unmarshal(b, &f); ferr != nil {
			return nil, fmt.Errorf("parse occurrences: %w", err)
		}
		occs = f.Occurrences
	}
	return fixtureRows(occs)
}

func fixtureRows(occs []OccurrenceFixture) ([]models.OccurrenceRow, error) {
	rows := make([]models.OccurrenceRow, 0, len(occs))
	for i, o := range occs {
		r, err := o.Row()
		if err != nil {
			return nil, fmt.Errorf("occurrence %d: %w", i, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func parseFired(f FiredFixture) (models.FiredSignal, error) {
	date, ok := util.ParseDate(f.SignalDate)
	if !ok {
		return models.FiredSignal{}, fmt.Errorf("invalid fired signal_date %q", f.SignalDate)
	}
	return models.FiredSignal{
		AxisKey:    models.AxisKey{SignalType: f.SignalType, SignalBin: f.SignalBin, StockCode: f.StockCode},
		StockName:  f.StockName,
		SignalDate: date,
	}, nil
}

func sameDay(a, b time.Time) bool {
	return util.DateOnly(a).Equal(util.DateOnly(b))
}
