// Package memory provides in-process stores for tests, the CLI and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/pkg/util"
)

// Warehouse implements domrepo.Warehouse over fixture data.
type Warehouse struct {
	mu          sync.RWMutex
	rows        []models.OccurrenceRow
	fired       []models.FiredSignal
	nextDate    time.Time
	signalTypes []models.SignalTypeInfo
	snapshots   map[models.AxisKey]models.AxisSnapshot
}

func NewWarehouse() *Warehouse {
	return &Warehouse{snapshots: make(map[models.AxisKey]models.AxisSnapshot)}
}

// NewWarehouseFromFixture builds a warehouse from a loaded fixture.
func NewWarehouseFromFixture(f *Fixture) (*Warehouse, error) {
	w := NewWarehouse()
	rows, err := fixtureRows(f.Occurrences)
	if err != nil {
		return nil, err
	}
	w.rows = rows
	for _, ff := range f.FiredSignals {
		fs, err := parseFired(ff)
		if err != nil {
			return nil, err
		}
		w.fired = append(w.fired, fs)
	}
	if f.NextTradingDate != "" {
		d, ok := util.ParseDate(f.NextTradingDate)
		if !ok {
			return nil, fmt.Errorf("invalid next_trading_date %q", f.NextTradingDate)
		}
		w.nextDate = d
	}
	w.signalTypes = append(w.signalTypes, f.SignalTypes...)
	for _, s := range f.Snapshots {
		w.snapshots[s.AxisKey] = s
	}
	return w, nil
}

// AddRows appends occurrence rows.
func (w *Warehouse) AddRows(rows ...models.OccurrenceRow) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, rows...)
}

// AddFired registers signals firing on their SignalDate.
func (w *Warehouse) AddFired(fs ...models.FiredSignal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fired = append(w.fired, fs...)
}

func (w *Warehouse) SetNextTradingDate(d time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextDate = util.DateOnly(d)
}

func (w *Warehouse) SetSignalTypes(types ...models.SignalTypeInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signalTypes = append([]models.SignalTypeInfo(nil), types...)
}

func matches(q models.OccurrenceQuery, r models.OccurrenceRow) bool {
	if q.SignalType != "" && r.SignalType != q.SignalType {
		return false
	}
	if q.SignalBin > 0 && r.SignalBin != q.SignalBin {
		return false
	}
	if q.TradeType != "" && models.TradeType(r.TradeType) != q.TradeType {
		return false
	}
	if q.StockCode != "" && r.StockCode != q.StockCode {
		return false
	}
	return q.Period.Contains(r.SignalDate)
}

func (w *Warehouse) ListOccurrences(_ context.Context, q models.OccurrenceQuery) ([]models.OccurrenceRow, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []models.OccurrenceRow
	for _, r := range w.rows {
		if matches(q, r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SignalDate.Before(out[j].SignalDate) })
	return out, nil
}

func (w *Warehouse) NextTradingDate(context.Context) (time.Time, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.nextDate.IsZero() {
		return time.Time{}, domrepo.ErrNotFound
	}
	return w.nextDate, nil
}

func (w *Warehouse) FiredSignals(_ context.Context, date time.Time, stockCode string) ([]models.FiredSignal, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []models.FiredSignal
	for _, f := range w.fired {
		if !sameDay(f.SignalDate, date) {
			continue
		}
		if stockCode != "" && f.StockCode != stockCode {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (w *Warehouse) ListSnapshots(_ context.Context, f models.SnapshotFilter) ([]models.AxisSnapshot, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	wanted := make(map[models.AxisKey]bool, len(f.Axes))
	for _, k := range f.Axes {
		wanted[k] = true
	}

	var out []models.AxisSnapshot
	for k, s := range w.snapshots {
		if f.StockCode != "" && k.StockCode != f.StockCode {
			continue
		}
		if f.TradeType != "" && k.TradeType != f.TradeType {
			continue
		}
		if len(wanted) > 0 && !wanted[k] {
			continue
		}
		out = append(out, s)
	}
	sortSnapshots(out)
	return out, nil
}

func sortSnapshots(s []models.AxisSnapshot) {
	sort.Slice(s, func(i, j int) bool { return axisLess(s[i].AxisKey, s[j].AxisKey) })
}

func axisLess(a, b models.AxisKey) bool {
	if a.StockCode != b.StockCode {
		return a.StockCode < b.StockCode
	}
	if a.TradeType != b.TradeType {
		return a.TradeType < b.TradeType
	}
	if a.SignalType != b.SignalType {
		return a.SignalType < b.SignalType
	}
	return a.SignalBin < b.SignalBin
}

func (w *Warehouse) SaveSnapshots(_ context.Context, snaps []models.AxisSnapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range snaps {
		w.snapshots[s.AxisKey] = s
	}
	return nil
}

func (w *Warehouse) ListAxes(_ context.Context, p models.Period) ([]models.AxisKey, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	seen := make(map[models.AxisKey]bool)
	var out []models.AxisKey
	for _, r := range w.rows {
		if !p.Contains(r.SignalDate) {
			continue
		}
		k := r.Axis()
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return axisLess(out[i], out[j]) })
	return out, nil
}

func (w *Warehouse) ListSignalTypes(context.Context) ([]models.SignalTypeInfo, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]models.SignalTypeInfo(nil), w.signalTypes...), nil
}

func (w *Warehouse) Health(context.Context) error { return nil }
func (w *Warehouse) Close() error                 { return nil }

var _ domrepo.Warehouse = (*Warehouse)(nil)
