package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	pkgch "SignalAxis/pkg/clickhouse"
	applogger "SignalAxis/pkg/logger"
	"SignalAxis/pkg/resilience"
)

// Tables names the warehouse tables.
type Tables struct {
	Occurrences  string
	Snapshots    string
	FiredSignals string
	Calendar     string
	Quotes       string
	SignalTypes  string
}

// CHWarehouse implements domrepo.Warehouse backed by ClickHouse.
type CHWarehouse struct {
	client  *pkgch.Client
	db      *sql.DB
	tables  Tables
	guard   *resilience.Guard
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewCHWarehouse(client *pkgch.Client, tables Tables, guard *resilience.Guard, m domrepo.Metrics, l *applogger.Logger) *CHWarehouse {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHWarehouse{
		client:  client,
		db:      client.DB(),
		tables:  tables,
		guard:   guard,
		metrics: m,
		l:       l.With(applogger.String("component", "clickhouse_warehouse")),
	}
}

// SnapshotSchema returns the DDL of the table this service writes.
func SnapshotSchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            signal_type        LowCardinality(String),
            signal_bin         Int32,
            trade_type         LowCardinality(String),
            stock_code         String,
            stock_name         String,
            total_samples      UInt32,
            win_rate           Float64,
            avg_profit_rate    Float64,
            std_deviation      Float64,
            sharpe_ratio       Float64,
            median_profit_rate Float64,
            max_profit_rate    Float64,
            min_profit_rate    Float64,
            total_profit_rate  Float64,
            pattern_category   LowCardinality(String),
            is_excellent       Bool,
            four_a             Bool,
            updated_at         DateTime
        ) ENGINE = ReplacingMergeTree(updated_at)
        ORDER BY (stock_code, trade_type, signal_type, signal_bin)
    `, table)}
}

// InitSchema creates the snapshot table when missing.
func (w *CHWarehouse) InitSchema(ctx context.Context) error {
	return w.client.InitSchema(ctx, SnapshotSchema(w.tables.Snapshots))
}

// run executes fn under the retry guard and records its latency.
func (w *CHWarehouse) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	var err error
	if w.guard != nil {
		err = w.guard.Do(ctx, op, fn)
	} else {
		err = fn(ctx)
	}
	if w.metrics != nil {
		w.metrics.RecordQuery(op, time.Since(start).Seconds(), err)
	}
	if err != nil && !errors.Is(err, domrepo.ErrNotFound) {
		w.l.Error("clickhouse query failed", applogger.String("op", op), applogger.Error(err))
	}
	return err
}

func (w *CHWarehouse) ListOccurrences(ctx context.Context, q models.OccurrenceQuery) ([]models.OccurrenceRow, error) {
	const qtpl = `
        SELECT signal_type, signal_bin, trade_type, stock_code, stock_name, signal_date,
               day_open, day_high, day_low, day_close, prev_close,
               prev_close_to_open_gap, baseline_profit_rate, trading_volume
        FROM %s
        %s
        ORDER BY signal_date ASC
    `
	where := occurrenceWhere(q)
	query := fmt.Sprintf(qtpl, w.tables.Occurrences, where)

	var out []models.OccurrenceRow
	err := w.run(ctx, "list_occurrences", func(ctx context.Context) error {
		out = out[:0]
		rows, err := w.db.QueryContext(ctx, query, where.args...)
		if err != nil {
			return fmt.Errorf("query occurrences: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r models.OccurrenceRow
			if err := rows.Scan(
				&r.SignalType, &r.SignalBin, &r.TradeType, &r.StockCode, &r.StockName, &r.SignalDate,
				&r.DayOpen, &r.DayHigh, &r.DayLow, &r.DayClose, &r.PrevClose,
				&r.PrevCloseToOpenGap, &r.BaselineProfitRate, &r.TradingVolume,
			); err != nil {
				return fmt.Errorf("scan occurrence: %w", err)
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w *CHWarehouse) NextTradingDate(ctx context.Context) (time.Time, error) {
	const qtpl = `
        SELECT min(c.date)
        FROM %s AS c
        WHERE c.date > (SELECT max(date) FROM %s)
    `
	query := fmt.Sprintf(qtpl, w.tables.Calendar, w.tables.Quotes)

	var next time.Time
	err := w.run(ctx, "next_trading_date", func(ctx context.Context) error {
		if err := w.db.QueryRowContext(ctx, query).Scan(&next); err != nil {
			return fmt.Errorf("query next trading date: %w", err)
		}
		// min() over an empty set yields the epoch
		if next.Year() <= 1970 {
			return domrepo.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return next, nil
}

// FiredSignals lists (signal type, bin, stock) firing on date. Direction is not part of
// the firing table, so TradeType is left empty and the signal applies to both.
func (w *CHWarehouse) FiredSignals(ctx context.Context, date time.Time, stockCode string) ([]models.FiredSignal, error) {
	const qtpl = `
        SELECT signal_type, signal_bin, stock_code, any(stock_name)
        FROM %s
        %s
        GROUP BY signal_type, signal_bin, stock_code
        ORDER BY stock_code, signal_type, signal_bin
    `
	where := &whereClause{}
	where.add("signal_date = ?", date)
	where.add("signal_bin IS NOT NULL")
	if stockCode != "" {
		where.add("stock_code = ?", stockCode)
	}
	query := fmt.Sprintf(qtpl, w.tables.FiredSignals, where)

	var out []models.FiredSignal
	err := w.run(ctx, "fired_signals", func(ctx context.Context) error {
		out = out[:0]
		rows, err := w.db.QueryContext(ctx, query, where.args...)
		if err != nil {
			return fmt.Errorf("query fired signals: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			f := models.FiredSignal{SignalDate: date}
			if err := rows.Scan(&f.SignalType, &f.SignalBin, &f.StockCode, &f.StockName); err != nil {
				return fmt.Errorf("scan fired signal: %w", err)
			}
			out = append(out, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w *CHWarehouse) ListSnapshots(ctx context.Context, f models.SnapshotFilter) ([]models.AxisSnapshot, error) {
	const qtpl = `
        SELECT signal_type, signal_bin, trade_type, stock_code, stock_name,
               total_samples, win_rate, avg_profit_rate, std_deviation, sharpe_ratio,
               median_profit_rate, max_profit_rate, min_profit_rate, total_profit_rate,
               pattern_category, is_excellent, four_a, updated_at
        FROM %s FINAL
        %s
        ORDER BY stock_code, trade_type, signal_type, signal_bin
    `
	where := snapshotWhere(f)
	query := fmt.Sprintf(qtpl, w.tables.Snapshots, where)

	var out []models.AxisSnapshot
	err := w.run(ctx, "list_snapshots", func(ctx context.Context) error {
		out = out[:0]
		rows, err := w.db.QueryContext(ctx, query, where.args...)
		if err != nil {
			return fmt.Errorf("query snapshots: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s models.AxisSnapshot
			var tradeType, category string
			var samples uint32
			if err := rows.Scan(
				&s.SignalType, &s.SignalBin, &tradeType, &s.StockCode, &s.StockName,
				&samples, &s.Learning.WinRate, &s.Learning.AvgProfitRate, &s.Learning.StdDeviation, &s.Learning.SharpeRatio,
				&s.Learning.MedianProfitRate, &s.Learning.MaxProfitRate, &s.Learning.MinProfitRate, &s.Learning.TotalProfitRate,
				&category, &s.IsExcellent, &s.FourA, &s.UpdatedAt,
			); err != nil {
				return fmt.Errorf("scan snapshot: %w", err)
			}
			s.TradeType = models.TradeType(tradeType)
			s.PatternCategory = models.PatternCategory(category)
			s.Learning.TotalSamples = int(samples)
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w *CHWarehouse) SaveSnapshots(ctx context.Context, snaps []models.AxisSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (
            signal_type, signal_bin, trade_type, stock_code, stock_name,
            total_samples, win_rate, avg_profit_rate, std_deviation, sharpe_ratio,
            median_profit_rate, max_profit_rate, min_profit_rate, total_profit_rate,
            pattern_category, is_excellent, four_a, updated_at)`, w.tables.Snapshots)

	rows := make([][]any, len(snaps))
	for i, s := range snaps {
		rows[i] = []any{
			s.SignalType, int32(s.SignalBin), string(s.TradeType), s.StockCode, s.StockName,
			uint32(s.Learning.TotalSamples), s.Learning.WinRate, s.Learning.AvgProfitRate, s.Learning.StdDeviation, s.Learning.SharpeRatio,
			s.Learning.MedianProfitRate, s.Learning.MaxProfitRate, s.Learning.MinProfitRate, s.Learning.TotalProfitRate,
			string(s.PatternCategory), s.IsExcellent, s.FourA, s.UpdatedAt,
		}
	}

	return w.run(ctx, "save_snapshots", func(ctx context.Context) error {
		return w.client.InsertBatch(ctx, query, rows)
	})
}

func (w *CHWarehouse) ListAxes(ctx context.Context, p models.Period) ([]models.AxisKey, error) {
	const qtpl = `
        SELECT DISTINCT signal_type, signal_bin, trade_type, stock_code
        FROM %s
        %s
        ORDER BY stock_code, trade_type, signal_type, signal_bin
    `
	where := &whereClause{}
	addPeriod(where, p)
	query := fmt.Sprintf(qtpl, w.tables.Occurrences, where)

	var out []models.AxisKey
	err := w.run(ctx, "list_axes", func(ctx context.Context) error {
		out = out[:0]
		rows, err := w.db.QueryContext(ctx, query, where.args...)
		if err != nil {
			return fmt.Errorf("query axes: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var k models.AxisKey
			var tradeType string
			if err := rows.Scan(&k.SignalType, &k.SignalBin, &tradeType, &k.StockCode); err != nil {
				return fmt.Errorf("scan axis: %w", err)
			}
			k.TradeType = models.TradeType(tradeType)
			out = append(out, k)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w *CHWarehouse) ListSignalTypes(ctx context.Context) ([]models.SignalTypeInfo, error) {
	query := fmt.Sprintf(`
        SELECT signal_type, signal_category, description, priority_rank, is_active
        FROM %s
        ORDER BY priority_rank, signal_type
    `, w.tables.SignalTypes)

	var out []models.SignalTypeInfo
	err := w.run(ctx, "list_signal_types", func(ctx context.Context) error {
		out = out[:0]
		rows, err := w.db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("query signal types: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s models.SignalTypeInfo
			if err := rows.Scan(&s.SignalType, &s.Category, &s.Description, &s.PriorityRank, &s.IsActive); err != nil {
				return fmt.Errorf("scan signal type: %w", err)
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w *CHWarehouse) Health(ctx context.Context) error {
	return w.client.Health(ctx)
}

func (w *CHWarehouse) Close() error {
	return w.client.Close()
}

var _ domrepo.Warehouse = (*CHWarehouse)(nil)
