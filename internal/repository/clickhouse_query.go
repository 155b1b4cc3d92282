package repository

import (
	"strings"

	"SignalAxis/internal/domain/models"
)

// whereClause accumulates AND-ed predicates with positional args.
type whereClause struct {
	preds []string
	args  []any
}

func (w *whereClause) add(pred string, args ...any) {
	w.preds = append(w.preds, pred)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.preds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.preds, " AND ")
}

func occurrenceWhere(q models.OccurrenceQuery) *whereClause {
	w := &whereClause{}
	if q.SignalType != "" {
		w.add("signal_type = ?", q.SignalType)
	}
	if q.SignalBin > 0 {
		w.add("signal_bin = ?", q.SignalBin)
	}
	if q.TradeType != "" {
		w.add("trade_type = ?", string(q.TradeType))
	}
	if q.StockCode != "" {
		w.add("stock_code = ?", q.StockCode)
	}
	addPeriod(w, q.Period)
	return w
}

func addPeriod(w *whereClause, p models.Period) {
	if !p.From.IsZero() {
		w.add("signal_date >= ?", p.From)
	}
	if !p.To.IsZero() {
		w.add("signal_date <= ?", p.To)
	}
}

func snapshotWhere(f models.SnapshotFilter) *whereClause {
	w := &whereClause{}
	if f.StockCode != "" {
		w.add("stock_code = ?", f.StockCode)
	}
	if f.TradeType != "" {
		w.add("trade_type = ?", string(f.TradeType))
	}
	if len(f.Axes) > 0 {
		tuples := make([]string, len(f.Axes))
		args := make([]any, 0, len(f.Axes)*4)
		for i, k := range f.Axes {
			tuples[i] = "(?, ?, ?, ?)"
			args = append(args, k.SignalType, k.SignalBin, string(k.TradeType), k.StockCode)
		}
		w.add("(signal_type, signal_bin, trade_type, stock_code) IN ("+strings.Join(tuples, ", ")+")", args...)
	}
	return w
}
