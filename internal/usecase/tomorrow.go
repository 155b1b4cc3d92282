package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/services/replay"
	"SignalAxis/pkg/cache"
)

const (
	DecisionFilterPending = "pending_only"
	DecisionFilterAll     = "all"

	FourAOnly    = "only_4a"
	FourAAll     = "all"
	FourAExclude = "exclude_4a"
)

type TomorrowSignal struct {
	models.AxisKey
	StockName          string                 `json:"stock_name"`
	TargetDate         string                 `json:"target_date"`
	TotalSamples       int                    `json:"total_samples"`
	WinRate            float64                `json:"win_rate"`
	AvgProfitRate      float64                `json:"avg_profit_rate"`
	SharpeRatio        float64                `json:"sharpe_ratio"`
	PatternCategory    models.PatternCategory `json:"pattern_category"`
	IsExcellentPattern bool                   `json:"is_excellent_pattern"`
	IsExcellent        bool                   `json:"is_excellent"`
	FourA              bool                   `json:"four_a"`
	DecisionStatus     models.DecisionStatus  `json:"decision_status"`
}

type TomorrowPage struct {
	TargetDate string           `json:"target_date"`
	Rows       []TomorrowSignal `json:"rows"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
}

// TomorrowSignals lists strong axes that fire on the next trading date.
type TomorrowSignals struct {
	calendar  domrepo.SignalCalendar
	snapshots domrepo.SnapshotStore
	decisions domrepo.DecisionStore
	cache     cache.Service
	settings  Settings
	metrics   domrepo.Metrics
}

func NewTomorrowSignals(calendar domrepo.SignalCalendar, snapshots domrepo.SnapshotStore, decisions domrepo.DecisionStore, c cache.Service, s Settings, m domrepo.Metrics) *TomorrowSignals {
	return &TomorrowSignals{calendar: calendar, snapshots: snapshots, decisions: decisions, cache: c, settings: s, metrics: m}
}

func (t *TomorrowSignals) List(ctx context.Context, req models.TomorrowRequest) (*TomorrowPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 15
	}
	if req.DecisionFilter == "" {
		req.DecisionFilter = DecisionFilterPending
	}
	if req.FourAFilter == "" {
		req.FourAFilter = FourAOnly
	}

	key := cache.GenerateKeyWithParams(tomorrowCachePrefix, cache.HashKey(fmt.Sprintf("%+v", req)))
	page, hit, err := cache.GetOrLoad(ctx, t.cache, key, t.settings.CacheTTL, func(ctx context.Context) (*TomorrowPage, error) {
		return t.load(ctx, req)
	})
	if t.cache != nil {
		t.metrics.RecordCacheLookup(tomorrowCachePrefix, hit)
	}
	return page, err
}

func (t *TomorrowSignals) load(ctx context.Context, req models.TomorrowRequest) (*TomorrowPage, error) {
	date, err := t.calendar.NextTradingDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("next trading date: %w", err)
	}
	target := date.Format("2006-01-02")
	page := &TomorrowPage{TargetDate: target, Rows: []TomorrowSignal{}, Page: req.Page, PerPage: req.PerPage}

	fired, err := t.calendar.FiredSignals(ctx, date, req.StockCode)
	if err != nil {
		return nil, fmt.Errorf("fired signals: %w", err)
	}
	if len(fired) == 0 {
		return page, nil
	}
	axes := firedAxes(fired)

	snaps, err := t.snapshots.ListSnapshots(ctx, models.SnapshotFilter{StockCode: req.StockCode, Axes: axes})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	minWin := math.Max(t.settings.TomorrowMinWinRate, req.MinWinRate)
	var rows []TomorrowSignal
	for _, s := range snaps {
		l := s.Learning
		if l.TotalSamples < t.settings.TomorrowMinSamples || l.WinRate < minWin || l.AvgProfitRate < t.settings.TomorrowMinAvg {
			continue
		}
		if !fourAMatches(req.FourAFilter, s.FourA) {
			continue
		}
		category := s.PatternCategory
		if category == "" {
			category = replay.Classify(l.WinRate, l.AvgProfitRate)
		}
		rows = append(rows, TomorrowSignal{
			AxisKey:            s.AxisKey,
			StockName:          s.StockName,
			TargetDate:         target,
			TotalSamples:       l.TotalSamples,
			WinRate:            l.WinRate,
			AvgProfitRate:      l.AvgProfitRate,
			SharpeRatio:        l.SharpeRatio,
			PatternCategory:    category,
			IsExcellentPattern: category == models.PatternPremium || category == models.PatternExcellent,
			IsExcellent:        replay.IsExcellent(l, t.settings.TomorrowMinSamples),
			FourA:              s.FourA,
			DecisionStatus:     models.DecisionPending,
		})
	}

	if len(rows) > 0 {
		keys := make([]string, len(rows))
		for i, r := range rows {
			keys[i] = r.AxisKey.String()
		}
		statuses, err := t.decisions.Statuses(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("decision statuses: %w", err)
		}
		kept := rows[:0]
		for _, r := range rows {
			if st, ok := statuses[r.AxisKey.String()]; ok {
				r.DecisionStatus = st
			}
			if req.DecisionFilter == DecisionFilterPending && r.DecisionStatus != models.DecisionPending {
				continue
			}
			kept = append(kept, r)
		}
		rows = kept
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AvgProfitRate != rows[j].AvgProfitRate {
			return rows[i].AvgProfitRate > rows[j].AvgProfitRate
		}
		if rows[i].WinRate != rows[j].WinRate {
			return rows[i].WinRate > rows[j].WinRate
		}
		return rows[i].AxisKey.String() < rows[j].AxisKey.String()
	})

	page.Total = len(rows)
	start := (req.Page - 1) * req.PerPage
	if start < len(rows) {
		end := start + req.PerPage
		if end > len(rows) {
			end = len(rows)
		}
		page.Rows = append(page.Rows, rows[start:end]...)
	}
	return page, nil
}

// firedAxes expands fired signals without a direction into both BUY and SELL axes.
func firedAxes(fired []models.FiredSignal) []models.AxisKey {
	seen := make(map[models.AxisKey]bool, len(fired)*2)
	out := make([]models.AxisKey, 0, len(fired)*2)
	add := func(k models.AxisKey) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, f := range fired {
		if f.TradeType != "" {
			add(f.AxisKey)
			continue
		}
		for _, tt := range []models.TradeType{models.TradeTypeBuy, models.TradeTypeSell} {
			k := f.AxisKey
			k.TradeType = tt
			add(k)
		}
	}
	return out
}

func fourAMatches(filter string, fourA bool) bool {
	switch filter {
	case FourAAll:
		return true
	case FourAExclude:
		return !fourA
	default:
		return fourA
	}
}
