package usecase

import (
	"context"
	"errors"
	"fmt"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/services/replay"
	"SignalAxis/pkg/cache"
)

type AxisDetail struct {
	models.AxisKey
	StockName       string                 `json:"stock_name"`
	Learning        models.StatsSummary    `json:"learning_stats"`
	Recent          models.StatsSummary    `json:"recent_stats"`
	PatternCategory models.PatternCategory `json:"pattern_category"`
	IsExcellent     bool                   `json:"is_excellent"`
	DecisionStatus  models.DecisionStatus  `json:"decision_status"`
	Decision        *models.Decision       `json:"decision,omitempty"`
}

// AxisDetails summarizes one axis over both periods with its decision state.
type AxisDetails struct {
	store     domrepo.OccurrenceStore
	decisions domrepo.DecisionStore
	cache     cache.Service
	settings  Settings
	metrics   domrepo.Metrics
}

func NewAxisDetails(store domrepo.OccurrenceStore, decisions domrepo.DecisionStore, c cache.Service, s Settings, m domrepo.Metrics) *AxisDetails {
	return &AxisDetails{store: store, decisions: decisions, cache: c, settings: s, metrics: m}
}

func (a *AxisDetails) Get(ctx context.Context, axis models.AxisKey) (*AxisDetail, error) {
	key := cache.GenerateKeyWithParams(axisCachePrefix, axis.String())
	detail, hit, err := cache.GetOrLoad(ctx, a.cache, key, a.settings.CacheTTL, func(ctx context.Context) (*AxisDetail, error) {
		return a.load(ctx, axis)
	})
	if a.cache != nil {
		a.metrics.RecordCacheLookup(axisCachePrefix, hit)
	}
	return detail, err
}

func (a *AxisDetails) load(ctx context.Context, axis models.AxisKey) (*AxisDetail, error) {
	learning, name, err := axisOccurrences(ctx, a.store, axis, a.settings.Learning)
	if err != nil {
		return nil, err
	}
	recent, recentName, err := axisOccurrences(ctx, a.store, axis, a.settings.Verification)
	if err != nil {
		return nil, err
	}
	if len(learning) == 0 && len(recent) == 0 {
		return nil, domrepo.ErrNotFound
	}
	if name == "" {
		name = recentName
	}

	ls, outcomes := replay.Baseline(learning, axis.TradeType)
	recordEvaluation(a.metrics, "axis", outcomes)
	rs, _ := replay.Baseline(recent, axis.TradeType)

	d := &AxisDetail{
		AxisKey:         axis,
		StockName:       name,
		Learning:        ls,
		Recent:          rs,
		PatternCategory: replay.Classify(ls.WinRate, ls.AvgProfitRate),
		IsExcellent:     replay.IsExcellent(ls, a.settings.AxisMinSamples),
		DecisionStatus:  models.DecisionPending,
	}

	dec, err := a.decisions.Get(ctx, axis.String())
	switch {
	case err == nil:
		d.Decision = dec
		d.DecisionStatus = dec.Status
	case !errors.Is(err, domrepo.ErrNotFound):
		return nil, fmt.Errorf("get decision %s: %w", axis, err)
	}
	return d, nil
}
