package usecase

import (
	"context"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/services/replay"
)

// TuningResult is the learning-period evaluation of a candidate exit rule.
type TuningResult struct {
	models.AxisKey
	StockName string              `json:"stock_name"`
	Config    models.ExitConfig   `json:"config"`
	HasFilter bool                `json:"has_filter"`
	Baseline  models.StatsSummary `json:"baseline_stats"`
	Filtered  models.StatsSummary `json:"filtered_stats"`
	Details   []replay.DetailRow  `json:"details"`
}

// Tuning replays a candidate exit rule over the learning period of one axis.
type Tuning struct {
	store    domrepo.OccurrenceStore
	settings Settings
	metrics  domrepo.Metrics
}

func NewTuning(store domrepo.OccurrenceStore, s Settings, m domrepo.Metrics) *Tuning {
	return &Tuning{store: store, settings: s, metrics: m}
}

func (t *Tuning) Evaluate(ctx context.Context, axis models.AxisKey, cfg models.ExitConfig) (*TuningResult, error) {
	cfg.TradeType = axis.TradeType
	if err := replay.ValidateExitConfig(withGapDefault(cfg)); err != nil {
		return nil, err
	}

	occs, name, err := axisOccurrences(ctx, t.store, axis, t.settings.Learning)
	if err != nil {
		return nil, err
	}
	if len(occs) == 0 {
		return nil, ErrNoLearningStats
	}

	ev, err := replay.Evaluate(occs, cfg)
	if err != nil {
		return nil, err
	}
	recordEvaluation(t.metrics, "tuning", ev.Outcomes)

	return &TuningResult{
		AxisKey:   axis,
		StockName: name,
		Config:    ev.Config,
		HasFilter: ev.HasFilter,
		Baseline:  ev.Baseline,
		Filtered:  ev.Filtered,
		Details:   newestFirst(ev.Details),
	}, nil
}

func withGapDefault(cfg models.ExitConfig) models.ExitConfig {
	if cfg.GapCondition == "" {
		cfg.GapCondition = models.GapAll
	}
	return cfg
}
