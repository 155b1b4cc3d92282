package usecase

import (
	"context"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/services/replay"
)

// PeriodStats is the baseline and filtered summary of one period.
type PeriodStats struct {
	Baseline models.StatsSummary `json:"baseline_stats"`
	Filtered models.StatsSummary `json:"filtered_stats"`
}

// VerificationResult compares a rule on the learning and verification periods.
type VerificationResult struct {
	models.AxisKey
	StockName    string             `json:"stock_name"`
	Config       models.ExitConfig  `json:"config"`
	HasFilter    bool               `json:"has_filter"`
	Learning     PeriodStats        `json:"learning"`
	Verification PeriodStats        `json:"verification"`
	Details      []replay.DetailRow `json:"verification_details"`
}

// Verification checks whether a rule tuned on the learning period holds out of sample.
type Verification struct {
	store    domrepo.OccurrenceStore
	settings Settings
	metrics  domrepo.Metrics
}

func NewVerification(store domrepo.OccurrenceStore, s Settings, m domrepo.Metrics) *Verification {
	return &Verification{store: store, settings: s, metrics: m}
}

func (v *Verification) Verify(ctx context.Context, axis models.AxisKey, cfg models.ExitConfig) (*VerificationResult, error) {
	cfg.TradeType = axis.TradeType
	if err := replay.ValidateExitConfig(withGapDefault(cfg)); err != nil {
		return nil, err
	}

	learning, name, err := axisOccurrences(ctx, v.store, axis, v.settings.Learning)
	if err != nil {
		return nil, err
	}
	if len(learning) == 0 {
		return nil, ErrNoLearningStats
	}
	recent, recentName, err := axisOccurrences(ctx, v.store, axis, v.settings.Verification)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, ErrNoVerificationData
	}
	if name == "" {
		name = recentName
	}

	lev, err := replay.Evaluate(learning, cfg)
	if err != nil {
		return nil, err
	}
	vev, err := replay.Evaluate(recent, cfg)
	if err != nil {
		return nil, err
	}
	recordEvaluation(v.metrics, "verification", vev.Outcomes)

	return &VerificationResult{
		AxisKey:      axis,
		StockName:    name,
		Config:       vev.Config,
		HasFilter:    vev.HasFilter,
		Learning:     PeriodStats{Baseline: lev.Baseline, Filtered: lev.Filtered},
		Verification: PeriodStats{Baseline: vev.Baseline, Filtered: vev.Filtered},
		Details:      newestFirst(vev.Details),
	}, nil
}
