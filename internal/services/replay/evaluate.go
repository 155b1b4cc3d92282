package replay

import (
	"time"

	"SignalAxis/internal/domain/models"
)

// DetailRow is one occurrence with its baseline and recomputed returns, for table display.
type DetailRow struct {
	SignalDate         time.Time `json:"signal_date"`
	DayOpen            float64   `json:"day_open"`
	DayHigh            float64   `json:"day_high"`
	DayLow             float64   `json:"day_low"`
	DayClose           float64   `json:"day_close"`
	PrevCloseToOpenGap float64   `json:"prev_close_to_open_gap"`
	OpenToHighPct      float64   `json:"open_to_high_gap"`
	OpenToLowPct       float64   `json:"open_to_low_gap"`
	OpenToClosePct     float64   `json:"open_to_close_gap"`
	BaselineProfitRate float64   `json:"baseline_profit_rate"`
	FilteredProfitRate float64   `json:"filtered_profit_rate"`
	Included           bool      `json:"included"`
	Exit               string    `json:"exit"`
	TradingVolume      int64     `json:"trading_volume"`
}

// Evaluation pairs the baseline and filtered summaries of one occurrence set.
type Evaluation struct {
	Config    models.ExitConfig          `json:"config"`
	HasFilter bool                       `json:"has_filter"`
	Baseline  models.StatsSummary        `json:"baseline_stats"`
	Filtered  models.StatsSummary        `json:"filtered_stats"`
	Details   []DetailRow                `json:"details"`
	Outcomes  []models.RecomputedOutcome `json:"-"`
}

// Evaluate validates cfg and occurrences, then computes the baseline pass (gap only,
// zeros kept) and the filtered pass (full config, zeros dropped). Without an override
// the filtered summary equals the baseline.
func Evaluate(occurrences []models.SignalOccurrence, cfg models.ExitConfig) (Evaluation, error) {
	if cfg.GapCondition == "" {
		cfg.GapCondition = models.GapAll
	}
	if err := ValidateExitConfig(cfg); err != nil {
		return Evaluation{}, err
	}
	for _, o := range occurrences {
		if err := ValidateOccurrence(o); err != nil {
			return Evaluation{}, err
		}
	}

	baseOutcomes := SimulateAll(occurrences, GapOnly(cfg))
	ev := Evaluation{
		Config:    cfg,
		HasFilter: HasOverride(cfg),
		Baseline:  Aggregate(baseOutcomes, false),
	}
	outcomes := baseOutcomes
	if ev.HasFilter {
		outcomes = SimulateAll(occurrences, cfg)
		ev.Filtered = Aggregate(outcomes, true)
	} else {
		ev.Filtered = ev.Baseline
	}
	ev.Outcomes = outcomes

	ev.Details = make([]DetailRow, len(occurrences))
	for i, o := range occurrences {
		ev.Details[i] = detailRow(o, outcomes[i])
	}
	return ev, nil
}

// Baseline aggregates validated occurrences with no override. It is the learning
// statistic used by snapshots and listings.
func Baseline(occurrences []models.SignalOccurrence, tt models.TradeType) (models.StatsSummary, []models.RecomputedOutcome) {
	outcomes := SimulateAll(occurrences, models.ExitConfig{TradeType: tt, GapCondition: models.GapAll})
	return Aggregate(outcomes, false), outcomes
}

func detailRow(o models.SignalOccurrence, out models.RecomputedOutcome) DetailRow {
	pct := func(p float64) float64 { return RoundTo((p-o.DayOpen)/o.DayOpen*100, 2) }
	return DetailRow{
		SignalDate:         o.SignalDate,
		DayOpen:            o.DayOpen,
		DayHigh:            o.DayHigh,
		DayLow:             o.DayLow,
		DayClose:           o.DayClose,
		PrevCloseToOpenGap: o.PrevCloseToOpenGap,
		OpenToHighPct:      pct(o.DayHigh),
		OpenToLowPct:       pct(o.DayLow),
		OpenToClosePct:     pct(o.DayClose),
		BaselineProfitRate: RoundTo(o.BaselineProfitRate, 2),
		FilteredProfitRate: RoundTo(out.ProfitRate, 2),
		Included:           out.Included,
		Exit:               out.Exit,
		TradingVolume:      o.TradingVolume,
	}
}
