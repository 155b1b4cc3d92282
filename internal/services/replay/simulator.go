package replay

import "SignalAxis/internal/domain/models"

// Simulate replays one occurrence under cfg. Gap admission runs first, then the
// no-override identity, then loss cut, then profit target. When both thresholds lie
// inside the session range the loss cut wins. Inputs are expected to be validated.
func Simulate(o models.SignalOccurrence, cfg models.ExitConfig) models.RecomputedOutcome {
	if !admitsGap(cfg.GapCondition, o.PrevCloseToOpenGap) {
		return models.RecomputedOutcome{Included: false, ProfitRate: 0, Exit: models.ExitGapExcluded}
	}
	baseline := models.RecomputedOutcome{Included: true, ProfitRate: o.BaselineProfitRate, Exit: models.ExitBaseline}
	if cfg.ProfitTargetYen == 0 && cfg.LossCutYen == 0 {
		return baseline
	}

	var lossCutPrice, targetPrice float64
	switch cfg.TradeType {
	case models.TradeTypeSell:
		lossCutPrice = o.DayOpen + cfg.LossCutYen
		targetPrice = o.DayOpen - cfg.ProfitTargetYen
	default:
		lossCutPrice = o.DayOpen - cfg.LossCutYen
		targetPrice = o.DayOpen + cfg.ProfitTargetYen
	}

	if cfg.LossCutYen > 0 && lossCutReached(cfg.TradeType, o, lossCutPrice) {
		return models.RecomputedOutcome{
			Included:   true,
			ProfitRate: -(cfg.LossCutYen / o.DayOpen) * 100,
			Exit:       models.ExitLossCut,
		}
	}
	if cfg.ProfitTargetYen > 0 && targetReached(cfg.TradeType, o, targetPrice) {
		return models.RecomputedOutcome{
			Included:   true,
			ProfitRate: (cfg.ProfitTargetYen / o.DayOpen) * 100,
			Exit:       models.ExitProfitTarget,
		}
	}
	return baseline
}

// SimulateAll maps Simulate over occurrences, preserving order.
func SimulateAll(occurrences []models.SignalOccurrence, cfg models.ExitConfig) []models.RecomputedOutcome {
	out := make([]models.RecomputedOutcome, len(occurrences))
	for i, o := range occurrences {
		out[i] = Simulate(o, cfg)
	}
	return out
}

// HasOverride reports whether cfg changes anything relative to the baseline trade.
func HasOverride(cfg models.ExitConfig) bool {
	return cfg.ProfitTargetYen > 0 || cfg.LossCutYen > 0 || (cfg.GapCondition != "" && cfg.GapCondition != models.GapAll)
}

// GapOnly strips the price thresholds, keeping direction and gap admission.
func GapOnly(cfg models.ExitConfig) models.ExitConfig {
	cfg.ProfitTargetYen = 0
	cfg.LossCutYen = 0
	return cfg
}

// admitsGap rejects a zero gap under both ABOVE and BELOW.
func admitsGap(cond models.GapCondition, gap float64) bool {
	switch cond {
	case models.GapAbove:
		return gap > 0
	case models.GapBelow:
		return gap < 0
	default:
		return true
	}
}

func lossCutReached(tt models.TradeType, o models.SignalOccurrence, price float64) bool {
	if tt == models.TradeTypeSell {
		return o.DayHigh >= price
	}
	return o.DayLow <= price
}

func targetReached(tt models.TradeType, o models.SignalOccurrence, price float64) bool {
	if tt == models.TradeTypeSell {
		return o.DayLow <= price
	}
	return o.DayHigh >= price
}
