package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalAxis/internal/domain/models"
)

func occ(open, high, low, close, gap, baseline float64) models.SignalOccurrence {
	return models.SignalOccurrence{
		SignalDate:         time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DayOpen:            open,
		DayHigh:            high,
		DayLow:             low,
		DayClose:           close,
		PrevCloseToOpenGap: gap,
		BaselineProfitRate: baseline,
	}
}

func buy(pt, lc float64) models.ExitConfig {
	return models.ExitConfig{TradeType: models.TradeTypeBuy, ProfitTargetYen: pt, LossCutYen: lc, GapCondition: models.GapAll}
}

func sell(pt, lc float64) models.ExitConfig {
	return models.ExitConfig{TradeType: models.TradeTypeSell, ProfitTargetYen: pt, LossCutYen: lc, GapCondition: models.GapAll}
}

func TestSimulate_BuyProfitTargetReached(t *testing.T) {
	got := Simulate(occ(1000, 1060, 980, 1010, 5, 0.3), buy(50, 30))
	assert.True(t, got.Included)
	assert.InDelta(t, 5.0, got.ProfitRate, 1e-9)
	assert.Equal(t, models.ExitProfitTarget, got.Exit)
}

func TestSimulate_BuyLossCutReached(t *testing.T) {
	got := Simulate(occ(1000, 1040, 965, 1010, 5, 0.3), buy(50, 30))
	assert.True(t, got.Included)
	assert.InDelta(t, -3.0, got.ProfitRate, 1e-9)
	assert.Equal(t, models.ExitLossCut, got.Exit)
}

func TestSimulate_LossCutWinsWhenBothReached(t *testing.T) {
	cases := []struct {
		name string
		o    models.SignalOccurrence
		cfg  models.ExitConfig
	}{
		{"buy", occ(1000, 1100, 900, 1000, 0, 1.2), buy(50, 30)},
		{"sell", occ(1000, 1100, 900, 1000, 0, 1.2), sell(50, 30)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Simulate(tc.o, tc.cfg)
			assert.Equal(t, models.ExitLossCut, got.Exit)
			assert.InDelta(t, -3.0, got.ProfitRate, 1e-9)
		})
	}
}

func TestSimulate_Sell(t *testing.T) {
	// profit target at 950 reached by the low, loss cut at 1030 not reached
	got := Simulate(occ(1000, 1020, 940, 990, -3, 0.8), sell(50, 30))
	assert.Equal(t, models.ExitProfitTarget, got.Exit)
	assert.InDelta(t, 5.0, got.ProfitRate, 1e-9)

	// loss cut at 1030 reached by the high
	got = Simulate(occ(1000, 1035, 990, 1020, -3, -2.0), sell(50, 30))
	assert.Equal(t, models.ExitLossCut, got.Exit)
	assert.InDelta(t, -3.0, got.ProfitRate, 1e-9)
}

func TestSimulate_NeitherReachedKeepsBaseline(t *testing.T) {
	got := Simulate(occ(1000, 1020, 990, 1005, 1, 0.5), buy(50, 30))
	assert.True(t, got.Included)
	assert.Equal(t, 0.5, got.ProfitRate)
	assert.Equal(t, models.ExitBaseline, got.Exit)
}

func TestSimulate_NoOverrideIdentity(t *testing.T) {
	for _, rate := range []float64{-4.2, 0, 0.3, 7.77} {
		for _, cfg := range []models.ExitConfig{buy(0, 0), sell(0, 0)} {
			got := Simulate(occ(1000, 1200, 800, 1000, 2, rate), cfg)
			assert.True(t, got.Included)
			assert.Equal(t, rate, got.ProfitRate)
		}
	}
}

func TestSimulate_SingleLegDisabled(t *testing.T) {
	// loss cut disabled: the wide range only triggers the target
	got := Simulate(occ(1000, 1100, 900, 1000, 0, 0), buy(50, 0))
	assert.Equal(t, models.ExitProfitTarget, got.Exit)

	// target disabled: only the loss cut can fire
	got = Simulate(occ(1000, 1100, 990, 1000, 0, 0.4), buy(0, 30))
	assert.Equal(t, models.ExitBaseline, got.Exit)
	assert.Equal(t, 0.4, got.ProfitRate)
}

func TestSimulate_GapBoundary(t *testing.T) {
	o := occ(1000, 1060, 980, 1010, 0, 0.3)
	for _, cond := range []models.GapCondition{models.GapAbove, models.GapBelow} {
		cfg := buy(50, 30)
		cfg.GapCondition = cond
		got := Simulate(o, cfg)
		assert.False(t, got.Included, string(cond))
		assert.Zero(t, got.ProfitRate)
	}
	assert.True(t, Simulate(o, buy(50, 30)).Included)
}

func TestSimulate_GapDirection(t *testing.T) {
	up := occ(1000, 1010, 995, 1005, 12, 0.5)
	down := occ(1000, 1010, 995, 1005, -12, 0.5)

	above := buy(0, 0)
	above.GapCondition = models.GapAbove
	below := buy(0, 0)
	below.GapCondition = models.GapBelow

	assert.True(t, Simulate(up, above).Included)
	assert.False(t, Simulate(down, above).Included)
	assert.True(t, Simulate(down, below).Included)
	assert.False(t, Simulate(up, below).Included)
}

func TestHasOverride(t *testing.T) {
	assert.False(t, HasOverride(buy(0, 0)))
	assert.True(t, HasOverride(buy(1, 0)))
	assert.True(t, HasOverride(sell(0, 1)))
	cfg := buy(0, 0)
	cfg.GapCondition = models.GapBelow
	assert.True(t, HasOverride(cfg))
	require.Equal(t, models.GapBelow, GapOnly(cfg).GapCondition)
}
