package usecase

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalAxis/internal/domain/models"
	"SignalAxis/internal/repository/memory"
	"SignalAxis/internal/services/replay"
)

func TestTuning_BaselineWithoutOverride(t *testing.T) {
	w := memory.NewWarehouse()
	seed(w, rsiBuy, "2024-01-10", 2, -1, 3, 0)
	seed(w, rsiBuy, "2024-08-01", 5)
	uc := NewTuning(w, DefaultSettings(), noMetrics)

	res, err := uc.Evaluate(context.Background(), rsiBuy, models.ExitConfig{})
	require.NoError(t, err)

	assert.False(t, res.HasFilter)
	assert.Equal(t, 4, res.Baseline.TotalSamples)
	assert.Equal(t, 50.0, res.Baseline.WinRate)
	assert.Equal(t, 1.0, res.Baseline.AvgProfitRate)
	assert.Equal(t, res.Baseline, res.Filtered)
	assert.Equal(t, "Stock 7203", res.StockName)
	require.Len(t, res.Details, 4)
	assert.Equal(t, day("2024-01-13"), res.Details[0].SignalDate)
	assert.Equal(t, day("2024-01-10"), res.Details[3].SignalDate)
}

func TestTuning_LossCutOverridesEveryRow(t *testing.T) {
	w := memory.NewWarehouse()
	seed(w, rsiBuy, "2024-01-10", 2, -1, 3, 0)
	uc := NewTuning(w, DefaultSettings(), noMetrics)

	res, err := uc.Evaluate(context.Background(), rsiBuy, models.ExitConfig{LossCutYen: 30})
	require.NoError(t, err)

	assert.True(t, res.HasFilter)
	assert.Equal(t, 4, res.Filtered.TotalSamples)
	assert.Equal(t, -3.0, res.Filtered.AvgProfitRate)
	assert.Equal(t, 0.0, res.Filtered.WinRate)
	for _, d := range res.Details {
		assert.Equal(t, models.ExitLossCut, d.Exit)
	}
}

func TestTuning_Errors(t *testing.T) {
	w := memory.NewWarehouse()
	seed(w, rsiBuy, "2024-01-10", 1)
	uc := NewTuning(w, DefaultSettings(), noMetrics)
	ctx := context.Background()

	_, err := uc.Evaluate(ctx, rsiBuy, models.ExitConfig{ProfitTargetYen: -1})
	assert.ErrorIs(t, err, replay.ErrInvalidExitConfig)

	_, err = uc.Evaluate(ctx, rsiSell, models.ExitConfig{})
	assert.ErrorIs(t, err, ErrNoLearningStats)

	bad := occRow(rsiBuy, day("2024-02-01"), 1)
	bad.DayOpen = sql.NullFloat64{}
	w.AddRows(bad)
	_, err = uc.Evaluate(ctx, rsiBuy, models.ExitConfig{})
	assert.ErrorIs(t, err, replay.ErrInvalidOccurrence)
}

func TestVerification_ComparesPeriods(t *testing.T) {
	w := memory.NewWarehouse()
	seed(w, rsiBuy, "2024-01-10", 2, -1, 3, 0)
	uc := NewVerification(w, DefaultSettings(), noMetrics)
	ctx := context.Background()

	_, err := uc.Verify(ctx, rsiBuy, models.ExitConfig{})
	assert.ErrorIs(t, err, ErrNoVerificationData)

	seed(w, rsiBuy, "2024-07-02", 1, 1)
	res, err := uc.Verify(ctx, rsiBuy, models.ExitConfig{ProfitTargetYen: 20})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Learning.Baseline.TotalSamples)
	assert.Equal(t, 2, res.Verification.Baseline.TotalSamples)
	assert.Equal(t, 100.0, res.Verification.Baseline.WinRate)
	assert.Equal(t, 2.0, res.Verification.Filtered.AvgProfitRate)
	require.Len(t, res.Details, 2)
	assert.Equal(t, day("2024-07-03"), res.Details[0].SignalDate)
}
