package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/repository/memory"
	"SignalAxis/pkg/cache"
)

func TestAxisDetails_Summary(t *testing.T) {
	w := memory.NewWarehouse()
	seed(w, rsiBuy, "2024-01-10", repeat(1, 10)...)
	seed(w, rsiBuy, "2024-07-10", -1, 2)
	store := memory.NewDecisionStore()
	uc := NewAxisDetails(w, store, nil, DefaultSettings(), noMetrics)
	ctx := context.Background()

	d, err := uc.Get(ctx, rsiBuy)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Learning.TotalSamples)
	assert.Equal(t, 2, d.Recent.TotalSamples)
	assert.Equal(t, 50.0, d.Recent.WinRate)
	assert.Equal(t, models.PatternPremium, d.PatternCategory)
	assert.True(t, d.IsExcellent)
	assert.Equal(t, models.DecisionPending, d.DecisionStatus)
	assert.Nil(t, d.Decision)

	require.NoError(t, store.Save(ctx, &models.Decision{Key: rsiBuy.String(), Axis: rsiBuy, Status: models.DecisionRejected, DecidedAt: time.Now()}))
	d, err = uc.Get(ctx, rsiBuy)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionRejected, d.DecisionStatus)
}

func TestAxisDetails_SampleFloor(t *testing.T) {
	w := memory.NewWarehouse()
	seed(w, rsiBuy, "2024-01-10", repeat(1, 9)...)
	uc := NewAxisDetails(w, memory.NewDecisionStore(), nil, DefaultSettings(), noMetrics)

	d, err := uc.Get(context.Background(), rsiBuy)
	require.NoError(t, err)
	assert.False(t, d.IsExcellent)
	assert.Equal(t, models.PatternPremium, d.PatternCategory)
}

func TestAxisDetails_NotFound(t *testing.T) {
	uc := NewAxisDetails(memory.NewWarehouse(), memory.NewDecisionStore(), nil, DefaultSettings(), noMetrics)
	_, err := uc.Get(context.Background(), rsiBuy)
	assert.ErrorIs(t, err, domrepo.ErrNotFound)
}

func TestAxisDetails_CachedUntilInvalidated(t *testing.T) {
	w := memory.NewWarehouse()
	seed(w, rsiBuy, "2024-01-10", 1, 1)
	c := cache.NewMemoryCache()
	defer c.Close()
	uc := NewAxisDetails(w, memory.NewDecisionStore(), c, DefaultSettings(), noMetrics)
	ctx := context.Background()

	d, err := uc.Get(ctx, rsiBuy)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Learning.TotalSamples)

	seed(w, rsiBuy, "2024-03-01", 1)
	d, err = uc.Get(ctx, rsiBuy)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Learning.TotalSamples)

	require.NoError(t, invalidateAxis(ctx, c, rsiBuy.String()))
	d, err = uc.Get(ctx, rsiBuy)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Learning.TotalSamples)
}
