package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func loadWarehouse(t *testing.T) *Warehouse {
	t.Helper()
	f, err := LoadFixture("testdata/fixture.json")
	require.NoError(t, err)
	w, err := NewWarehouseFromFixture(f)
	require.NoError(t, err)
	return w
}

func TestWarehouse_ListOccurrencesFiltersAndSorts(t *testing.T) {
	w := loadWarehouse(t)
	axis := models.AxisKey{SignalType: "rsi", SignalBin: 3, TradeType: models.TradeTypeBuy, StockCode: "7203"}

	rows, err := w.ListOccurrences(context.Background(), models.ForAxis(axis, models.Period{To: date("2024-06-30")}))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, date("2024-02-01"), rows[0].SignalDate)
	assert.Equal(t, date("2024-05-10"), rows[1].SignalDate)

	// null columns stay null
	assert.False(t, rows[0].PrevCloseToOpenGap.Valid)
	assert.False(t, rows[0].TradingVolume.Valid)
	assert.True(t, rows[1].TradingVolume.Valid)
}

func TestWarehouse_NextTradingDateAndFired(t *testing.T) {
	w := loadWarehouse(t)
	ctx := context.Background()

	next, err := w.NextTradingDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, date("2025-07-04"), next)

	fired, err := w.FiredSignals(ctx, next, "")
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, "7203", fired[0].StockCode)

	fired, err = w.FiredSignals(ctx, next, "6758")
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestWarehouse_NoNextTradingDate(t *testing.T) {
	_, err := NewWarehouse().NextTradingDate(context.Background())
	assert.ErrorIs(t, err, domrepo.ErrNotFound)
}

func TestWarehouse_ListAxes(t *testing.T) {
	w := loadWarehouse(t)

	axes, err := w.ListAxes(context.Background(), models.Period{To: date("2024-06-30")})
	require.NoError(t, err)
	require.Len(t, axes, 2)
	assert.Equal(t, "6758", axes[0].StockCode)
	assert.Equal(t, models.TradeTypeSell, axes[0].TradeType)
	assert.Equal(t, "7203", axes[1].StockCode)
}

func TestWarehouse_Snapshots(t *testing.T) {
	w := NewWarehouse()
	ctx := context.Background()
	a := models.AxisKey{SignalType: "rsi", SignalBin: 1, TradeType: models.TradeTypeBuy, StockCode: "7203"}
	b := models.AxisKey{SignalType: "rsi", SignalBin: 2, TradeType: models.TradeTypeSell, StockCode: "7203"}

	require.NoError(t, w.SaveSnapshots(ctx, []models.AxisSnapshot{{AxisKey: a}, {AxisKey: b}}))
	require.NoError(t, w.SaveSnapshots(ctx, []models.AxisSnapshot{{AxisKey: a, FourA: true}}))

	all, err := w.ListSnapshots(ctx, models.SnapshotFilter{StockCode: "7203"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].FourA)

	sells, err := w.ListSnapshots(ctx, models.SnapshotFilter{TradeType: models.TradeTypeSell})
	require.NoError(t, err)
	require.Len(t, sells, 1)

	only, err := w.ListSnapshots(ctx, models.SnapshotFilter{Axes: []models.AxisKey{b}})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, 2, only[0].SignalBin)
}

func TestLoadOccurrenceRows_AcceptsArrayAndFixture(t *testing.T) {
	rows, err := LoadOccurrenceRows("testdata/fixture.json")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}
