package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalAxis/internal/domain/models"
	"SignalAxis/internal/repository/memory"
)

func snap(axis models.AxisKey, win, avg float64, samples int) models.AxisSnapshot {
	return models.AxisSnapshot{
		AxisKey:   axis,
		StockName: "Stock " + axis.StockCode,
		Learning: models.StatsSummary{
			TotalSamples:  samples,
			WinRate:       win,
			AvgProfitRate: avg,
		},
	}
}

func axis(signalType string, bin int, tt models.TradeType, stock string) models.AxisKey {
	return models.AxisKey{SignalType: signalType, SignalBin: bin, TradeType: tt, StockCode: stock}
}

func TestSignalTypes_GroupsExcellentBins(t *testing.T) {
	w := memory.NewWarehouse()
	buy := models.TradeTypeBuy
	require.NoError(t, w.SaveSnapshots(context.Background(), []models.AxisSnapshot{
		snap(axis("rsi", 1, buy, "7203"), 60, 0.8, 12),
		snap(axis("rsi", 2, buy, "7203"), 70, 1.2, 15),
		snap(axis("rsi", 3, buy, "7203"), 50, 2.0, 40),
		snap(axis("macd", 1, buy, "7203"), 58, 1.5, 10),
		snap(axis("macd", 2, buy, "7203"), 80, 2.0, 9),
		snap(axis("ema", 1, models.TradeTypeSell, "7203"), 90, 3.0, 50),
	}))
	w.SetSignalTypes(models.SignalTypeInfo{SignalType: "rsi", Category: "Momentum", Description: "RSI band"})

	uc := NewSignalTypes(w, w, DefaultSettings())
	out, err := uc.Summarize(context.Background(), "7203", buy)
	require.NoError(t, err)
	require.Len(t, out, 2)

	macd := out[0]
	assert.Equal(t, "macd", macd.SignalType)
	assert.Equal(t, "Unknown", macd.SignalCategory)
	assert.Equal(t, "macd", macd.Description)
	assert.Equal(t, []int{1}, macd.ExcellentBins)
	assert.Equal(t, 1.5, macd.MaxExpectedValue)

	rsi := out[1]
	assert.Equal(t, "Momentum", rsi.SignalCategory)
	assert.Equal(t, []int{1, 2}, rsi.ExcellentBins)
	assert.Equal(t, 2, rsi.TotalExcellentPatterns)
	assert.Equal(t, 70.0, rsi.MaxWinRate)
	assert.Equal(t, 65.0, rsi.AvgWinRate)
	assert.Equal(t, 1.2, rsi.MaxExpectedValue)
	assert.Equal(t, 1.0, rsi.AvgExpectedValue)
	assert.Equal(t, 27, rsi.TotalSamples)
	assert.Equal(t, 2, rsi.BestBin.SignalBin)
}

func TestSignalTypes_Empty(t *testing.T) {
	w := memory.NewWarehouse()
	out, err := NewSignalTypes(w, w, DefaultSettings()).Summarize(context.Background(), "7203", models.TradeTypeBuy)
	require.NoError(t, err)
	assert.Empty(t, out)
}
