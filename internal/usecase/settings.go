package usecase

import (
	"time"

	"SignalAxis/internal/domain/models"
	"SignalAxis/pkg/config"
)

// Settings carries the periods and thresholds shared by the use cases.
type Settings struct {
	Learning     models.Period
	Verification models.Period

	AxisMinSamples     int
	TomorrowMinSamples int
	TomorrowMinWinRate float64
	TomorrowMinAvg     float64
	BinMinSamples      int
	FourAYears         int

	CacheTTL        time.Duration
	SnapshotWorkers int
}

// SettingsFromConfig reads Settings from a validated config.
func SettingsFromConfig(c *config.Config) Settings {
	vFrom, vTo := c.VerificationRange()
	return Settings{
		Learning:           models.Period{To: c.LearningEnd()},
		Verification:       models.Period{From: vFrom, To: vTo},
		AxisMinSamples:     c.Thresholds.AxisMinSamples,
		TomorrowMinSamples: c.Thresholds.TomorrowMinSamples,
		TomorrowMinWinRate: c.Thresholds.TomorrowMinWinRate,
		TomorrowMinAvg:     c.Thresholds.TomorrowMinAvg,
		BinMinSamples:      c.Thresholds.BinMinSamples,
		FourAYears:         c.Thresholds.FourAYears,
		CacheTTL:           c.Cache.TTL,
		SnapshotWorkers:    c.Snapshot.Workers,
	}
}

// DefaultSettings mirrors the config defaults.
func DefaultSettings() Settings {
	return Settings{
		Learning: models.Period{To: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		Verification: models.Period{
			From: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
		},
		AxisMinSamples:     10,
		TomorrowMinSamples: 20,
		TomorrowMinWinRate: 55,
		TomorrowMinAvg:     0.5,
		BinMinSamples:      5,
		FourAYears:         4,
		CacheTTL:           5 * time.Minute,
		SnapshotWorkers:    4,
	}
}
