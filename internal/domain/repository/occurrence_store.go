package repository

import (
	"context"
	"errors"
	"time"

	"SignalAxis/internal/domain/models"
)

var ErrNotFound = errors.New("not found")

// OccurrenceStore provides read-only access to historical signal occurrences.
type OccurrenceStore interface {
	ListOccurrences(ctx context.Context, q models.OccurrenceQuery) ([]models.OccurrenceRow, error)
}

// SignalCalendar answers which axes fire on the next trading date.
type SignalCalendar interface {
	// NextTradingDate is the first business day after the latest quote date.
	NextTradingDate(ctx context.Context) (time.Time, error)
	FiredSignals(ctx context.Context, date time.Time, stockCode string) ([]models.FiredSignal, error)
}

// SnapshotStore persists learning-period statistics per axis.
type SnapshotStore interface {
	ListSnapshots(ctx context.Context, f models.SnapshotFilter) ([]models.AxisSnapshot, error)
	SaveSnapshots(ctx context.Context, snaps []models.AxisSnapshot) error
	// ListAxes enumerates every axis with occurrences in the period.
	ListAxes(ctx context.Context, p models.Period) ([]models.AxisKey, error)
}

// SignalTypeCatalog reads the signal-type master.
type SignalTypeCatalog interface {
	ListSignalTypes(ctx context.Context) ([]models.SignalTypeInfo, error)
}

// Warehouse bundles the analytical read side.
type Warehouse interface {
	OccurrenceStore
	SignalCalendar
	SnapshotStore
	SignalTypeCatalog
	Health(ctx context.Context) error
	Close() error
}
