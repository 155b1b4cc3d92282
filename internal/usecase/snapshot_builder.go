package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/services/replay"
	"SignalAxis/pkg/cache"
	applogger "SignalAxis/pkg/logger"
)

const (
	snapshotLockKey = "lock:snapshot-build"
	snapshotLockTTL = 30 * time.Minute
	snapshotBatch   = 500
)

var ErrBuildInProgress = errors.New("snapshot build already running")

// BuildReport summarizes one snapshot rebuild.
type BuildReport struct {
	Axes      int           `json:"axes"`
	Saved     int           `json:"saved"`
	Skipped   int           `json:"skipped"`
	Excellent int           `json:"excellent"`
	FourA     int           `json:"four_a"`
	Duration  time.Duration `json:"duration"`
}

// SnapshotBuilder recomputes the learning-period snapshot of every axis.
type SnapshotBuilder struct {
	warehouse domrepo.Warehouse
	cache     cache.Service
	settings  Settings
	metrics   domrepo.Metrics
	l         *applogger.Logger
	now       func() time.Time
}

func NewSnapshotBuilder(w domrepo.Warehouse, c cache.Service, s Settings, m domrepo.Metrics, l *applogger.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{warehouse: w, cache: c, settings: s, metrics: m, l: l, now: time.Now}
}

type buildResult struct {
	snap models.AxisSnapshot
	err  error
}

func (b *SnapshotBuilder) Build(ctx context.Context) (*BuildReport, error) {
	start := time.Now()
	if b.cache != nil {
		ok, err := b.cache.TryLock(ctx, snapshotLockKey, snapshotLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire build lock: %w", err)
		}
		if !ok {
			return nil, ErrBuildInProgress
		}
		defer func() {
			if err := b.cache.Unlock(context.Background(), snapshotLockKey); err != nil {
				b.l.Warn("release build lock failed", applogger.Error(err))
			}
		}()
	}

	axes, err := b.warehouse.ListAxes(ctx, b.settings.Learning)
	if err != nil {
		return nil, fmt.Errorf("list axes: %w", err)
	}
	b.l.Info("snapshot build started", applogger.Int("axes", len(axes)))

	workers := b.settings.SnapshotWorkers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan models.AxisKey)
	results := make(chan buildResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for axis := range jobs {
				snap, err := b.buildAxis(ctx, axis)
				select {
				case results <- buildResult{snap: snap, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, a := range axes {
			select {
			case jobs <- a:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	report := &BuildReport{Axes: len(axes)}
	batch := make([]models.AxisSnapshot, 0, snapshotBatch)
	var saveErr error
	flush := func() {
		if len(batch) == 0 || saveErr != nil {
			return
		}
		if err := b.warehouse.SaveSnapshots(ctx, batch); err != nil {
			saveErr = fmt.Errorf("save snapshots: %w", err)
			return
		}
		report.Saved += len(batch)
		batch = batch[:0]
	}

	for r := range results {
		if r.err != nil {
			var occErr *replay.OccurrenceError
			if !errors.As(r.err, &occErr) && !errors.Is(r.err, errEmptyAxis) {
				saveErr = errors.Join(saveErr, r.err)
				continue
			}
			report.Skipped++
			b.l.Warn("axis skipped", applogger.String("axis", r.snap.AxisKey.String()), applogger.Error(r.err))
			continue
		}
		if r.snap.IsExcellent {
			report.Excellent++
		}
		if r.snap.FourA {
			report.FourA++
		}
		batch = append(batch, r.snap)
		if len(batch) >= snapshotBatch {
			flush()
		}
	}
	flush()

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if saveErr != nil {
		return report, saveErr
	}

	if b.cache != nil {
		if err := b.cache.DeleteByPattern(ctx, cache.BuildPattern(tomorrowCachePrefix)); err != nil {
			b.l.Warn("invalidate tomorrow cache failed", applogger.Error(err))
		}
	}

	report.Duration = time.Since(start)
	b.l.Info("snapshot build finished",
		applogger.Int("saved", report.Saved),
		applogger.Int("skipped", report.Skipped),
		applogger.Int("excellent", report.Excellent),
		applogger.Duration("duration_ms", report.Duration),
	)
	return report, nil
}

var errEmptyAxis = errors.New("axis has no learning occurrences")

func (b *SnapshotBuilder) buildAxis(ctx context.Context, axis models.AxisKey) (models.AxisSnapshot, error) {
	snap := models.AxisSnapshot{AxisKey: axis}
	occs, name, err := axisOccurrences(ctx, b.warehouse, axis, b.settings.Learning)
	if err != nil {
		return snap, err
	}
	if len(occs) == 0 {
		return snap, errEmptyAxis
	}

	summary, outcomes := replay.Baseline(occs, axis.TradeType)
	recordEvaluation(b.metrics, "snapshot", outcomes)

	snap.StockName = name
	snap.Learning = summary
	snap.PatternCategory = replay.Classify(summary.WinRate, summary.AvgProfitRate)
	snap.IsExcellent = replay.IsExcellent(summary, b.settings.TomorrowMinSamples)
	snap.FourA = replay.YearlyStreak(occs, outcomes) >= b.settings.FourAYears
	snap.UpdatedAt = b.now().UTC()
	return snap, nil
}
