package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/services/replay"
	"SignalAxis/pkg/cache"
	applogger "SignalAxis/pkg/logger"
)

// ConfiguredError is returned when an axis already has an accepted exit rule.
// It matches ErrAlreadyConfigured.
type ConfiguredError struct {
	Existing *models.Decision
}

func (e *ConfiguredError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyConfigured, e.Existing.Key)
}

func (e *ConfiguredError) Is(target error) bool { return target == ErrAlreadyConfigured }

// Decisions records accept, reject and defer verdicts per axis.
type Decisions struct {
	store     domrepo.OccurrenceStore
	decisions domrepo.DecisionStore
	publisher domrepo.DecisionPublisher
	cache     cache.Service
	settings  Settings
	metrics   domrepo.Metrics
	l         *applogger.Logger
	now       func() time.Time
}

func NewDecisions(store domrepo.OccurrenceStore, decisions domrepo.DecisionStore, publisher domrepo.DecisionPublisher, c cache.Service, s Settings, m domrepo.Metrics, l *applogger.Logger) *Decisions {
	return &Decisions{
		store:     store,
		decisions: decisions,
		publisher: publisher,
		cache:     c,
		settings:  s,
		metrics:   m,
		l:         l,
		now:       time.Now,
	}
}

func (d *Decisions) Record(ctx context.Context, req models.DecisionRequest) (*models.Decision, error) {
	axis, err := req.Axis()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDecision, err)
	}
	status, err := models.DecisionAction(strings.ToLower(req.Action)).Status()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDecision, err)
	}
	gap, err := models.ParseGapCondition(req.GapCondition)
	if err != nil {
		return nil, &replay.ConfigError{Field: "prev_close_gap_condition", Reason: "must be ALL, ABOVE or BELOW"}
	}
	exit := models.ExitConfig{
		TradeType:       axis.TradeType,
		ProfitTargetYen: req.ProfitTargetYen,
		LossCutYen:      req.LossCutYen,
		GapCondition:    gap,
	}
	if err := replay.ValidateExitConfig(exit); err != nil {
		return nil, err
	}

	key := axis.String()
	existing, err := d.decisions.Get(ctx, key)
	switch {
	case err == nil:
		if existing.Status == models.DecisionConfigured {
			return nil, &ConfiguredError{Existing: existing}
		}
	case !errors.Is(err, domrepo.ErrNotFound):
		return nil, fmt.Errorf("get decision %s: %w", key, err)
	}

	occs, _, err := axisOccurrences(ctx, d.store, axis, d.settings.Learning)
	if err != nil {
		return nil, err
	}
	if len(occs) == 0 {
		return nil, ErrNoLearningStats
	}
	summary, _ := replay.Baseline(occs, axis.TradeType)

	now := d.now().UTC()
	dec := &models.Decision{
		Key:             key,
		Axis:            axis,
		Status:          status,
		Exit:            exit,
		Notes:           req.Notes,
		LearningSummary: summary,
		DecidedAt:       now,
		UpdatedAt:       now,
	}
	if err := d.decisions.Save(ctx, dec); err != nil {
		return nil, fmt.Errorf("save decision %s: %w", key, err)
	}
	d.metrics.RecordDecision(string(status))

	ev := models.DecisionEvent{
		EventID:    uuid.NewString(),
		Type:       models.EventDecisionRecorded,
		Key:        key,
		Axis:       axis,
		Status:     status,
		OccurredAt: now,
	}
	if err := d.publisher.PublishDecision(ctx, ev); err != nil {
		d.metrics.RecordError("decision_publish")
		d.l.Warn("publish decision event failed",
			applogger.String("decision_key", key),
			applogger.String("event_id", ev.EventID),
			applogger.Error(err),
		)
	}
	if err := invalidateAxis(ctx, d.cache, key); err != nil {
		d.l.Warn("invalidate cache failed", applogger.String("decision_key", key), applogger.Error(err))
	}

	d.l.Info("decision recorded",
		applogger.String("decision_key", key),
		applogger.String("status", string(status)),
	)
	return dec, nil
}

func (d *Decisions) List(ctx context.Context, status models.DecisionStatus, limit int) ([]*models.Decision, error) {
	if status == "" {
		status = models.DecisionConfigured
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidDecision, status)
	}
	out, err := d.decisions.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	if out == nil {
		out = []*models.Decision{}
	}
	return out, nil
}
