package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"SignalAxis/internal/domain/models"
	"SignalAxis/pkg/cache"
	applogger "SignalAxis/pkg/logger"
)

// DecisionEventsHandler drops cached responses when another instance records a decision.
type DecisionEventsHandler struct {
	topic string
	cache cache.Service
	l     *applogger.Logger
}

func NewDecisionEventsHandler(topic string, c cache.Service, l *applogger.Logger) *DecisionEventsHandler {
	return &DecisionEventsHandler{topic: topic, cache: c, l: l}
}

func (h *DecisionEventsHandler) Topic() string { return h.topic }

func (h *DecisionEventsHandler) Handle(ctx context.Context, data []byte) error {
	var ev models.DecisionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode decision event: %w", err)
	}
	if ev.Type != models.EventDecisionRecorded || ev.Key == "" {
		h.l.Debug("ignoring decision event", applogger.String("type", ev.Type))
		return nil
	}
	if err := invalidateAxis(ctx, h.cache, ev.Key); err != nil {
		return fmt.Errorf("invalidate %s: %w", ev.Key, err)
	}
	h.l.Debug("cache invalidated",
		applogger.String("decision_key", ev.Key),
		applogger.String("event_id", ev.EventID),
	)
	return nil
}
