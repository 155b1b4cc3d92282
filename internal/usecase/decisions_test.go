package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalAxis/internal/domain/models"
	"SignalAxis/internal/repository/memory"
	"SignalAxis/internal/services/replay"
	"SignalAxis/pkg/cache"
	applogger "SignalAxis/pkg/logger"
)

func decisionRequest(action string) models.DecisionRequest {
	return models.DecisionRequest{
		AxisQuery: models.AxisQuery{
			SignalType: "rsi",
			SignalBin:  3,
			TradeType:  "buy",
			StockCode:  "7203",
		},
		Action:          action,
		ProfitTargetYen: 50,
		LossCutYen:      30,
		Notes:           "tested on 2024 data",
	}
}

type decisionFixture struct {
	uc    *Decisions
	store *memory.DecisionStore
	pub   *capturePublisher
	cache *cache.MemoryCache
}

func newDecisionFixture(t *testing.T) *decisionFixture {
	t.Helper()
	w := memory.NewWarehouse()
	seed(w, rsiBuy, "2024-01-10", repeat(1, 10)...)
	f := &decisionFixture{
		store: memory.NewDecisionStore(),
		pub:   &capturePublisher{},
		cache: cache.NewMemoryCache(),
	}
	t.Cleanup(func() { f.cache.Close() })
	f.uc = NewDecisions(w, f.store, f.pub, f.cache, DefaultSettings(), noMetrics, applogger.Nop())
	return f
}

func TestDecisions_AcceptStoresAndPublishes(t *testing.T) {
	f := newDecisionFixture(t)
	ctx := context.Background()

	dec, err := f.uc.Record(ctx, decisionRequest("accept"))
	require.NoError(t, err)
	assert.Equal(t, "rsi_3_BUY_7203", dec.Key)
	assert.Equal(t, models.DecisionConfigured, dec.Status)
	assert.Equal(t, models.GapAll, dec.Exit.GapCondition)
	assert.Equal(t, 10, dec.LearningSummary.TotalSamples)

	stored, err := f.store.Get(ctx, dec.Key)
	require.NoError(t, err)
	assert.Equal(t, "tested on 2024 data", stored.Notes)

	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, models.EventDecisionRecorded, ev.Type)
	assert.Equal(t, dec.Key, ev.Key)
	assert.NotEmpty(t, ev.EventID)
}

func TestDecisions_AlreadyConfigured(t *testing.T) {
	f := newDecisionFixture(t)
	ctx := context.Background()

	_, err := f.uc.Record(ctx, decisionRequest("accept"))
	require.NoError(t, err)

	_, err = f.uc.Record(ctx, decisionRequest("reject"))
	require.ErrorIs(t, err, ErrAlreadyConfigured)
	var ce *ConfiguredError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 50.0, ce.Existing.Exit.ProfitTargetYen)
}

func TestDecisions_DeferThenAcceptKeepsDecidedAt(t *testing.T) {
	f := newDecisionFixture(t)
	ctx := context.Background()
	first := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time { return first }

	_, err := f.uc.Record(ctx, decisionRequest("defer"))
	require.NoError(t, err)

	f.uc.now = func() time.Time { return first.Add(time.Hour) }
	_, err = f.uc.Record(ctx, decisionRequest("accept"))
	require.NoError(t, err)

	stored, err := f.store.Get(ctx, rsiBuy.String())
	require.NoError(t, err)
	assert.Equal(t, models.DecisionConfigured, stored.Status)
	assert.Equal(t, first, stored.DecidedAt)
	assert.Equal(t, first.Add(time.Hour), stored.UpdatedAt)
}

func TestDecisions_Rejections(t *testing.T) {
	f := newDecisionFixture(t)
	ctx := context.Background()

	req := decisionRequest("accept")
	req.StockCode = "9999"
	_, err := f.uc.Record(ctx, req)
	assert.ErrorIs(t, err, ErrNoLearningStats)

	_, err = f.uc.Record(ctx, decisionRequest("maybe"))
	assert.ErrorIs(t, err, ErrInvalidDecision)

	req = decisionRequest("accept")
	req.GapCondition = "SIDEWAYS"
	_, err = f.uc.Record(ctx, req)
	assert.ErrorIs(t, err, replay.ErrInvalidExitConfig)

	assert.Empty(t, f.pub.events)
}

func TestDecisions_PublishFailureDoesNotFail(t *testing.T) {
	f := newDecisionFixture(t)
	f.pub.err = errors.New("broker down")

	dec, err := f.uc.Record(context.Background(), decisionRequest("reject"))
	require.NoError(t, err)
	assert.Equal(t, models.DecisionRejected, dec.Status)
}

func TestDecisions_InvalidatesCache(t *testing.T) {
	f := newDecisionFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, "tomorrow:abc", "page", time.Minute))
	require.NoError(t, f.cache.Set(ctx, "axis:"+rsiBuy.String(), "detail", time.Minute))
	require.NoError(t, f.cache.Set(ctx, "axis:other", "detail", time.Minute))

	_, err := f.uc.Record(ctx, decisionRequest("accept"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Len())
}

func TestDecisions_ListNewestFirst(t *testing.T) {
	f := newDecisionFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, code := range []string{"1111", "2222", "3333"} {
		k := rsiBuy
		k.StockCode = code
		require.NoError(t, f.store.Save(ctx, &models.Decision{
			Key:       k.String(),
			Axis:      k,
			Status:    models.DecisionConfigured,
			DecidedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	out, err := f.uc.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "rsi_3_BUY_3333", out[0].Key)

	out, err = f.uc.List(ctx, models.DecisionRejected, 10)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	_, err = f.uc.List(ctx, "archived", 10)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestDecisionEventsHandler(t *testing.T) {
	c := cache.NewMemoryCache()
	defer c.Close()
	ctx := context.Background()
	h := NewDecisionEventsHandler("signalaxis.decisions", c, applogger.Nop())
	assert.Equal(t, "signalaxis.decisions", h.Topic())

	require.NoError(t, c.Set(ctx, "tomorrow:abc", "page", time.Minute))
	require.NoError(t, c.Set(ctx, "axis:rsi_3_BUY_7203", "detail", time.Minute))

	assert.Error(t, h.Handle(ctx, []byte("{not json")))
	require.NoError(t, h.Handle(ctx, []byte(`{"type":"other","decision_key":"rsi_3_BUY_7203"}`)))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, h.Handle(ctx, []byte(`{"event_id":"e1","type":"decision.recorded","decision_key":"rsi_3_BUY_7203"}`)))
	assert.Equal(t, 0, c.Len())
}
