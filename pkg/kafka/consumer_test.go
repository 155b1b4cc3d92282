package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyHandler struct {
	failures int
	calls    int
	panics   bool
}

func (h *flakyHandler) Topic() string { return "signalaxis.decisions" }

func (h *flakyHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.panics {
		panic("bad payload")
	}
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

func testConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(nil,
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)
	return c
}

func TestConsumer_DispatchRetries(t *testing.T) {
	c := testConsumer(t, 3)
	h := &flakyHandler{failures: 2}

	require.NoError(t, c.dispatch(context.Background(), h, nil))
	assert.Equal(t, 3, h.calls)
}

func TestConsumer_DispatchGivesUp(t *testing.T) {
	c := testConsumer(t, 1)
	h := &flakyHandler{failures: 10}

	assert.Error(t, c.dispatch(context.Background(), h, nil))
	assert.Equal(t, 2, h.calls)
}

func TestConsumer_DispatchRecoversPanic(t *testing.T) {
	c := testConsumer(t, 3)
	h := &flakyHandler{panics: true}

	err := c.dispatch(context.Background(), h, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad payload")
	assert.Equal(t, 1, h.calls)
}

func TestConsumer_RequiresBrokersAndHandlers(t *testing.T) {
	_, err := NewConsumer(nil)
	assert.Error(t, err)

	c := testConsumer(t, 0)
	assert.Error(t, c.Start(context.Background()))
}

func TestConsumer_PartitionLockIsShared(t *testing.T) {
	c := testConsumer(t, 0)
	assert.Same(t, c.partitionLock("t", 1), c.partitionLock("t", 1))
	assert.NotSame(t, c.partitionLock("t", 1), c.partitionLock("t", 2))
}
