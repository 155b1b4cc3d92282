package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer()
	assert.ErrorContains(t, err, "brokers are required")

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}), WithRequiredAcks(2))
	assert.ErrorContains(t, err, "required acks")

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("brotli"))
	assert.ErrorContains(t, err, "unknown compression")

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}))
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestProducerOptions_ZeroKeepsDefaults(t *testing.T) {
	cfg := defaultProducerConfig()
	for _, opt := range []ProducerOption{
		WithCompression(""),
		WithMaxAttempts(0),
		WithBatchSize(0),
		WithBatchBytes(0),
		WithBatchTimeout(0),
		WithTimeouts(0, 5*time.Second),
	} {
		opt(&cfg)
	}
	assert.Equal(t, "snappy", cfg.Compression)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1<<20, cfg.BatchBytes)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.True(t, cfg.HashByKey)
}
