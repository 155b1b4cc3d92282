package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\nstorage:\n  backend: memory\n  decisions: memory\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 15*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, 10, c.Thresholds.AxisMinSamples)
	assert.Equal(t, 20, c.Thresholds.TomorrowMinSamples)
	assert.Equal(t, "signal_occurrences", c.ClickHouse.Tables.Occurrences)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), c.LearningEnd())

	from, to := c.VerificationRange()
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC), to)
	assert.False(t, c.KafkaEnabled())
}

func TestLoad_RequiresPostgresDSN(t *testing.T) {
	path := writeConfig(t, "environment: test\nstorage:\n  backend: memory\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres.dsn")
}

func TestLoad_RejectsOverlappingPeriods(t *testing.T) {
	path := writeConfig(t, `environment: test
storage:
  backend: memory
  decisions: memory
periods:
  learning_end: "2024-07-05"
  verification_start: "2024-07-01"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	path := writeConfig(t, "environment: test\nstorage:\n  backend: clickhouse\n")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@db:5432/x")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PORT", "9090")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Storage.Backend)
	assert.Equal(t, "postgres://u:p@db:5432/x", c.Postgres.DSN)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 9090, c.Server.Port)
	assert.True(t, c.KafkaEnabled())
}
