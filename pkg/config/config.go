package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins"`
	} `yaml:"server"`
	Log struct {
		Level     string `yaml:"level" default:"info"`
		Format    string `yaml:"format" default:"json"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled       bool          `yaml:"enabled"`
			Topic         string        `yaml:"topic" default:"signalaxis.log-reports"`
			FlushInterval time.Duration `yaml:"flush_interval" default:"1m"`
			MaxEntries    int           `yaml:"max_entries" default:"500"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Storage struct {
		// Backend is "clickhouse" or "memory".
		Backend string `yaml:"backend" default:"clickhouse"`
		// Decisions is "postgres" or "memory".
		Decisions   string `yaml:"decisions" default:"postgres"`
		FixturePath string `yaml:"fixture_path"`
	} `yaml:"storage"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"signalaxis"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		Tables           struct {
			Occurrences  string `yaml:"occurrences" default:"signal_occurrences"`
			Snapshots    string `yaml:"snapshots" default:"axis_learning_snapshots"`
			FiredSignals string `yaml:"fired_signals" default:"signals_with_bins"`
			Calendar     string `yaml:"calendar" default:"trading_calendar"`
			Quotes       string `yaml:"quotes" default:"daily_quotes"`
			SignalTypes  string `yaml:"signal_types" default:"signal_types"`
		} `yaml:"tables"`
	} `yaml:"clickhouse"`
	Postgres struct {
		DSN      string `yaml:"dsn"`
		MaxConns int32  `yaml:"max_conns" default:"10"`
		MinConns int32  `yaml:"min_conns" default:"1"`
	} `yaml:"postgres"`
	Cache struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		TTL     time.Duration `yaml:"ttl" default:"5m"`
		Memory  struct {
			MaxSize         int           `yaml:"max_size" default:"1000"`
			CleanupInterval time.Duration `yaml:"cleanup_interval" default:"1m"`
			// LayeredTTL caps L1 entries when Redis is enabled.
			LayeredTTL time.Duration `yaml:"layered_ttl" default:"30s"`
		} `yaml:"memory"`
		Redis struct {
			Enabled      bool          `yaml:"enabled"`
			Addr         string        `yaml:"addr" default:"localhost:6379"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			Prefix       string        `yaml:"prefix" default:"signalaxis"`
			PoolSize     int           `yaml:"pool_size" default:"20"`
			MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
			PoolTimeout  time.Duration `yaml:"pool_timeout" default:"4s"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Brokers       []string `yaml:"brokers"`
		DecisionTopic string   `yaml:"decision_topic" default:"signalaxis.decisions"`
		RequiredAcks  int      `yaml:"required_acks" default:"-1"`
		Compression   string   `yaml:"compression" default:"snappy"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled" default:"true"`
			GroupID    string        `yaml:"group_id" default:"signalaxis-api"`
			Workers    int           `yaml:"workers" default:"1"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Periods struct {
		LearningEnd       string `yaml:"learning_end" default:"2024-06-30"`
		VerificationStart string `yaml:"verification_start" default:"2024-07-01"`
		VerificationEnd   string `yaml:"verification_end" default:"2025-07-03"`
	} `yaml:"periods"`
	Thresholds struct {
		AxisMinSamples     int     `yaml:"axis_min_samples" default:"10"`
		TomorrowMinSamples int     `yaml:"tomorrow_min_samples" default:"20"`
		TomorrowMinWinRate float64 `yaml:"tomorrow_min_win_rate" default:"55"`
		TomorrowMinAvg     float64 `yaml:"tomorrow_min_avg" default:"0.5"`
		BinMinSamples      int     `yaml:"bin_min_samples" default:"5"`
		FourAYears         int     `yaml:"four_a_years" default:"4"`
	} `yaml:"thresholds"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled" default:"true"`
		RPS     float64 `yaml:"rps" default:"20"`
		Burst   int     `yaml:"burst" default:"40"`
	} `yaml:"ratelimit"`
	Retry struct {
		InitialInterval time.Duration `yaml:"initial_interval" default:"200ms"`
		MaxInterval     time.Duration `yaml:"max_interval" default:"2s"`
		MaxElapsed      time.Duration `yaml:"max_elapsed" default:"10s"`
		BreakerFailures uint32        `yaml:"breaker_failures" default:"5"`
		BreakerTimeout  time.Duration `yaml:"breaker_timeout" default:"30s"`
	} `yaml:"retry"`
	Snapshot struct {
		Workers int `yaml:"workers" default:"4"`
	} `yaml:"snapshot"`
}

// Load reads and parses a YAML configuration file and validates it.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_DECISION_TOPIC"); v != "" {
		c.Kafka.DecisionTopic = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Storage.Backend {
	case "clickhouse", "memory":
	default:
		return fmt.Errorf("storage.backend must be 'clickhouse' or 'memory', got '%s'", c.Storage.Backend)
	}
	switch c.Storage.Decisions {
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required when storage.decisions is 'postgres'")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.decisions must be 'postgres' or 'memory', got '%s'", c.Storage.Decisions)
	}

	learningEnd, err := time.Parse(dateLayout, c.Periods.LearningEnd)
	if err != nil {
		return fmt.Errorf("periods.learning_end: %w", err)
	}
	vStart, err := time.Parse(dateLayout, c.Periods.VerificationStart)
	if err != nil {
		return fmt.Errorf("periods.verification_start: %w", err)
	}
	vEnd, err := time.Parse(dateLayout, c.Periods.VerificationEnd)
	if err != nil {
		return fmt.Errorf("periods.verification_end: %w", err)
	}
	if !vStart.After(learningEnd) {
		return fmt.Errorf("verification period must start after the learning period ends")
	}
	if vEnd.Before(vStart) {
		return fmt.Errorf("periods.verification_end is before verification_start")
	}

	if c.Thresholds.AxisMinSamples < 1 || c.Thresholds.TomorrowMinSamples < 1 {
		return fmt.Errorf("sample floors must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("ratelimit.rps and ratelimit.burst must be positive")
	}
	if c.Snapshot.Workers < 1 {
		return fmt.Errorf("snapshot.workers must be at least 1")
	}
	return nil
}

// LearningEnd returns the last date of the learning period.
func (c *Config) LearningEnd() time.Time {
	t, _ := time.Parse(dateLayout, c.Periods.LearningEnd)
	return t
}

// VerificationRange returns the inclusive verification period.
func (c *Config) VerificationRange() (time.Time, time.Time) {
	from, _ := time.Parse(dateLayout, c.Periods.VerificationStart)
	to, _ := time.Parse(dateLayout, c.Periods.VerificationEnd)
	return from, to
}

// KafkaEnabled reports whether brokers are configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
