package di

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"SignalAxis/internal/domain/repository"
	"SignalAxis/internal/handler/api"
	internalrepo "SignalAxis/internal/repository"
	"SignalAxis/internal/repository/memory"
	"SignalAxis/internal/usecase"
	"SignalAxis/pkg/cache"
	pkgch "SignalAxis/pkg/clickhouse"
	"SignalAxis/pkg/config"
	xhttp "SignalAxis/pkg/http"
	pkgkafka "SignalAxis/pkg/kafka"
	applogger "SignalAxis/pkg/logger"
	"SignalAxis/pkg/metrics"
	"SignalAxis/pkg/postgres"
	"SignalAxis/pkg/resilience"
	"SignalAxis/pkg/server"
)

const initTimeout = 10 * time.Second

// ProvideLogger builds the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	l = l.With(applogger.String("service", "signalaxis"), applogger.String("env", cfg.Environment))
	return l, l.Close, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

func ProvideSettings(cfg *config.Config) usecase.Settings {
	return usecase.SettingsFromConfig(cfg)
}

// ProvideGuard builds the retry and breaker policy for warehouse calls.
func ProvideGuard(cfg *config.Config) *resilience.Guard {
	return resilience.New(resilience.Config{
		Name:            "clickhouse",
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
		MaxElapsed:      cfg.Retry.MaxElapsed,
		BreakerFailures: cfg.Retry.BreakerFailures,
		BreakerTimeout:  cfg.Retry.BreakerTimeout,
		Permanent: func(err error) bool {
			return errors.Is(err, repository.ErrNotFound)
		},
	})
}

// ProvideWarehouse opens the analytical store: ClickHouse, or a fixture held in memory.
func ProvideWarehouse(cfg *config.Config, guard *resilience.Guard, m repository.Metrics, l *applogger.Logger) (repository.Warehouse, func(), error) {
	if cfg.Storage.Backend == "memory" {
		w := memory.NewWarehouse()
		if cfg.Storage.FixturePath != "" {
			f, err := memory.LoadFixture(cfg.Storage.FixturePath)
			if err != nil {
				return nil, nil, fmt.Errorf("load fixture: %w", err)
			}
			if w, err = memory.NewWarehouseFromFixture(f); err != nil {
				return nil, nil, fmt.Errorf("load fixture: %w", err)
			}
		}
		l.Info("using in-memory warehouse", applogger.String("fixture", cfg.Storage.FixturePath))
		return w, func() {}, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	t := cfg.ClickHouse.Tables
	w := internalrepo.NewCHWarehouse(client, internalrepo.Tables{
		Occurrences:  t.Occurrences,
		Snapshots:    t.Snapshots,
		FiredSignals: t.FiredSignals,
		Calendar:     t.Calendar,
		Quotes:       t.Quotes,
		SignalTypes:  t.SignalTypes,
	}, guard, m, l)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := w.InitSchema(ctx); err != nil {
		_ = w.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	l.Info("clickhouse connected", applogger.String("database", cfg.ClickHouse.Database))
	return w, func() {
		if err := w.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}, nil
}

// ProvideDecisionStore opens the decision store and creates its table.
func ProvideDecisionStore(cfg *config.Config, l *applogger.Logger) (repository.DecisionStore, func(), error) {
	if cfg.Storage.Decisions == "memory" {
		return memory.NewDecisionStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, postgres.WithConns(cfg.Postgres.MaxConns, cfg.Postgres.MinConns))
	if err != nil {
		return nil, nil, err
	}
	store := internalrepo.NewPGDecisionStore(pool)
	if err := store.Init(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("decision schema: %w", err)
	}
	l.Info("postgres connected")
	return store, func() { _ = store.Close() }, nil
}

// ProvideCache returns the response cache, or nil when caching is disabled.
// With Redis it is layered behind a short-lived memory copy.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	c := cfg.Cache
	if !c.Enabled {
		return nil, func() {}, nil
	}
	if !c.Redis.Enabled {
		mc := cache.NewMemoryCache(
			cache.WithMemoryMaxSize(c.Memory.MaxSize),
			cache.WithMemoryCleanup(c.Memory.CleanupInterval),
		)
		return mc, func() { _ = mc.Close() }, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(c.Redis.Addr),
		cache.WithRedisPassword(c.Redis.Password),
		cache.WithRedisDB(c.Redis.DB),
		cache.WithRedisPrefix(c.Redis.Prefix),
		cache.WithRedisPool(c.Redis.PoolSize, c.Redis.MinIdleConns, c.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc,
		cache.WithLayeredMemorySize(c.Memory.MaxSize),
		cache.WithLayeredMemoryTTL(c.Memory.LayeredTTL),
	)
	l.Info("redis cache connected", applogger.String("addr", c.Redis.Addr))
	return lc, func() {
		if err := lc.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil without brokers.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.KafkaEnabled() {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopics(cfg.Environment == "development"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}, nil
}

// ProvideDecisionPublisher publishes decision events when Kafka is configured.
func ProvideDecisionPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.DecisionPublisher {
	if producer == nil {
		return internalrepo.NoopDecisionPublisher{}
	}
	return internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.DecisionTopic)
}

// ProvideLogCollector ships warn and error roll-ups to Kafka when enabled.
func ProvideLogCollector(cfg *config.Config, l *applogger.Logger, producer *pkgkafka.Producer) *applogger.Collector {
	if !cfg.Log.Collector.Enabled || producer == nil {
		return nil
	}
	c := applogger.NewCollector(applogger.CollectorConfig{
		Service:       "signalaxis",
		Environment:   cfg.Environment,
		FlushInterval: cfg.Log.Collector.FlushInterval,
		MaxEntries:    cfg.Log.Collector.MaxEntries,
		Topic:         cfg.Log.Collector.Topic,
		Publisher:     producer,
	})
	l.AttachCollector(c)
	return c
}

// ProvideKafkaConsumer creates the decision-event consumer, or nil when disabled.
// Each instance joins its own group so every node sees every event.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.KafkaEnabled() || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	group := cfg.Kafka.Consumer.GroupID
	if host, err := os.Hostname(); err == nil && host != "" {
		group += "-" + host
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(group),
		pkgkafka.WithConsumerLatest(),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

func ProvideDecisionEventsHandler(cfg *config.Config, c cache.Service, l *applogger.Logger) *usecase.DecisionEventsHandler {
	return usecase.NewDecisionEventsHandler(cfg.Kafka.DecisionTopic, c, l)
}

// Use cases take the narrow store interfaces; these adapt the bundled warehouse.

func ProvideTuning(w repository.Warehouse, s usecase.Settings, m repository.Metrics) *usecase.Tuning {
	return usecase.NewTuning(w, s, m)
}

func ProvideVerification(w repository.Warehouse, s usecase.Settings, m repository.Metrics) *usecase.Verification {
	return usecase.NewVerification(w, s, m)
}

func ProvideAxisDetails(w repository.Warehouse, d repository.DecisionStore, c cache.Service, s usecase.Settings, m repository.Metrics) *usecase.AxisDetails {
	return usecase.NewAxisDetails(w, d, c, s, m)
}

func ProvideSignalTypes(w repository.Warehouse, s usecase.Settings) *usecase.SignalTypes {
	return usecase.NewSignalTypes(w, w, s)
}

func ProvideBinSelection(w repository.Warehouse, s usecase.Settings) *usecase.BinSelection {
	return usecase.NewBinSelection(w, w, s)
}

func ProvideTomorrowSignals(w repository.Warehouse, d repository.DecisionStore, c cache.Service, s usecase.Settings, m repository.Metrics) *usecase.TomorrowSignals {
	return usecase.NewTomorrowSignals(w, w, d, c, s, m)
}

func ProvideDecisions(
	w repository.Warehouse,
	d repository.DecisionStore,
	pub repository.DecisionPublisher,
	c cache.Service,
	s usecase.Settings,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Decisions {
	return usecase.NewDecisions(w, d, pub, c, s, m, l)
}

func ProvideSnapshotBuilder(w repository.Warehouse, c cache.Service, s usecase.Settings, m repository.Metrics, l *applogger.Logger) *usecase.SnapshotBuilder {
	return usecase.NewSnapshotBuilder(w, c, s, m, l)
}

// ProvideHTTPHandler registers every API route group.
func ProvideHTTPHandler(
	l *applogger.Logger,
	m repository.Metrics,
	tuning *usecase.Tuning,
	verification *usecase.Verification,
	tomorrow *usecase.TomorrowSignals,
	bins *usecase.BinSelection,
	details *usecase.AxisDetails,
	types *usecase.SignalTypes,
	decisions *usecase.Decisions,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewSignalsHandler(l, m, tuning, verification, tomorrow, bins),
		api.NewAxisHandler(l, m, details, types),
		api.NewDecisionsHandler(l, m, decisions),
	}
}

// ProvideHTTPServer creates the Echo server from config.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, w repository.Warehouse, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
		xhttp.WithReadiness(w.Health),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	if cfg.RateLimit.Enabled {
		opts = append(opts, xhttp.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	return xhttp.NewServer(h, l, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	events *usecase.DecisionEventsHandler,
	_ *applogger.Collector,
) *server.App {
	return server.New(l, srv, consumer, events)
}
