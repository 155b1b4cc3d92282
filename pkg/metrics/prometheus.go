package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	evaluations   *prometheus.CounterVec
	occurrences   *prometheus.CounterVec
	exits         *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	queryErrors   *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// New registers the recorder on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the recorder on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalaxis_evaluations_total",
				Help: "Exit-rule evaluations by kind (tuning, verification, axis, snapshot)",
			},
			[]string{"kind"},
		),
		occurrences: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalaxis_occurrences_simulated_total",
				Help: "Occurrences replayed, split by whether the gap filter admitted them",
			},
			[]string{"kind", "admitted"},
		),
		exits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalaxis_exit_triggers_total",
				Help: "Replayed occurrences closed by loss cut or profit target",
			},
			[]string{"kind", "exit"},
		),
		queryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalaxis_warehouse_query_duration_seconds",
				Help:    "Warehouse query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		queryErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalaxis_warehouse_query_errors_total",
				Help: "Warehouse query failures",
			},
			[]string{"operation"},
		),
		decisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalaxis_decisions_total",
				Help: "Recorded decisions by status",
			},
			[]string{"status"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalaxis_cache_lookups_total",
				Help: "Response cache lookups",
			},
			[]string{"cache", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalaxis_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordEvaluation records one evaluation and its per-occurrence breakdown.
func (r *Recorder) RecordEvaluation(kind string, admitted, excluded, lossCuts, targets int) {
	r.evaluations.WithLabelValues(kind).Inc()
	r.occurrences.WithLabelValues(kind, "true").Add(float64(admitted))
	r.occurrences.WithLabelValues(kind, "false").Add(float64(excluded))
	r.exits.WithLabelValues(kind, "loss_cut").Add(float64(lossCuts))
	r.exits.WithLabelValues(kind, "profit_target").Add(float64(targets))
}

// RecordQuery records a warehouse query latency and failure.
func (r *Recorder) RecordQuery(op string, seconds float64, err error) {
	r.queryDuration.WithLabelValues(op).Observe(seconds)
	if err != nil {
		r.queryErrors.WithLabelValues(op).Inc()
	}
}

func (r *Recorder) RecordDecision(status string) {
	r.decisions.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Noop satisfies repository.Metrics without recording.
type Noop struct{}

func (Noop) RecordEvaluation(string, int, int, int, int) {}
func (Noop) RecordQuery(string, float64, error)          {}
func (Noop) RecordDecision(string)                       {}
func (Noop) RecordCacheLookup(string, bool)              {}
func (Noop) RecordError(string)                          {}
