// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Fetch metrics
	CandidatesFetched  *prometheus.CounterVec
	SourceFailures     *prometheus.CounterVec
	FetchRetries       *prometheus.CounterVec
	IncompleteBatches  prometheus.Counter
	SourceFetchLatency *prometheus.HistogramVec

	// Pipeline metrics
	EventsNormalized   prometheus.Counter
	CandidatesDropped  prometheus.Counter
	EventsDeduplicated prometheus.Counter
	EventsScored       *prometheus.CounterVec
	PipelineRunsTotal  *prometheus.CounterVec
	PipelineDuration   *prometheus.HistogramVec

	// Correlation metrics
	EventsCorrelated    *prometheus.CounterVec
	PriceLookupErrors   *prometheus.CounterVec
	PriceLookupLatency  prometheus.Histogram
	OverallImpactScores prometheus.Histogram

	// Storage metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulBatch prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mining_intel"
	}

	return &Metrics{
		CandidatesFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "candidates_total",
			Help:      "Total number of raw candidates fetched by source",
		}, []string{"source"}),
		SourceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "source_failures_total",
			Help:      "Total number of sources whose retries were exhausted",
		}, []string{"source"}),
		FetchRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "retries_total",
			Help:      "Total number of fetch retry attempts by source",
		}, []string{"source"}),
		IncompleteBatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "incomplete_batches_total",
			Help:      "Total number of batches cut short by the global timeout",
		}),
		SourceFetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "source_latency_seconds",
			Help:      "Per-source fetch latency including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		EventsNormalized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "events_normalized_total",
			Help:      "Total number of candidates normalized into events",
		}),
		CandidatesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "candidates_dropped_total",
			Help:      "Total number of malformed candidates dropped",
		}),
		EventsDeduplicated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "events_deduplicated_total",
			Help:      "Total number of duplicate events collapsed",
		}),
		EventsScored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "events_scored_total",
			Help:      "Total number of events scored by event type",
		}, []string{"event_type"}),
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by phase and status",
		}, []string{"phase", "status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "phase_duration_seconds",
			Help:      "Duration of pipeline phases",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"phase"}),

		EventsCorrelated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "correlation",
			Name:      "events_total",
			Help:      "Total number of events correlated by strength",
		}, []string{"strength"}),
		PriceLookupErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "correlation",
			Name:      "price_lookup_errors_total",
			Help:      "Total number of skipped symbols by reason",
		}, []string{"reason"}),
		PriceLookupLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "correlation",
			Name:      "price_lookup_latency_seconds",
			Help:      "Latency of price-history lookups",
			Buckets:   prometheus.DefBuckets,
		}),
		OverallImpactScores: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "correlation",
			Name:      "overall_impact_score",
			Help:      "Distribution of overall impact scores",
			Buckets:   []float64{1, 3, 8, 15, 25, 50, 75, 100},
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulBatch: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_batch_timestamp",
			Help:      "Unix timestamp of the last successful pipeline batch",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFetch records candidates fetched from one source.
func RecordFetch(source string, count int) {
	DefaultMetrics.CandidatesFetched.WithLabelValues(source).Add(float64(count))
}

// RecordSourceFailure records a source whose retries were exhausted.
func RecordSourceFailure(source string) {
	DefaultMetrics.SourceFailures.WithLabelValues(source).Inc()
}

// RecordPipelineRun records one pipeline phase execution.
func RecordPipelineRun(phase, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// RecordCorrelation records a completed correlation analysis.
func RecordCorrelation(strength string, overallScore float64) {
	DefaultMetrics.EventsCorrelated.WithLabelValues(strength).Inc()
	DefaultMetrics.OverallImpactScores.Observe(overallScore)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
