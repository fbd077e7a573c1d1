package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and path
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataguess_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataguess_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress counts HTTP requests currently being processed
	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataguess_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	// RateLimiterRejections counts rejected requests due to rate limiting
	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataguess_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
		[]string{"ip"},
	)

	// DatabaseOperationDuration measures database operation duration
	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataguess_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// JudgeRequestDuration measures external judge call duration
	JudgeRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataguess_judge_request_duration_seconds",
			Help:    "External judge request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// JudgeFailures counts failed judge calls (timeouts, bad payloads)
	JudgeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataguess_judge_failures_total",
			Help: "Total number of failed judge calls",
		},
	)

	// GuessesJudged counts persisted guesses by verdict
	GuessesJudged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataguess_guesses_judged_total",
			Help: "Total number of judged and persisted guesses",
		},
		[]string{"verdict"},
	)

	// AttemptsMerged counts anonymous attempts folded into player attempts
	AttemptsMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dataguess_attempts_merged_total",
			Help: "Total number of anonymous attempts reconciled into player attempts",
		},
	)

	// MemoryStats tracks memory usage stats
	MemoryStats = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataguess_memory_stats_bytes",
			Help: "Memory statistics in bytes",
		},
		[]string{"type"},
	)

	// GoroutineCount tracks the number of goroutines
	GoroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataguess_goroutine_count",
			Help: "Number of goroutines",
		},
	)
)

// RecordDBOperation records the duration of a database operation
func RecordDBOperation(operation string, table string, startTime time.Time) {
	duration := time.Since(startTime).Seconds()
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordJudgeCall records the duration and outcome of an external judge call
func RecordJudgeCall(startTime time.Time, err error) {
	JudgeRequestDuration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		JudgeFailures.Inc()
	}
}
