// Package metrics provides Prometheus metrics for the offline sync subsystem and the dev backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of a safe call
const (
	OutcomeDelivered     = "delivered"
	OutcomeQueued        = "queued"
	OutcomeSessionError  = "session_error"
	OutcomeBusinessError = "business_error"
	OutcomeMalformed     = "malformed"
	OutcomeFailed        = "failed"
)

// Result labels of a drain run
const (
	DrainEmpty    = "empty"
	DrainComplete = "complete"
	DrainStopped  = "stopped"
	DrainSkipped  = "skipped"
	DrainFailed   = "failed"
)

var (
	// safeCallsTotal records safe calls by action and outcome.
	// Labels:
	//   - action: request action (e.g., "addInvoice")
	//   - outcome: delivered, queued, session_error, business_error, malformed, failed
	safeCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicekeeper_safe_calls_total",
			Help: "Total number of write calls made through the sync engine",
		},
		[]string{"action", "outcome"},
	)

	// drainRunsTotal records drain runs by result.
	drainRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicekeeper_drain_runs_total",
			Help: "Total number of queue drain runs",
		},
		[]string{"result"},
	)

	// drainedEntriesTotal counts queued operations delivered by drains.
	drainedEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoicekeeper_drained_entries_total",
			Help: "Total number of queued operations delivered by drains",
		},
	)

	// queueDepth is the number of operations waiting for delivery after the last mutation.
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "invoicekeeper_queue_depth",
			Help: "Number of operations waiting in the offline queue",
		},
	)

	// actionRequestsTotal records requests handled by the dev backend.
	// Labels:
	//   - action: request action
	//   - status: ok or error
	actionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicekeeper_backend_requests_total",
			Help: "Total number of action requests handled by the backend",
		},
		[]string{"action", "status"},
	)

	// httpRequestDuration tracks backend HTTP latency by path and status code.
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invoicekeeper_http_request_duration_seconds",
			Help:    "Duration of HTTP requests handled by the backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "status"},
	)
)

func init() {
	prometheus.MustRegister(safeCallsTotal)
	prometheus.MustRegister(drainRunsTotal)
	prometheus.MustRegister(drainedEntriesTotal)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(actionRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
}

// RecordSafeCall records the outcome of a safe call
func RecordSafeCall(action, outcome string) {
	safeCallsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordDrain records a drain run and the number of delivered operations
func RecordDrain(result string, delivered int) {
	drainRunsTotal.WithLabelValues(result).Inc()
	if delivered > 0 {
		drainedEntriesTotal.Add(float64(delivered))
	}
}

// SetQueueDepth updates the queue depth gauge
func SetQueueDepth(depth int) {
	queueDepth.Set(float64(depth))
}

// RecordActionRequest records an action handled by the backend
func RecordActionRequest(action, status string) {
	actionRequestsTotal.WithLabelValues(action, status).Inc()
}

// RecordHTTPRequest records the latency of a backend HTTP request
func RecordHTTPRequest(path, status string, duration time.Duration) {
	httpRequestDuration.WithLabelValues(path, status).Observe(duration.Seconds())
}
