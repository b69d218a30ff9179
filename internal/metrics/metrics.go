// Package metrics holds the Prometheus collectors that report screening
// outcomes and background persistence failures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CallsScreened counts decisions by action and reason code.
	CallsScreened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callguard_calls_screened_total",
			Help: "Calls screened, by action and reason code",
		},
		[]string{"action", "reason"},
	)

	// ResponseErrors counts failures reported by the call-screening boundary.
	ResponseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callguard_response_errors_total",
		Help: "Responses the call-screening boundary failed to accept",
	})

	// LogWrites counts blocked-call writes by backend and result.
	LogWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callguard_log_writes_total",
			Help: "Blocked-call log writes, by backend and result",
		},
		[]string{"backend", "result"},
	)

	// LogDropped counts blocked calls lost because every backend failed.
	LogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callguard_log_dropped_total",
		Help: "Blocked calls that could not be written to any backend",
	})

	// QueueDropped counts persistence jobs rejected by a full queue.
	QueueDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callguard_queue_dropped_total",
		Help: "Persistence jobs dropped because the queue was full",
	})

	// QueueDepth tracks pending persistence jobs.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "callguard_queue_depth",
		Help: "Persistence jobs waiting for a worker",
	})

	// RetentionPruned counts rows deleted by the retention sweep.
	RetentionPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callguard_retention_pruned_total",
		Help: "Blocked-call rows deleted by the retention sweep",
	})

	// RetentionErrors counts failed retention sweeps.
	RetentionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callguard_retention_errors_total",
		Help: "Retention sweeps that failed",
	})
)

// Backend label values.
const (
	BackendPrimary  = "primary"
	BackendFallback = "fallback"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)
