// Package metrics provides Prometheus metrics for the account service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planora"

var (
	// OperationsTotal counts account operations by outcome code.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_operations_total",
			Help:      "Total number of account operations",
		},
		[]string{"operation", "code"},
	)

	// OperationDuration measures end-to-end operation duration.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "account_operation_duration_seconds",
			Help:      "Duration of account operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// StepDuration measures each provisioning step.
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provisioning_step_duration_seconds",
			Help:      "Duration of provisioning steps in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"step", "status"},
	)

	// CompensationsTotal counts compensations by step and outcome.
	CompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_compensations_total",
			Help:      "Total number of compensation actions run",
		},
		[]string{"step", "status"},
	)

	// IdempotentReplaysTotal counts requests answered from a stored result.
	IdempotentReplaysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_idempotent_replays_total",
			Help:      "Total number of registrations replayed from a stored result",
		},
	)
)

// RecordOperation records a finished account operation.
func RecordOperation(operation, code string, duration float64) {
	OperationsTotal.WithLabelValues(operation, code).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordStep records one provisioning step.
func RecordStep(step, status string, duration float64) {
	StepDuration.WithLabelValues(step, status).Observe(duration)
}

// RecordCompensation records one compensation attempt.
func RecordCompensation(step, status string) {
	CompensationsTotal.WithLabelValues(step, status).Inc()
}

// RecordReplay records an idempotent replay.
func RecordReplay() {
	IdempotentReplaysTotal.Inc()
}
