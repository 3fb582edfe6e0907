// Package metrics defines the operation metrics contract used by every
// service, plus its prometheus and no-op implementations.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records the outcome of service operations. Each module
// gets its own instance namespaced by module name.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, scope string)
	RecordOperationSuccess(ctx context.Context, operation, scope string)
	RecordOperationFailure(ctx context.Context, operation, scope string)
	RecordOperationDuration(ctx context.Context, operation, scope string, duration time.Duration)
}

// PrometheusMetrics implements OperationMetrics on a prometheus registry.
type PrometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the operation metric set for a module on
// the given registry.
func NewPrometheusMetrics(registry prometheus.Registerer, module string) *PrometheusMetrics {
	labels := []string{"operation", "scope"}

	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "demonlist",
			Subsystem: module,
			Name:      "operation_attempts_total",
			Help:      "Number of attempted service operations.",
		}, labels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "demonlist",
			Subsystem: module,
			Name:      "operation_successes_total",
			Help:      "Number of service operations that completed successfully.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "demonlist",
			Subsystem: module,
			Name:      "operation_failures_total",
			Help:      "Number of service operations that returned an error.",
		}, labels),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "demonlist",
			Subsystem: module,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}

	registry.MustRegister(m.attempts, m.successes, m.failures, m.durations)
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, scope string) {
	m.attempts.WithLabelValues(operation, scope).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, scope string) {
	m.successes.WithLabelValues(operation, scope).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, scope string) {
	m.failures.WithLabelValues(operation, scope).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, scope string, duration time.Duration) {
	m.durations.WithLabelValues(operation, scope).Observe(duration.Seconds())
}

// NoOpMetrics is used in tests.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
