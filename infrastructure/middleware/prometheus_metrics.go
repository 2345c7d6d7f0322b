// Package middleware provides cross-cutting concerns for the estimation
// engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-geomean/internal/ports"
)

// Metric names understood by PrometheusMetrics. Anything else is routed to
// the generic event, latency and gauge vectors.
const (
	MetricEstimationLatency = "estimation_latency_seconds"
	MetricEstimations       = "estimations_total"
	MetricRelativeError     = "estimation_relative_error"
	MetricSessionDuration   = "practice_session_duration_seconds"
	MetricEvaluations       = "practice_evaluations_total"
)

const namespace = "geomean"

// relativeErrorBuckets span exact answers up to the factor-of-ten bound of
// the table method.
var relativeErrorBuckets = []float64{0, 0.01, 0.025, 0.05, 0.1, 0.15, 0.2, 0.3, 0.5, 1, 2, 9}

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks estimation latency and accuracy per method and the outcome of
// practice rounds.
type PrometheusMetrics struct {
	estimationLatency *prometheus.HistogramVec
	estimations       *prometheus.CounterVec
	relativeError     *prometheus.HistogramVec
	sessionDuration   *prometheus.HistogramVec
	evaluations       *prometheus.CounterVec
	operationLatency  *prometheus.HistogramVec
	events            *prometheus.CounterVec
	systemGauges      *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// all its metrics with reg. Pass prometheus.DefaultRegisterer to expose
// them on the default /metrics handler.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		// Estimation metrics.
		estimationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      MetricEstimationLatency,
				Help:      "Time taken by a single geometric mean estimation.",
				Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
			},
			[]string{"method", "status"},
		),
		estimations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricEstimations,
				Help:      "Total number of estimations by method and outcome.",
			},
			[]string{"method", "status"},
		),
		relativeError: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      MetricRelativeError,
				Help:      "Relative error of an estimate against the exact geometric mean.",
				Buckets:   relativeErrorBuckets,
			},
			[]string{"method"},
		),

		// Practice metrics.
		sessionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      MetricSessionDuration,
				Help:      "Time a user took to answer a practice problem.",
				Buckets:   []float64{5, 10, 20, 30, 45, 60, 90, 120, 180, 300},
			},
			[]string{"method"},
		),
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      MetricEvaluations,
				Help:      "Total number of practice answers by evaluation outcome.",
			},
			[]string{"method", "evaluation"},
		),

		// General metrics for everything else.
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Execution time of miscellaneous operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "method"},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of miscellaneous events.",
			},
			[]string{"event", "method"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "system_state",
				Help:      "Current system state values.",
			},
			[]string{"metric", "method"},
		),
	}
}

// methodLabel returns the method label, or "unknown" when it is absent.
func methodLabel(labels map[string]string) string {
	if m := labels["method"]; m != "" {
		return m
	}
	return "unknown"
}

// labelOr returns labels[key], or "unknown" when it is absent.
func labelOr(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram. Estimation latency goes to
// its own histogram with a status label; other operations share
// operation_duration_seconds.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	method := methodLabel(labels)

	if operation == MetricEstimationLatency {
		pm.estimationLatency.WithLabelValues(method, labelOr(labels, "status")).Observe(duration.Seconds())
		return
	}
	pm.operationLatency.WithLabelValues(operation, method).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	method := methodLabel(labels)

	switch metric {
	case MetricEstimations:
		pm.estimations.WithLabelValues(method, labelOr(labels, "status")).Add(value)
	case MetricEvaluations:
		pm.evaluations.WithLabelValues(method, labelOr(labels, "evaluation")).Add(value)
	default:
		pm.events.WithLabelValues(metric, method).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, methodLabel(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in the histogram registered for metric. Unknown histograms are
// recorded as operation durations in seconds.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	method := methodLabel(labels)

	switch metric {
	case MetricEstimationLatency:
		pm.estimationLatency.WithLabelValues(method, labelOr(labels, "status")).Observe(value)
	case MetricRelativeError:
		pm.relativeError.WithLabelValues(method).Observe(value)
	case MetricSessionDuration:
		pm.sessionDuration.WithLabelValues(method).Observe(value)
	default:
		pm.operationLatency.WithLabelValues(metric, method).Observe(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
