package estimators

import (
	"errors"
	"time"

	"github.com/ahrav/go-geomean/internal/domain"
	"github.com/ahrav/go-geomean/internal/ports"
)

// instrumentedEstimator records call latency and outcome for every
// estimate it forwards.
type instrumentedEstimator struct {
	next      ports.Estimator
	collector ports.MetricsCollector
}

// Instrument wraps next so every call is reported to collector. A nil
// collector returns next unchanged.
func Instrument(next ports.Estimator, collector ports.MetricsCollector) ports.Estimator {
	if collector == nil {
		return next
	}
	return &instrumentedEstimator{next: next, collector: collector}
}

// Name returns the wrapped method's name.
func (m *instrumentedEstimator) Name() string { return m.next.Name() }

// EstimateGeometricMean forwards to the wrapped method and records
// estimation_latency_seconds and estimations_total{status}.
func (m *instrumentedEstimator) EstimateGeometricMean(values []float64) (float64, error) {
	start := time.Now()
	v, err := m.next.EstimateGeometricMean(values)

	labels := map[string]string{
		"method": m.next.Name(),
		"status": statusOf(err),
	}
	m.collector.RecordLatency("estimation_latency_seconds", time.Since(start), labels)
	m.collector.RecordCounter("estimations_total", 1, labels)

	return v, err
}

// statusOf maps an estimation error to a low-cardinality label value.
func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, domain.ErrNonPositiveValue):
		return "non_positive"
	case errors.Is(err, domain.ErrValueTooSmall):
		return "too_small"
	case errors.Is(err, domain.ErrNonFiniteValue):
		return "non_finite"
	default:
		return "error"
	}
}
