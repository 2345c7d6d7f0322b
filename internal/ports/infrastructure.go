package ports

import (
	"math/rand/v2"
	"time"
)

// Timer abstracts time measurement so practice sessions can be timed
// deterministically in tests. A session calls it exactly twice: Now when
// the problem is shown and Elapsed when the answer is submitted.
type Timer interface {
	// Now returns the current instant. Only differences between instants
	// returned by the same Timer are meaningful.
	Now() time.Time

	// Elapsed returns the duration between start and now.
	Elapsed(start time.Time) time.Duration
}

// GuessGenerator produces realistic team guesses for a practice problem.
// The session consumes only its output; how guesses are rounded is the
// generator's concern.
type GuessGenerator interface {
	// Guesses returns n positive guesses clustered log-normally around
	// correct with spread logStdDev (natural-log units).
	// It returns an error if correct is zero or logStdDev is invalid.
	Guesses(rng *rand.Rand, correct uint64, logStdDev float64, n int) ([]uint64, error)
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like evaluations and failures.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram.
	// This is useful for tracking distributions like relative errors.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
