package estimators

import (
	"math"

	"github.com/ahrav/go-geomean/internal/ports"
)

var _ ports.Estimator = (*LogLinear)(nil)

// minLogLinearFraction is the smallest fractional part the back-conversion
// uses; averages just above a whole number would otherwise collapse to zero.
const minLogLinearFraction = 0.1

// toLogLinear writes v as digit_count.digits, e.g. 2847 → 4.2847 and
// 70 → 2.7.
func toLogLinear(v float64) float64 {
	digits := decimalExponent(v) + 1
	return float64(digits) + v/math.Pow10(digits)
}

// fromLogLinear reverses toLogLinear: 3.75 → 750, 4.1 → 1000.
func fromLogLinear(l float64) float64 {
	digits := math.Floor(l)
	fraction := l - digits
	if fraction < minLogLinearFraction {
		fraction = minLogLinearFraction
	}
	return fraction * math.Pow10(int(digits))
}

// LogLinear is a simpler pen-and-paper method: each value is written as its
// digit count followed by its digits, those numbers are averaged, and the
// average is read back the same way.
//
// LogLinear offers no step trace, so it computes its estimate directly.
//
// Concurrency: LogLinear is stateless and safe for concurrent use.
type LogLinear struct{}

// NewLogLinear creates a log-linear estimator.
func NewLogLinear() *LogLinear { return &LogLinear{} }

// Name returns "log_linear".
func (*LogLinear) Name() string { return MethodLogLinear }

// EstimateGeometricMean returns the log-linear estimate for values. It
// validates input exactly as the table-based method does.
func (*LogLinear) EstimateGeometricMean(values []float64) (float64, error) {
	if err := validateInputs(MethodLogLinear, values, penAndPaperMinimum); err != nil {
		return 0, err
	}

	var sum float64
	for _, v := range values {
		sum += toLogLinear(v)
	}
	return fromLogLinear(sum / float64(len(values))), nil
}
