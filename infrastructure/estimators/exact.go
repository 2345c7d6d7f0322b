package estimators

import (
	"math"

	"github.com/ahrav/go-geomean/internal/ports"
)

var _ ports.Estimator = (*Exact)(nil)

// GeometricMean returns exp(mean(ln v)) for values. It accepts any finite
// positive values, including those below 1.
func GeometricMean(values []float64) (float64, error) {
	if err := validateInputs(MethodExact, values, 0); err != nil {
		return 0, err
	}

	var logSum float64
	for _, v := range values {
		logSum += math.Log(v)
	}
	return math.Exp(logSum / float64(len(values))), nil
}

// Exact wraps GeometricMean as an Estimator so the accuracy harness can use
// it as a zero-error baseline.
type Exact struct{}

// NewExact creates an exact estimator.
func NewExact() *Exact { return &Exact{} }

// Name returns "exact".
func (*Exact) Name() string { return MethodExact }

// EstimateGeometricMean returns the true geometric mean.
func (*Exact) EstimateGeometricMean(values []float64) (float64, error) {
	return GeometricMean(values)
}
