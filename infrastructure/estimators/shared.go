// Package estimators provides geometric mean estimation methods that
// implement the ports.Estimator contract: the exact calculator, the
// table-based pen-and-paper approximation and the log-linear method.
package estimators

import (
	"math"

	"github.com/ahrav/go-geomean/internal/domain"
)

// Method names. They double as registry keys and metrics labels.
const (
	MethodExact      = "exact"
	MethodTableBased = "table_based"
	MethodLogLinear  = "log_linear"
)

// pow10 holds every power of ten representable in a uint64.
var pow10 = [20]uint64{
	1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000,
	1_000_000_000, 10_000_000_000, 100_000_000_000, 1_000_000_000_000,
	10_000_000_000_000, 100_000_000_000_000, 1_000_000_000_000_000,
	10_000_000_000_000_000, 100_000_000_000_000_000, 1_000_000_000_000_000_000,
	10_000_000_000_000_000_000,
}

// decimalExponent returns floor(log10(v)) for finite v >= 1.
// math.Log10 can land a hair below an exact power of ten, so the estimate is
// corrected against exact powers.
func decimalExponent(v float64) int {
	e := int(math.Floor(math.Log10(v)))
	for e > 0 && math.Pow10(e) > v {
		e--
	}
	for math.Pow10(e+1) <= v {
		e++
	}
	return e
}

// checkValue returns the estimation sentinel for v, or nil if v is usable.
// minimum is the smallest accepted value; zero means any positive value.
func checkValue(v, minimum float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return domain.ErrNonFiniteValue
	case v <= 0:
		return domain.ErrNonPositiveValue
	case v < minimum:
		return domain.ErrValueTooSmall
	}
	return nil
}

// validateInputs checks the whole input before the caller converts
// anything, so a failed call has no partial effect. The first offending
// element in input order determines the error.
func validateInputs(method string, values []float64, minimum float64) error {
	if len(values) == 0 {
		return domain.NewEstimationError(method, -1, 0, domain.ErrEmptyInput)
	}
	for i, v := range values {
		if err := checkValue(v, minimum); err != nil {
			return domain.NewEstimationError(method, i, v, err)
		}
	}
	return nil
}

// penAndPaperMinimum is the smallest input the table-based and log-linear
// methods accept.
const penAndPaperMinimum = 1.0
