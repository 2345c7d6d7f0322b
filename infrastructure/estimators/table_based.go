package estimators

import (
	"math"
	"slices"
	"strconv"

	"github.com/ahrav/go-geomean/internal/ports"
)

var (
	_ ports.StepByStepEstimator[*TableBasedSteps] = (*TableBased)(nil)
	_ ports.Steps                                 = (*TableBasedSteps)(nil)
)

// QuantizedLog is an integer stand-in for a base-10 logarithm. The tens
// carry the order of magnitude and the last digit selects an entry of the
// multiplier table, so 36 reads as 3.6 and stands for 4 × 10^3.
//
// Keeping it an integer type keeps floating point out of the averaging step.
type QuantizedLog int

// Magnitude returns the order of magnitude, floor(log10 x).
func (q QuantizedLog) Magnitude() int { return int(q) / 10 }

// Index returns the multiplier table index.
func (q QuantizedLog) Index() int { return int(q) % 10 }

// String renders q in decimal log notation, e.g. 36 as "3.6".
func (q QuantizedLog) String() string {
	return strconv.Itoa(q.Magnitude()) + "." + strconv.Itoa(q.Index())
}

// tableMultipliers approximates 10^(i/10) for i in [0, 9].
var tableMultipliers = [10]float64{1.0, 1.25, 1.6, 2.0, 2.5, 3.0, 4.0, 5.0, 6.0, 8.0}

// tableHundredths mirrors tableMultipliers in hundredths so comparisons and
// reconstruction can run on integers.
var tableHundredths = [10]uint64{100, 125, 160, 200, 250, 300, 400, 500, 600, 800}

// maxExactInteger is the bound below which every integer is exactly
// representable as a float64.
const maxExactInteger = 1 << 53

// ToQuantizedLog converts a finite value >= 1 to its quantized log, rounding
// down to the largest table entry not above the value's leading digits.
// Callers must validate the value first.
func ToQuantizedLog(value float64) QuantizedLog {
	if value < maxExactInteger && value == math.Trunc(value) {
		return integerQuantizedLog(uint64(value))
	}
	return floatQuantizedLog(value)
}

// integerQuantizedLog is the exact path for integral inputs: the mantissa
// test n/10^m >= h/100 is evaluated as n*100 >= h*10^m.
func integerQuantizedLog(n uint64) QuantizedLog {
	magnitude := 0
	for magnitude+1 < len(pow10) && n >= pow10[magnitude+1] {
		magnitude++
	}

	index := 0
	for i := len(tableHundredths) - 1; i > 0; i-- {
		if n*100 >= tableHundredths[i]*pow10[magnitude] {
			index = i
			break
		}
	}
	return QuantizedLog(magnitude*10 + index)
}

// floatQuantizedLog handles fractional and very large inputs. Each table
// boundary is formed as tableMultipliers[i] × 10^m, the same product
// FromQuantizedLog returns, so reconstructed values always land back in
// their own cell.
func floatQuantizedLog(value float64) QuantizedLog {
	magnitude := decimalExponent(value)
	scale := math.Pow10(magnitude)

	index := 0
	for i := len(tableMultipliers) - 1; i > 0; i-- {
		if value >= tableMultipliers[i]*scale {
			index = i
			break
		}
	}
	return QuantizedLog(magnitude*10 + index)
}

// AverageQuantizedLog divides sum by count, rounding up whenever the
// division truncates. The forward conversion rounds down, so rounding the
// average up keeps the two biases from compounding.
// It panics if count is not positive.
func AverageQuantizedLog(sum QuantizedLog, count int) QuantizedLog {
	if count <= 0 {
		panic("estimators: average of zero quantized logs")
	}
	avg := int(sum) / count
	if int(sum)%count != 0 {
		avg++
	}
	return QuantizedLog(avg)
}

// FromQuantizedLog reconstructs the number a quantized log stands for:
// table[index] × 10^magnitude. The product is formed in integers whenever
// it fits, so equal inputs give bit-identical results on every platform.
// Above about 1.6e308 the result is +Inf.
// It panics if q is negative; ToQuantizedLog never produces one.
func FromQuantizedLog(q QuantizedLog) float64 {
	magnitude, h := q.Magnitude(), tableHundredths[q.Index()]
	switch {
	case magnitude < 2:
		return float64(h*pow10[magnitude]) / 100
	case magnitude-2 < len(pow10) && h <= math.MaxUint64/pow10[magnitude-2]:
		return float64(h * pow10[magnitude-2])
	default:
		return tableMultipliers[q.Index()] * math.Pow10(magnitude)
	}
}

// TableBasedSteps records every intermediate value of one table-based
// estimation. It is created once per call and not mutated afterwards.
type TableBasedSteps struct {
	// Inputs are the values as supplied by the caller.
	Inputs []float64 `json:"inputs"`

	// Logs holds the quantized log of each input, in input order.
	Logs []QuantizedLog `json:"logs"`

	// Sum is the integer sum of Logs.
	Sum QuantizedLog `json:"sum"`

	// Average is Sum divided by len(Logs), rounded up on truncation.
	Average QuantizedLog `json:"average"`

	// Result is the number Average converts back to.
	Result float64 `json:"result"`
}

// FinalAnswer returns the reconstructed estimate.
func (s *TableBasedSteps) FinalAnswer() float64 { return s.Result }

// Truncated reports whether the average was rounded up. An empty trace
// was never averaged and reports false.
func (s *TableBasedSteps) Truncated() bool {
	if len(s.Logs) == 0 {
		return false
	}
	return int(s.Sum)%len(s.Logs) != 0
}

// TableBased estimates a geometric mean with a ten-entry logarithm table:
// each value becomes a one-decimal logarithm, the logarithms are averaged
// as integers, and the average is converted back through the table.
//
// The method is deliberately lossy. Forward conversion rounds down and the
// average rounds up so the worst-case relative error stays bounded.
//
// Concurrency: TableBased is stateless and safe for concurrent use.
type TableBased struct{}

// NewTableBased creates a table-based estimator.
func NewTableBased() *TableBased { return &TableBased{} }

// Name returns "table_based".
func (*TableBased) Name() string { return MethodTableBased }

// EstimateGeometricMean returns the final answer of the step trace.
func (t *TableBased) EstimateGeometricMean(values []float64) (float64, error) {
	return ports.EstimateFromSteps[*TableBasedSteps](t, values)
}

// EstimateGeometricMeanStepByStep validates values and returns the full
// derivation.
//
// Errors (wrapped in *domain.EstimationError):
//   - domain.ErrEmptyInput for an empty slice
//   - domain.ErrNonFiniteValue for NaN or infinite values
//   - domain.ErrNonPositiveValue for values <= 0
//   - domain.ErrValueTooSmall for values below 1.0
func (*TableBased) EstimateGeometricMeanStepByStep(values []float64) (*TableBasedSteps, error) {
	if err := validateInputs(MethodTableBased, values, penAndPaperMinimum); err != nil {
		return nil, err
	}

	logs := make([]QuantizedLog, len(values))
	var sum QuantizedLog
	for i, v := range values {
		logs[i] = ToQuantizedLog(v)
		sum += logs[i]
	}

	average := AverageQuantizedLog(sum, len(logs))

	return &TableBasedSteps{
		Inputs:  slices.Clone(values),
		Logs:    logs,
		Sum:     sum,
		Average: average,
		Result:  FromQuantizedLog(average),
	}, nil
}
