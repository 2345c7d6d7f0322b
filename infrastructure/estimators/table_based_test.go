package estimators

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-geomean/internal/domain"
)

// randomInputs returns n log-uniform values in [1, 10^maxExp).
func randomInputs(rng *rand.Rand, n int, maxExp float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Pow(10, rng.Float64()*maxExp)
	}
	return values
}

// randomIntegerInputs returns n integral values in [1, 10^maxExp).
func randomIntegerInputs(rng *rand.Rand, n int, maxExp float64) []float64 {
	values := randomInputs(rng, n, maxExp)
	for i, v := range values {
		values[i] = math.Floor(v)
	}
	return values
}

func TestToQuantizedLog(t *testing.T) {
	tests := []struct {
		value float64
		want  QuantizedLog
	}{
		{value: 2000, want: 33},
		{value: 50, want: 17},
		{value: 1_250_000, want: 61},
		{value: 350, want: 25},
		{value: 1400, want: 31},
		{value: 11, want: 10},
		{value: 9001, want: 39},
		{value: 25, want: 14},
		{value: 400, want: 26},
		{value: 3600, want: 35},
		{value: 920, want: 29},
		{value: 740, want: 28},
		{value: 1, want: 0},
		{value: 1000, want: 30},
		{value: 999, want: 29},
		{value: 2.5, want: 4},
		{value: 1.59, want: 1},
		{value: 12.5, want: 11},
		{value: 160.0000001, want: 22},
		{value: 1e17, want: 170},
		{value: 6.5e18, want: 188},
	}

	for _, tt := range tests {
		t.Run(FormatNumber(tt.value), func(t *testing.T) {
			assert.Equal(t, tt.want, ToQuantizedLog(tt.value))
		})
	}
}

func TestFromQuantizedLog(t *testing.T) {
	tests := []struct {
		q    QuantizedLog
		want float64
	}{
		{q: 36, want: 4000},
		{q: 28, want: 600},
		{q: 72, want: 16_000_000},
		{q: 44, want: 25_000},
		{q: 0, want: 1},
		{q: 1, want: 1.25},
		{q: 2, want: 1.6},
		{q: 11, want: 12.5},
		{q: 12, want: 16},
		{q: 31, want: 1250},
		{q: 189, want: 8e18},
		{q: 250, want: 1e25},
	}

	for _, tt := range tests {
		t.Run(tt.q.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, FromQuantizedLog(tt.q))
		})
	}
}

func TestAverageQuantizedLog(t *testing.T) {
	tests := []struct {
		name  string
		sum   QuantizedLog
		count int
		want  QuantizedLog
	}{
		{name: "exact division", sum: 40, count: 2, want: 20},
		{name: "worked example rounds up", sum: 92, count: 3, want: 31},
		{name: "one third rounds up", sum: 70, count: 3, want: 24},
		{name: "two thirds rounds up", sum: 125, count: 3, want: 42},
		{name: "half rounds up", sum: 310, count: 4, want: 78},
		{name: "single value", sum: 27, count: 1, want: 27},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageQuantizedLog(tt.sum, tt.count))
		})
	}

	assert.Panics(t, func() { AverageQuantizedLog(10, 0) })
}

func TestQuantizedLog_String(t *testing.T) {
	assert.Equal(t, "3.6", QuantizedLog(36).String())
	assert.Equal(t, "0.0", QuantizedLog(0).String())
	assert.Equal(t, "12.1", QuantizedLog(121).String())
	assert.Equal(t, 3, QuantizedLog(36).Magnitude())
	assert.Equal(t, 6, QuantizedLog(36).Index())
}

func TestTableMultipliers(t *testing.T) {
	for i, got := range tableMultipliers {
		want := math.Pow(10, float64(i)/10)
		assert.InEpsilon(t, want, got, 0.06, "entry %d should approximate 10^(%d/10)", i, i)
		assert.Equal(t, tableHundredths[i], uint64(got*100), "hundredths mirror of entry %d", i)
		if i > 0 {
			assert.Greater(t, got, tableMultipliers[i-1], "table must be strictly increasing")
		}
	}
}

// TestTableBased_WorkedExample pins the canonical README example. Any change
// to a rounding direction changes this output.
func TestTableBased_WorkedExample(t *testing.T) {
	steps, err := NewTableBased().EstimateGeometricMeanStepByStep([]float64{3600, 920, 740})
	require.NoError(t, err)

	assert.Equal(t, []float64{3600, 920, 740}, steps.Inputs)
	assert.Equal(t, []QuantizedLog{35, 29, 28}, steps.Logs)
	assert.Equal(t, QuantizedLog(92), steps.Sum)
	assert.Equal(t, QuantizedLog(31), steps.Average)
	assert.Equal(t, 1250.0, steps.Result)
	assert.Equal(t, 1250.0, steps.FinalAnswer())
	assert.True(t, steps.Truncated())

	exact, err := GeometricMean([]float64{3600, 920, 740})
	require.NoError(t, err)
	assert.InDelta(t, 1348.26, exact, 0.01)
}

func TestTableBased_Errors(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		wantErr   error
		wantIndex int
	}{
		{name: "empty input", values: []float64{}, wantErr: domain.ErrEmptyInput, wantIndex: -1},
		{name: "nil input", values: nil, wantErr: domain.ErrEmptyInput, wantIndex: -1},
		{name: "negative value", values: []float64{25, -1, 400}, wantErr: domain.ErrNonPositiveValue, wantIndex: 1},
		{name: "zero value", values: []float64{1, 0, 4}, wantErr: domain.ErrNonPositiveValue, wantIndex: 1},
		{name: "sub-unit value", values: []float64{0.5, 2, 4}, wantErr: domain.ErrValueTooSmall, wantIndex: 0},
		{name: "first bad element wins", values: []float64{3, 0.5, -2}, wantErr: domain.ErrValueTooSmall, wantIndex: 1},
		{name: "NaN", values: []float64{3, math.NaN()}, wantErr: domain.ErrNonFiniteValue, wantIndex: 1},
		{name: "infinity", values: []float64{math.Inf(1)}, wantErr: domain.ErrNonFiniteValue, wantIndex: 0},
	}

	estimator := NewTableBased()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := estimator.EstimateGeometricMeanStepByStep(tt.values)
			require.Error(t, err)
			assert.Nil(t, steps, "a failed call must not return a partial trace")
			assert.ErrorIs(t, err, tt.wantErr)

			var estErr *domain.EstimationError
			require.ErrorAs(t, err, &estErr)
			assert.Equal(t, tt.wantIndex, estErr.Index)
			assert.Equal(t, MethodTableBased, estErr.Method)

			_, err = estimator.EstimateGeometricMean(tt.values)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTableBased_ErrorDoesNotTouchInput(t *testing.T) {
	values := []float64{25, -1, 400}
	original := slices.Clone(values)

	_, err := NewTableBased().EstimateGeometricMean(values)
	require.ErrorIs(t, err, domain.ErrNonPositiveValue)
	assert.Equal(t, original, values)
}

func TestTableBased_TraceDoesNotAliasInput(t *testing.T) {
	values := []float64{3600, 920, 740}
	steps, err := NewTableBased().EstimateGeometricMeanStepByStep(values)
	require.NoError(t, err)

	values[0] = 1
	assert.Equal(t, 3600.0, steps.Inputs[0])
}

func TestTableBased_SingleValue(t *testing.T) {
	got, err := NewTableBased().EstimateGeometricMean([]float64{500})
	require.NoError(t, err)
	assert.Equal(t, 500.0, got)
}

func TestTableBased_Name(t *testing.T) {
	assert.Equal(t, "table_based", NewTableBased().Name())
}

// TestQuantizedLog_RoundTripIsFixedPoint checks that reconstructing a
// quantized log and converting it again yields the same value.
func TestQuantizedLog_RoundTripIsFixedPoint(t *testing.T) {
	q := QuantizedLog(0)
	for ; ; q++ {
		v := FromQuantizedLog(q)
		if math.IsInf(v, 1) {
			break
		}
		assert.Equal(t, q, ToQuantizedLog(v), "round trip of %s (%g)", q, v)
	}
	// 1.6e308 is the last cell below the float64 maximum.
	assert.Equal(t, QuantizedLog(3083), q)
}

// TestTableBased_IdempotentRequantization feeds an estimate back in as a
// single input and expects the same table cell.
func TestTableBased_IdempotentRequantization(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	estimator := NewTableBased()

	for range 500 {
		values := randomInputs(rng, 1+rng.IntN(10), 12)

		first, err := estimator.EstimateGeometricMeanStepByStep(values)
		require.NoError(t, err)

		second, err := estimator.EstimateGeometricMeanStepByStep([]float64{first.Result})
		require.NoError(t, err)

		assert.Equal(t, first.Average, second.Average, "inputs %v", values)
		assert.Equal(t, first.Result, second.Result, "inputs %v", values)
	}
}

// TestToQuantizedLog_Monotonic checks that a tenfold input adds exactly one
// order of magnitude and that larger inputs never map to smaller cells.
func TestToQuantizedLog_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))

	for range 1000 {
		x := math.Floor(math.Pow(10, rng.Float64()*12)) + 1
		assert.Equal(t, ToQuantizedLog(x)+10, ToQuantizedLog(x*10), "x=%v", x)

		y := x + math.Floor(rng.Float64()*x)
		assert.LessOrEqual(t, ToQuantizedLog(x), ToQuantizedLog(y), "x=%v y=%v", x, y)
	}

	for _, x := range []float64{1, 1.25, 2.5, 7.9, 8, 9.99} {
		assert.Equal(t, ToQuantizedLog(x)+10, ToQuantizedLog(x*10), "x=%v", x)
	}

	// Large magnitudes take the floating-point path.
	for range 1000 {
		x := math.Pow(10, 12+rng.Float64()*290)
		y := x * (1 + rng.Float64())
		assert.LessOrEqual(t, ToQuantizedLog(x), ToQuantizedLog(y), "x=%v y=%v", x, y)
	}
	for q := QuantizedLog(150); q < 3070; q++ {
		assert.Less(t, ToQuantizedLog(FromQuantizedLog(q)), ToQuantizedLog(FromQuantizedLog(q+1)), "q=%s", q)
		assert.Equal(t, ToQuantizedLog(FromQuantizedLog(q))+10, ToQuantizedLog(FromQuantizedLog(q+10)), "q=%s", q)
	}
}

func TestToQuantizedLog_LargeMagnitudes(t *testing.T) {
	tests := []struct {
		value float64
		want  QuantizedLog
	}{
		{1.25e24, 241},
		{2.5e24, 244},
		{1.25e34, 341},
		{3e39, 395},
		{1.2e24, 240},
		{1.5e300, 3001},
		{9.9e307, 3079},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToQuantizedLog(tt.value), "value %g", tt.value)
	}
}

// TestTableBased_TraceAgreesWithBareAnswer checks that the two capability
// forms never disagree.
func TestTableBased_TraceAgreesWithBareAnswer(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 9))
	estimator := NewTableBased()

	for range 500 {
		values := randomInputs(rng, 1+rng.IntN(10), 15)

		bare, err := estimator.EstimateGeometricMean(values)
		require.NoError(t, err)

		steps, err := estimator.EstimateGeometricMeanStepByStep(values)
		require.NoError(t, err)

		assert.Equal(t, steps.FinalAnswer(), bare)
	}
}

func TestTableBased_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 13))
	estimator := NewTableBased()

	for range 500 {
		values := randomIntegerInputs(rng, 2+rng.IntN(9), 15)

		got, err := estimator.EstimateGeometricMean(values)
		require.NoError(t, err)

		reversed := slices.Clone(values)
		slices.Reverse(reversed)
		gotReversed, err := estimator.EstimateGeometricMean(reversed)
		require.NoError(t, err)
		assert.Equal(t, got, gotReversed, "order must not matter: %v", values)

		exact, err := GeometricMean(values)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, exact/10, "inputs %v", values)
		assert.LessOrEqual(t, got, exact*10, "inputs %v", values)

		assert.GreaterOrEqual(t, got, slices.Min(values)/10)
		assert.LessOrEqual(t, got, slices.Max(values)*10)
	}
}

func TestTableBasedSteps_String(t *testing.T) {
	t.Run("worked example", func(t *testing.T) {
		steps, err := NewTableBased().EstimateGeometricMeanStepByStep([]float64{3600, 920, 740})
		require.NoError(t, err)

		want := "Convert each guess to a table logarithm:\n" +
			"  3,600 → 3.5\n" +
			"  920 → 2.9\n" +
			"  740 → 2.8\n" +
			"\n" +
			"Average the logarithms:\n" +
			"  (3.5 + 2.9 + 2.8) ÷ 3 = 9.2 ÷ 3 = 3.07, rounded up to 3.1\n" +
			"\n" +
			"Convert back:\n" +
			"  3.1 → 1,250\n"
		assert.Equal(t, want, steps.String())
	})

	t.Run("exact division", func(t *testing.T) {
		steps, err := NewTableBased().EstimateGeometricMeanStepByStep([]float64{25, 400})
		require.NoError(t, err)

		out := steps.String()
		assert.Contains(t, out, "25 → 1.4")
		assert.Contains(t, out, "400 → 2.6")
		assert.Contains(t, out, "(1.4 + 2.6) ÷ 2 = 4.0 ÷ 2 = 2.0\n")
		assert.Contains(t, out, "2.0 → 100\n")
		assert.NotContains(t, out, "rounded up")
	})

	t.Run("rendering is a function of the fields", func(t *testing.T) {
		steps := &TableBasedSteps{
			Inputs:  []float64{2.4, 12.5},
			Logs:    []QuantizedLog{3, 11},
			Sum:     14,
			Average: 7,
			Result:  5,
		}
		assert.Equal(t, steps.String(), steps.String())
		assert.Contains(t, steps.String(), "  2 → 0.3\n  13 → 1.1\n")
		assert.Contains(t, steps.String(), "0.7 → 5\n")
	})

	t.Run("zero value", func(t *testing.T) {
		var steps TableBasedSteps
		assert.False(t, steps.Truncated())
		assert.NotPanics(t, func() { _ = steps.String() })
	})
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "123", FormatNumber(123))
	assert.Equal(t, "1,234", FormatNumber(1234))
	assert.Equal(t, "1,234,567", FormatNumber(1_234_567))
	assert.Equal(t, "1,000,000,000", FormatNumber(1e9))
	assert.Equal(t, "1.25", FormatNumber(1.25))
	assert.Equal(t, "12.5", FormatNumber(12.5))
	assert.Equal(t, "12,345", FormatWhole(12345))
}
