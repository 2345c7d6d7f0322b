package testutils

import (
	"fmt"
	"math/rand/v2"

	"github.com/ahrav/go-geomean/internal/domain"
	"github.com/ahrav/go-geomean/internal/ports"
)

var (
	_ ports.StepByStepEstimator[*MeanSteps] = (*MeanEstimator)(nil)
	_ ports.GuessGenerator                  = (*FixedGuesses)(nil)
)

// MeanSteps is a minimal step trace that records the arithmetic mean.
type MeanSteps struct {
	Count int
	Mean  float64
}

// String renders the trace.
func (s *MeanSteps) String() string { return fmt.Sprintf("mean of %d values = %g\n", s.Count, s.Mean) }

// FinalAnswer returns Mean.
func (s *MeanSteps) FinalAnswer() float64 { return s.Mean }

// MeanEstimator is a step-by-step estimator that answers with the
// arithmetic mean. Setting Err makes every call fail with that error, which
// lets tests drive a session into its estimation-failure path.
type MeanEstimator struct {
	Err   error
	Calls int
}

// Name returns "mean".
func (*MeanEstimator) Name() string { return "mean" }

// EstimateGeometricMean returns the arithmetic mean of values.
func (m *MeanEstimator) EstimateGeometricMean(values []float64) (float64, error) {
	return ports.EstimateFromSteps[*MeanSteps](m, values)
}

// EstimateGeometricMeanStepByStep returns the arithmetic mean trace.
func (m *MeanEstimator) EstimateGeometricMeanStepByStep(values []float64) (*MeanSteps, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if len(values) == 0 {
		return nil, domain.NewEstimationError("mean", -1, 0, domain.ErrEmptyInput)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return &MeanSteps{Count: len(values), Mean: sum / float64(len(values))}, nil
}

// FixedGuesses is a ports.GuessGenerator that returns a fixed list,
// truncated or cycled to the requested count.
type FixedGuesses struct {
	Values []uint64
	Err    error
}

// Guesses returns n values from Values in order.
func (f *FixedGuesses) Guesses(_ *rand.Rand, _ uint64, _ float64, n int) ([]uint64, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = f.Values[i%len(f.Values)]
	}
	return out, nil
}
