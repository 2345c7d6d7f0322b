// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import "fmt"

// Estimator is the minimal contract every geometric mean estimation method
// satisfies. A bulk accuracy harness needs nothing more than this.
type Estimator interface {
	// Name returns a unique identifier for this method.
	// The name is used for logging, metrics labels, and the registry.
	Name() string

	// EstimateGeometricMean returns the method's estimate for values.
	// It fails with one of the domain estimation errors, wrapped in a
	// *domain.EstimationError, and never returns a partial result.
	EstimateGeometricMean(values []float64) (float64, error)
}

// Steps is a renderable trace of how a method reached its estimate.
// String must be a pure function of the trace's fields so any renderer
// reproduces identical text for identical data.
type Steps interface {
	fmt.Stringer

	// FinalAnswer returns the estimate the trace ends in.
	FinalAnswer() float64
}

// StepByStepEstimator is the optional richer capability: the method also
// exposes the full derivation of its estimate.
//
// Methods that implement it should derive EstimateGeometricMean from
// EstimateGeometricMeanStepByStep (see EstimateFromSteps) so the two forms
// cannot disagree.
type StepByStepEstimator[S Steps] interface {
	Estimator

	// EstimateGeometricMeanStepByStep returns the step trace for values.
	// It validates input exactly as EstimateGeometricMean does.
	EstimateGeometricMeanStepByStep(values []float64) (S, error)
}

// EstimateFromSteps derives the bare estimate from a step-by-step
// estimator by taking the final answer of its trace.
//
// Example:
//
//	func (e *TableBased) EstimateGeometricMean(values []float64) (float64, error) {
//	    return ports.EstimateFromSteps[*TableBasedSteps](e, values)
//	}
func EstimateFromSteps[S Steps](e StepByStepEstimator[S], values []float64) (float64, error) {
	steps, err := e.EstimateGeometricMeanStepByStep(values)
	if err != nil {
		return 0, err
	}
	return steps.FinalAnswer(), nil
}
