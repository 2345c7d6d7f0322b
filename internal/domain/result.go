package domain

import (
	"math"
	"time"
)

// Result is the outcome of one practice round. It is produced once by
// ActiveSession.SubmitAnswer and never mutated afterwards.
//
// S is the step trace type of the estimation method the session was bound
// to, so renderers can show the derivation without a type assertion.
type Result[S any] struct {
	// ID uniquely identifies this round (a UUID).
	ID string `json:"id"`

	// UserAnswer is the whole number the user submitted.
	UserAnswer uint64 `json:"user_answer"`

	// CorrectAnswer is the hidden value the guesses were drawn around.
	CorrectAnswer uint64 `json:"correct_answer"`

	// Guesses are the team guesses shown to the user.
	Guesses []uint64 `json:"guesses"`

	// ExactGeometricMean is the true geometric mean of Guesses.
	ExactGeometricMean float64 `json:"exact_geometric_mean"`

	// Estimate is the estimation method's answer for Guesses.
	Estimate float64 `json:"estimate"`

	// Steps is the method's step trace for Guesses. It is omitted from JSON
	// because its rendering, not its encoding, is what users read.
	Steps S `json:"-"`

	// Duration is the time between showing the problem and the submission.
	Duration time.Duration `json:"duration"`

	// Evaluation classifies UserAnswer.
	Evaluation AnswerEvaluation `json:"evaluation"`

	// Timestamp records when the answer was submitted.
	Timestamp time.Time `json:"timestamp"`
}

// EstimateError returns the relative error of the estimation method against
// the exact geometric mean.
func (r Result[S]) EstimateError() float64 {
	if r.ExactGeometricMean == 0 {
		return 0
	}
	return math.Abs(r.Estimate-r.ExactGeometricMean) / r.ExactGeometricMean
}
