// Package domain contains the dependency-free types of a practice round:
// results, answer evaluations and the errors estimation can report.
package domain

import "math"

// AnswerEvaluation classifies a user's answer to a practice problem.
type AnswerEvaluation string

// Supported evaluation outcomes.
const (
	// Correct means the user reproduced the estimation method's own answer,
	// either its floor or its ceiling.
	Correct AnswerEvaluation = "correct"

	// Excellent means the user landed no farther from the exact geometric
	// mean than the estimation method did.
	Excellent AnswerEvaluation = "excellent"

	// Incorrect means neither of the above.
	Incorrect AnswerEvaluation = "incorrect"
)

// integerSnapTolerance is the relative distance under which an estimate is
// treated as the nearby integer, so 100.000000002 scores as 100 rather than
// as the pair 100/101.
const integerSnapTolerance = 1e-9

// String returns the lower-case name of the outcome.
func (e AnswerEvaluation) String() string { return string(e) }

// EvaluateAnswer classifies userAnswer against the exact geometric mean and
// the estimate produced by the method under practice.
//
// The Correct check runs first: a user who reproduces the method's answer is
// Correct even when that answer also falls inside the excellent range.
// The excellent range is [exact-margin, exact+margin], inclusive at both
// ends, where margin is the method's own absolute error.
func EvaluateAnswer(userAnswer uint64, exact, approx float64) AnswerEvaluation {
	user := float64(userAnswer)

	lo, hi := math.Floor(approx), math.Ceil(approx)
	if nearest := math.Round(approx); math.Abs(approx-nearest) <= integerSnapTolerance*math.Max(1, math.Abs(approx)) {
		lo, hi = nearest, nearest
	}
	if user == lo || user == hi {
		return Correct
	}

	margin := math.Abs(approx - exact)
	if user >= exact-margin && user <= exact+margin {
		return Excellent
	}

	return Incorrect
}
