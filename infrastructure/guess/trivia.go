// Package guess generates realistic team guesses for practice problems.
package guess

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/ahrav/go-geomean/internal/domain"
	"github.com/ahrav/go-geomean/internal/ports"
)

var _ ports.GuessGenerator = (*Trivia)(nil)

// ErrZeroCorrectAnswer indicates a distribution centred on zero, which has
// no logarithm.
var ErrZeroCorrectAnswer = errors.New("correct answer must be greater than 0")

// maxLogStdDev bounds the spread so exp never overflows during sampling.
const maxLogStdDev = 50.0

// TriviaGuesses samples guesses log-normally around a correct answer and
// rounds each sample the way people round trivia guesses.
type TriviaGuesses struct {
	correct   uint64
	lnCorrect float64
	logStdDev float64
}

// NewTriviaGuesses validates its parameters and returns a distribution.
// It returns ErrZeroCorrectAnswer for correct == 0 and
// domain.ErrInvalidSpread for a negative, non-finite or oversized spread.
func NewTriviaGuesses(correct uint64, logStdDev float64) (*TriviaGuesses, error) {
	if correct == 0 {
		return nil, ErrZeroCorrectAnswer
	}
	if math.IsNaN(logStdDev) || math.IsInf(logStdDev, 0) || logStdDev < 0 || logStdDev > maxLogStdDev {
		return nil, domain.ErrInvalidSpread
	}
	return &TriviaGuesses{
		correct:   correct,
		lnCorrect: math.Log(float64(correct)),
		logStdDev: logStdDev,
	}, nil
}

// Sample draws one rounded guess. With zero spread every sample is the
// rounded correct answer.
func (d *TriviaGuesses) Sample(rng *rand.Rand) uint64 {
	if d.logStdDev == 0 {
		return RoundTrivia(float64(d.correct))
	}
	return RoundTrivia(math.Exp(d.lnCorrect + d.logStdDev*rng.NormFloat64()))
}

// RoundTrivia snaps raw to a number a person would plausibly say. The step
// size depends on the leading digit d at magnitude m:
//
//	d = 1     steps of 0.05 × 10^m  (1200, 1250, 1300)
//	d = 2..4  steps of 0.1 × 10^m   (2100, 2200)
//	d = 5..9  steps of 0.5 × 10^m   (5000, 5500)
//
// Of the two bracketing candidates the one closer in log space wins, ties
// going to the lower. Values at or below 1 become 1 and values beyond the
// uint64 range saturate.
func RoundTrivia(raw float64) uint64 {
	if math.IsNaN(raw) || raw <= 1 {
		return 1
	}
	if raw >= math.MaxUint64 {
		return math.MaxUint64
	}

	magnitude := int(math.Floor(math.Log10(raw)))
	if magnitude > 18 {
		return math.MaxUint64
	}
	power := uint64(1)
	for range magnitude {
		power *= 10
	}
	for magnitude > 0 && float64(power) > raw {
		power /= 10
		magnitude--
	}
	for magnitude < 18 && float64(power*10) <= raw {
		power *= 10
		magnitude++
	}

	leading := uint64(raw / float64(power))
	leading = min(max(leading, 1), 9)

	var step uint64
	switch {
	case leading == 1:
		step = power / 20
	case leading <= 4:
		step = power / 10
	default:
		step = power / 2
	}

	low, high := bracket(raw, leading*power, step)
	return closerInLogSpace(raw, low, high)
}

// bracket returns the candidates base+k·step and base+(k+1)·step that
// surround target, saturating at the uint64 maximum.
func bracket(target float64, base, step uint64) (uint64, uint64) {
	if step == 0 {
		return base, base
	}

	var k uint64
	if offset := target - float64(base); offset > 0 {
		k = uint64(offset / float64(step))
	}

	low := saturatingAdd(base, saturatingMul(k, step))
	high := saturatingAdd(base, saturatingMul(k+1, step))
	return low, high
}

func closerInLogSpace(target float64, low, high uint64) uint64 {
	lnTarget := math.Log(target)
	if math.Abs(lnTarget-math.Log(float64(low))) <= math.Abs(lnTarget-math.Log(float64(high))) {
		return low
	}
	return high
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func saturatingMul(a, b uint64) uint64 {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64
	}
	return a * b
}

// Trivia implements ports.GuessGenerator on top of TriviaGuesses.
type Trivia struct{}

// NewTrivia creates a trivia guess generator.
func NewTrivia() *Trivia { return &Trivia{} }

// Guesses returns n samples from a TriviaGuesses distribution centred on correct.
func (*Trivia) Guesses(rng *rand.Rand, correct uint64, logStdDev float64, n int) ([]uint64, error) {
	d, err := NewTriviaGuesses(correct, logStdDev)
	if err != nil {
		return nil, err
	}

	guesses := make([]uint64, n)
	for i := range guesses {
		guesses[i] = d.Sample(rng)
	}
	return guesses, nil
}
