// Package application orchestrates practice sessions, configuration, the
// estimator registry and the accuracy harness.
package application

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-geomean/infrastructure/estimators"
	"github.com/ahrav/go-geomean/internal/domain"
	"github.com/ahrav/go-geomean/internal/ports"
)

// sessionDeps are the collaborators a practice session is bound to for
// its whole life.
type sessionDeps[S ports.Steps] struct {
	estimator ports.StepByStepEstimator[S]
	timer     ports.Timer
	rng       *rand.Rand
	generator ports.GuessGenerator
	metrics   ports.MetricsCollector
	logger    *slog.Logger
}

// SessionOption configures optional session collaborators.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	metrics ports.MetricsCollector
	logger  *slog.Logger
}

// WithSessionMetrics reports session duration and evaluations to m.
func WithSessionMetrics(m ports.MetricsCollector) SessionOption {
	return func(o *sessionOptions) { o.metrics = m }
}

// WithSessionLogger sets the logger. The default is slog.Default().
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(o *sessionOptions) { o.logger = l }
}

// ReadySession is a practice session that has not shown a problem yet.
// Its only transition is Start, which yields an ActiveSession.
//
// A ReadySession is single use: after a successful Start every further
// call returns domain.ErrSessionStarted. A Start that fails validation
// leaves the session ready.
//
// ReadySession is not safe for concurrent use.
type ReadySession[S ports.Steps] struct {
	deps    sessionDeps[S]
	started bool
}

// NewReadySession binds a session to one estimation method, one timer, one
// random source and one guess generator.
func NewReadySession[S ports.Steps](
	estimator ports.StepByStepEstimator[S],
	timer ports.Timer,
	rng *rand.Rand,
	generator ports.GuessGenerator,
	opts ...SessionOption,
) *ReadySession[S] {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &ReadySession[S]{
		deps: sessionDeps[S]{
			estimator: estimator,
			timer:     timer,
			rng:       rng,
			generator: generator,
			metrics:   o.metrics,
			logger:    o.logger.With("method", estimator.Name()),
		},
	}
}

// Start generates a problem and begins timing it.
//
// It draws a correct answer uniformly in log space of
// [cfg.MinAnswer, cfg.MaxAnswer), asks the guess generator for
// cfg.TeamSize guesses around it, reads the timer and returns the guesses
// with the ActiveSession that will score the answer.
//
// Errors: domain.ErrZeroTeamSize, domain.ErrInvalidAnswerRange,
// domain.ErrInvalidSpread, domain.ErrSessionStarted, or a wrapped guess
// generator error.
func (r *ReadySession[S]) Start(cfg PracticeConfig) (*ActiveSession[S], []uint64, error) {
	if r.started {
		return nil, nil, domain.ErrSessionStarted
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	correct := drawCorrectAnswer(r.deps.rng, cfg.MinAnswer, cfg.MaxAnswer)

	guesses, err := r.deps.generator.Guesses(r.deps.rng, correct, cfg.LogStdDev, cfg.TeamSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate guesses: %w", err)
	}

	start := r.deps.timer.Now()
	r.started = true

	r.deps.logger.Debug("practice problem started",
		"team_size", cfg.TeamSize,
		"log_std_dev", cfg.LogStdDev,
	)

	active := &ActiveSession[S]{
		deps:    r.deps,
		correct: correct,
		guesses: slices.Clone(guesses),
		start:   start,
	}
	return active, guesses, nil
}

// drawCorrectAnswer picks a value log-uniformly in [lo, hi). The result is
// clamped into the range since exp(ln x) can land a hair outside it.
func drawCorrectAnswer(rng *rand.Rand, lo, hi uint64) uint64 {
	lnLo, lnHi := math.Log(float64(lo)), math.Log(float64(hi))
	v := math.Exp(lnLo + rng.Float64()*(lnHi-lnLo))

	switch {
	case v < float64(lo):
		return lo
	case v >= float64(hi):
		return hi - 1
	}
	return max(uint64(v), lo)
}

// ActiveSession is a practice session whose problem is on screen and whose
// timer is running. Its only transition is SubmitAnswer.
//
// ActiveSession is single use: a second SubmitAnswer returns
// domain.ErrSessionConsumed.
type ActiveSession[S ports.Steps] struct {
	deps     sessionDeps[S]
	correct  uint64
	guesses  []uint64
	start    time.Time
	consumed bool
}

// Guesses returns a copy of the guesses shown to the user.
func (a *ActiveSession[S]) Guesses() []uint64 { return slices.Clone(a.guesses) }

// SubmitAnswer stops the timer and scores answer against the exact
// geometric mean and the bound method's estimate of the guesses.
//
// The guesses were generated by this session, so the estimation method
// rejecting them is a programming error and panics.
func (a *ActiveSession[S]) SubmitAnswer(answer uint64) (domain.Result[S], error) {
	if a.consumed {
		return domain.Result[S]{}, domain.ErrSessionConsumed
	}
	a.consumed = true

	elapsed := a.deps.timer.Elapsed(a.start)

	values := make([]float64, len(a.guesses))
	for i, g := range a.guesses {
		values[i] = float64(g)
	}

	exact, err := estimators.GeometricMean(values)
	if err != nil {
		panic(fmt.Sprintf("application: exact geometric mean of generated guesses %v: %v", a.guesses, err))
	}
	steps, err := a.deps.estimator.EstimateGeometricMeanStepByStep(values)
	if err != nil {
		panic(fmt.Sprintf("application: %s rejected generated guesses %v: %v",
			a.deps.estimator.Name(), a.guesses, err))
	}
	estimate := steps.FinalAnswer()

	result := domain.Result[S]{
		ID:                 uuid.NewString(),
		UserAnswer:         answer,
		CorrectAnswer:      a.correct,
		Guesses:            slices.Clone(a.guesses),
		ExactGeometricMean: exact,
		Estimate:           estimate,
		Steps:              steps,
		Duration:           elapsed,
		Evaluation:         domain.EvaluateAnswer(answer, exact, estimate),
		Timestamp:          time.Now(),
	}

	a.record(result)
	return result, nil
}

func (a *ActiveSession[S]) record(result domain.Result[S]) {
	a.deps.logger.Info("practice answer evaluated",
		"id", result.ID,
		"evaluation", result.Evaluation,
		"duration", result.Duration,
	)

	if a.deps.metrics == nil {
		return
	}
	method := a.deps.estimator.Name()
	a.deps.metrics.RecordHistogram("practice_session_duration_seconds", result.Duration.Seconds(),
		map[string]string{"method": method})
	a.deps.metrics.RecordCounter("practice_evaluations_total", 1,
		map[string]string{"method": method, "evaluation": result.Evaluation.String()})
}
