package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-geomean/infrastructure/estimators"
	"github.com/ahrav/go-geomean/internal/ports"
)

// maxCaseSize is the largest number of values in a generated case.
const maxCaseSize = 10

// GenerateCases returns n random cases of 1 to 10 values each, drawn
// log-uniformly from [minValue, maxValue).
func GenerateCases(rng *rand.Rand, minValue, maxValue float64, n int) ([][]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("case count cannot be negative: %d", n)
	}
	if !(minValue > 0) || math.IsInf(maxValue, 0) || !(maxValue > minValue) {
		return nil, fmt.Errorf("invalid case range [%g, %g)", minValue, maxValue)
	}

	lnMin, lnMax := math.Log(minValue), math.Log(maxValue)
	cases := make([][]float64, n)
	for i := range cases {
		values := make([]float64, 1+rng.IntN(maxCaseSize))
		for j := range values {
			values[j] = math.Exp(lnMin + rng.Float64()*(lnMax-lnMin))
		}
		cases[i] = values
	}
	return cases, nil
}

// Report summarizes one method's accuracy over a harness run.
type Report struct {
	// Method is the estimator's name.
	Method string `json:"method"`
	// MeanAbsoluteRelativeError is the mean of |estimate-exact|/exact over
	// the cases the method accepted.
	MeanAbsoluteRelativeError float64 `json:"mean_absolute_relative_error"`
	// MaxRelativeError is the worst single-case relative error.
	MaxRelativeError float64 `json:"max_relative_error"`
	// Tests is the number of cases the method accepted.
	Tests int `json:"tests"`
	// Skipped is the number of cases the method rejected.
	Skipped int `json:"skipped"`
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithHarnessMetrics records each relative error in m.
func WithHarnessMetrics(m ports.MetricsCollector) HarnessOption {
	return func(h *Harness) { h.metrics = m }
}

// WithHarnessLogger sets the logger. The default is slog.Default().
func WithHarnessLogger(l *slog.Logger) HarnessOption {
	return func(h *Harness) { h.logger = l }
}

// WithConcurrency bounds how many methods are evaluated at once.
func WithConcurrency(n int) HarnessOption {
	return func(h *Harness) {
		if n > 0 {
			h.concurrency = n
		}
	}
}

// WithProgressInterval sets how often each method logs its progress.
func WithProgressInterval(d time.Duration) HarnessOption {
	return func(h *Harness) { h.progressInterval = d }
}

// Harness measures estimation methods against the exact geometric mean.
// All methods see the same cases, so their reports are comparable.
type Harness struct {
	tracer           trace.Tracer
	metrics          ports.MetricsCollector
	logger           *slog.Logger
	concurrency      int
	progressInterval time.Duration
}

// NewHarness creates a harness.
func NewHarness(opts ...HarnessOption) *Harness {
	h := &Harness{
		tracer:           otel.Tracer("accuracy-harness"),
		logger:           slog.Default(),
		concurrency:      DefaultBenchConcurrency,
		progressInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run evaluates every estimator over cases and returns one report per
// estimator, in argument order. Cases whose exact geometric mean is
// undefined are skipped for every method. Run stops early with ctx's error
// if ctx is cancelled.
func (h *Harness) Run(ctx context.Context, cases [][]float64, ests ...ports.Estimator) ([]Report, error) {
	exact := make([]float64, len(cases))
	for i, c := range cases {
		gm, err := estimators.GeometricMean(c)
		if err != nil {
			exact[i] = math.NaN()
			continue
		}
		exact[i] = gm
	}

	reports := make([]Report, len(ests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)

	for i, est := range ests {
		g.Go(func() error {
			report, err := h.evaluate(gctx, est, cases, exact)
			if err != nil {
				return fmt.Errorf("method %s: %w", est.Name(), err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// evaluate runs one method over every case.
func (h *Harness) evaluate(ctx context.Context, est ports.Estimator, cases [][]float64, exact []float64) (Report, error) {
	ctx, span := h.tracer.Start(ctx, "Harness.Evaluate",
		trace.WithAttributes(
			attribute.String("method", est.Name()),
			attribute.Int("cases", len(cases)),
		),
	)
	defer span.End()

	progress := rate.Sometimes{Interval: h.progressInterval}
	labels := map[string]string{"method": est.Name()}
	report := Report{Method: est.Name()}
	var errSum float64

	for i, values := range cases {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Report{}, err
		}

		if math.IsNaN(exact[i]) {
			report.Skipped++
			continue
		}

		estimate, err := est.EstimateGeometricMean(values)
		if err != nil {
			report.Skipped++
			continue
		}

		relErr := math.Abs(estimate-exact[i]) / exact[i]
		errSum += relErr
		report.MaxRelativeError = max(report.MaxRelativeError, relErr)
		report.Tests++

		if h.metrics != nil {
			h.metrics.RecordHistogram("estimation_relative_error", relErr, labels)
		}

		progress.Do(func() {
			h.logger.Debug("harness progress", "method", est.Name(), "done", i+1, "total", len(cases))
		})
	}

	if report.Tests > 0 {
		report.MeanAbsoluteRelativeError = errSum / float64(report.Tests)
	}

	span.SetAttributes(
		attribute.Int("tests", report.Tests),
		attribute.Int("skipped", report.Skipped),
		attribute.Float64("mean_absolute_relative_error", report.MeanAbsoluteRelativeError),
	)
	span.SetStatus(codes.Ok, "evaluation completed")

	h.logger.Info("method evaluated",
		"method", report.Method,
		"tests", report.Tests,
		"skipped", report.Skipped,
		"mean_absolute_relative_error", report.MeanAbsoluteRelativeError,
	)
	return report, nil
}
