package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-geomean/infrastructure/estimators"
	"github.com/ahrav/go-geomean/internal/ports"
)

func newEstimateCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate <value>...",
		Short: "Estimate the geometric mean of the given values",
		Example: `  geomean estimate 3600 920 740
  geomean estimate --method log_linear 300 10,000 900 70`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(args)
			if err != nil {
				return err
			}

			est, err := env.registry.Create(env.cfg.Method)
			if err != nil {
				return err
			}
			instrumented := estimators.Instrument(est, env.metrics)

			estimate, err := instrumented.EstimateGeometricMean(values)
			if err != nil {
				return err
			}
			exact, err := estimators.GeometricMean(values)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := newStyles(out)
			fmt.Fprintf(out, "%s %s\n", s.render(s.title, "Method:"), est.Name())
			fmt.Fprintf(out, "%s %s\n", s.render(s.title, "Estimate:"), formatEstimate(estimate))
			fmt.Fprintf(out, "%s %.1f\n", s.render(s.muted, "Exact geometric mean:"), exact)

			if stepper, ok := est.(ports.StepByStepEstimator[*estimators.TableBasedSteps]); ok {
				steps, err := stepper.EstimateGeometricMeanStepByStep(values)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, steps.String())
			}
			return nil
		},
	}
}
