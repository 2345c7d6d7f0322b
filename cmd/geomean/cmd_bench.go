package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-geomean/infrastructure/estimators"
	"github.com/ahrav/go-geomean/internal/application"
)

func newBenchCmd(env *runtimeEnv) *cobra.Command {
	var (
		cases   int
		methods []string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the accuracy of the estimation methods on random inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bench := env.cfg.Bench
			if cmd.Flags().Changed("cases") {
				bench.Cases = cases
			}
			if cmd.Flags().Changed("methods") {
				bench.Methods = methods
			}

			testCases, err := application.GenerateCases(env.rng, bench.MinValue, bench.MaxValue, bench.Cases)
			if err != nil {
				return err
			}

			ests, err := env.registry.CreateAll(bench.Methods)
			if err != nil {
				return err
			}
			for i, e := range ests {
				ests[i] = estimators.Instrument(e, env.metrics)
			}

			opts := []application.HarnessOption{
				application.WithHarnessLogger(env.logger),
				application.WithConcurrency(bench.Concurrency),
			}
			if env.metrics != nil {
				opts = append(opts, application.WithHarnessMetrics(env.metrics))
			}

			reports, err := application.NewHarness(opts...).Run(cmd.Context(), testCases, ests...)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderReports(reports, len(testCases)))
			return nil
		},
	}

	cmd.Flags().IntVar(&cases, "cases", application.DefaultBenchCases, "number of random test cases")
	cmd.Flags().StringSliceVar(&methods, "methods", nil, "methods to compare (default: all registered)")
	return cmd
}

// renderReports lays the harness reports out as a table.
func renderReports(reports []application.Report, cases int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Method", "Mean abs. relative error", "Max relative error", "Tests", "Skipped")

	for _, r := range reports {
		t.Row(
			r.Method,
			strconv.FormatFloat(r.MeanAbsoluteRelativeError*100, 'f', 2, 64)+"%",
			strconv.FormatFloat(r.MaxRelativeError*100, 'f', 2, 64)+"%",
			estimators.FormatWhole(uint64(r.Tests)),
			estimators.FormatWhole(uint64(r.Skipped)),
		)
	}
	return fmt.Sprintf("Accuracy over %s cases\n%s", estimators.FormatWhole(uint64(cases)), t.String())
}
