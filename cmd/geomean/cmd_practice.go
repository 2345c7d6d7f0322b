package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-geomean/infrastructure/estimators"
	"github.com/ahrav/go-geomean/infrastructure/guess"
	"github.com/ahrav/go-geomean/infrastructure/timer"
	"github.com/ahrav/go-geomean/internal/application"
	"github.com/ahrav/go-geomean/internal/ports"
)

// errInputClosed ends the practice loop when stdin runs out.
var errInputClosed = errors.New("input closed")

func newPracticeCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "practice",
		Short: "Solve generated problems with the table-based method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if env.cfg.Method != estimators.MethodTableBased {
				return fmt.Errorf("practice needs a step-by-step method; only %q offers one, got %q",
					estimators.MethodTableBased, env.cfg.Method)
			}
			if err := env.cfg.Practice.Validate(); err != nil {
				return err
			}

			p := &practiceLoop{
				in:        bufio.NewScanner(cmd.InOrStdin()),
				out:       cmd.OutOrStdout(),
				styles:    newStyles(cmd.OutOrStdout()),
				env:       env,
				timer:     timer.System{},
				generator: guess.NewTrivia(),
			}
			return p.run()
		},
	}
}

// practiceLoop runs problems until the user declines another or input ends.
type practiceLoop struct {
	in        *bufio.Scanner
	out       io.Writer
	styles    styles
	env       *runtimeEnv
	timer     ports.Timer
	generator ports.GuessGenerator
}

func (p *practiceLoop) run() error {
	fmt.Fprintln(p.out, p.styles.render(p.styles.title, "Practice Mode - Table-Based Geometric Mean"))
	fmt.Fprintln(p.out, "=========================================")
	fmt.Fprintln(p.out)

	for {
		if err := p.round(); err != nil {
			if errors.Is(err, errInputClosed) {
				return nil
			}
			return err
		}

		again, err := p.promptContinue()
		if err != nil {
			if errors.Is(err, errInputClosed) {
				return nil
			}
			return err
		}
		if !again {
			fmt.Fprintln(p.out, "Thanks for practising!")
			return nil
		}
		fmt.Fprintln(p.out)
	}
}

// round plays one problem on a fresh session.
func (p *practiceLoop) round() error {
	opts := []application.SessionOption{application.WithSessionLogger(p.env.logger)}
	if p.env.metrics != nil {
		opts = append(opts, application.WithSessionMetrics(p.env.metrics))
	}
	ready := application.NewReadySession(estimators.NewTableBased(), p.timer, p.env.rng, p.generator, opts...)

	active, guesses, err := ready.Start(p.env.cfg.Practice)
	if err != nil {
		return fmt.Errorf("failed to generate problem: %w", err)
	}

	fmt.Fprint(p.out, formatProblem(guesses))
	fmt.Fprintln(p.out)

	answer, err := p.promptAnswer()
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out)

	result, err := active.SubmitAnswer(answer)
	if err != nil {
		return err
	}
	fmt.Fprint(p.out, formatResult(p.styles, result))
	fmt.Fprintln(p.out)
	return nil
}

func (p *practiceLoop) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errInputClosed
	}
	return p.in.Text(), nil
}

func (p *practiceLoop) promptAnswer() (uint64, error) {
	for {
		fmt.Fprint(p.out, "Enter your estimated geometric mean: ")
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		answer, err := parseAnswer(line)
		if err == nil {
			return answer, nil
		}
		fmt.Fprintf(p.out, "Invalid input: %v. Please try again.\n", err)
	}
}

func (p *practiceLoop) promptContinue() (bool, error) {
	for {
		fmt.Fprint(p.out, "Continue with another problem? (y/n): ")
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		if again, ok := parseYesNo(line); ok {
			return again, nil
		}
		fmt.Fprintln(p.out, "Please enter 'y' for yes or 'n' for no.")
	}
}
