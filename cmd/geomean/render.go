package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/ahrav/go-geomean/infrastructure/estimators"
	"github.com/ahrav/go-geomean/internal/domain"
)

// Palette for terminal output.
var (
	colorTitle     = lipgloss.Color("#20B9B4")
	colorCorrect   = lipgloss.Color("#2ECC71")
	colorExcellent = lipgloss.Color("#F1C40F")
	colorIncorrect = lipgloss.Color("#E74C3C")
	colorMuted     = lipgloss.Color("#7F8C8D")
)

// styles renders text with lipgloss when the destination is a terminal and
// passes it through unchanged otherwise.
type styles struct {
	enabled   bool
	title     lipgloss.Style
	correct   lipgloss.Style
	excellent lipgloss.Style
	incorrect lipgloss.Style
	muted     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	return styles{
		enabled:   isTerminal(w),
		title:     lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
		correct:   lipgloss.NewStyle().Bold(true).Foreground(colorCorrect),
		excellent: lipgloss.NewStyle().Bold(true).Foreground(colorExcellent),
		incorrect: lipgloss.NewStyle().Foreground(colorIncorrect),
		muted:     lipgloss.NewStyle().Foreground(colorMuted),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// formatEstimate renders an estimate rounded to ten significant digits, so
// float noise such as 749.9999999999999 prints as 750.
func formatEstimate(v float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 10, 64), 64)
	if err != nil {
		return estimators.FormatNumber(v)
	}
	return estimators.FormatNumber(rounded)
}

// formatProblem lists the guesses shown to the user.
func formatProblem(guesses []uint64) string {
	var b strings.Builder
	b.WriteString("Here are the team's guesses:\n")
	for i, g := range guesses {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, estimators.FormatWhole(g))
	}
	return b.String()
}

// formatResult summarizes a practice round. The derivation is shown only
// when the user got the method wrong.
func formatResult(s styles, r domain.Result[*estimators.TableBasedSteps]) string {
	var b strings.Builder
	b.WriteString(s.render(s.title, "Results:") + "\n")
	b.WriteString("========\n")
	fmt.Fprintf(&b, "Your answer: %s\n", estimators.FormatWhole(r.UserAnswer))
	fmt.Fprintf(&b, "Exact geometric mean: %.1f\n", r.ExactGeometricMean)
	fmt.Fprintf(&b, "Estimation method result: %s (%.1f%% off)\n", formatEstimate(r.Estimate), r.EstimateError()*100)
	fmt.Fprintf(&b, "Time taken: %.1f seconds\n", r.Duration.Seconds())
	b.WriteString("\n")

	switch r.Evaluation {
	case domain.Correct:
		b.WriteString(s.render(s.correct, "✓ CORRECT! You calculated the estimation method properly.") + "\n")
	case domain.Excellent:
		b.WriteString(s.render(s.excellent,
			"★ EXCELLENT! Your answer is closer to the exact value than the estimation method!") + "\n")
	default:
		b.WriteString(s.render(s.incorrect, "You have calculated the estimation method incorrectly.") + "\n")
		b.WriteString("\nStep-by-step calculation:\n")
		b.WriteString("========================\n")
		b.WriteString(r.Steps.String())
	}
	return b.String()
}

// Input errors shown to the user before re-prompting.
var (
	errEmptyInput    = errors.New("please enter a number")
	errNotPositive   = errors.New("please enter a positive number")
	errNotWhole      = errors.New("please enter a whole number (no decimals)")
	errInvalidNumber = errors.New("please enter a valid number")
)

// parseAnswer reads a positive whole number, ignoring surrounding space and
// thousands separators.
func parseAnswer(input string) (uint64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(input), ",", "")
	if cleaned == "" {
		return 0, errEmptyInput
	}

	v, err := strconv.ParseUint(cleaned, 10, 64)
	switch {
	case err == nil && v == 0:
		return 0, errNotPositive
	case err == nil:
		return v, nil
	case strings.HasPrefix(cleaned, "-"):
		return 0, errNotPositive
	case strings.Contains(cleaned, "."):
		return 0, errNotWhole
	default:
		return 0, errInvalidNumber
	}
}

// parseValues reads the positional arguments of estimate. Values may carry
// thousands separators and fractional parts.
func parseValues(args []string) ([]float64, error) {
	values := make([]float64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(arg), ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// parseYesNo interprets a continue prompt answer.
func parseYesNo(input string) (answer, ok bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}
