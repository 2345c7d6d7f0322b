package estimators

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatNumber renders v with English thousands separators. Integral values
// print without a fractional part; others print with the shortest exact
// decimal representation.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e18 {
		return message.NewPrinter(language.English).Sprintf("%d", int64(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatWhole renders n with English thousands separators.
func FormatWhole(n uint64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// String renders the derivation in three blocks: forward conversion,
// averaging, and reverse conversion. Inputs are rounded to whole numbers
// for display. The output depends only on the trace's fields.
func (s *TableBasedSteps) String() string {
	var b strings.Builder

	b.WriteString("Convert each guess to a table logarithm:\n")
	for i, v := range s.Inputs {
		b.WriteString("  ")
		b.WriteString(FormatNumber(math.Round(v)))
		b.WriteString(" → ")
		b.WriteString(s.Logs[i].String())
		b.WriteString("\n")
	}

	b.WriteString("\nAverage the logarithms:\n  (")
	for i, q := range s.Logs {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(q.String())
	}
	count := strconv.Itoa(len(s.Logs))
	b.WriteString(") ÷ " + count + " = " + s.Sum.String() + " ÷ " + count + " = ")
	if s.Truncated() {
		quotient := float64(s.Sum) / float64(len(s.Logs)) / 10
		b.WriteString(strconv.FormatFloat(quotient, 'f', 2, 64))
		b.WriteString(", rounded up to ")
	}
	b.WriteString(s.Average.String())
	b.WriteString("\n")

	b.WriteString("\nConvert back:\n  ")
	b.WriteString(s.Average.String())
	b.WriteString(" → ")
	b.WriteString(FormatNumber(s.Result))
	b.WriteString("\n")

	return b.String()
}
