package bench

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Terminal styles shared by the table renderer and the CLI banner.
// fatih/color drops the escape codes when the output is not a terminal.
var (
	// Heading styles titles and the banner box.
	Heading = color.New(color.Bold)
	// Good marks the queue that beat the sequential baseline.
	Good = color.New(color.FgGreen)
	// Warn marks results that did not beat the baseline, or are missing.
	Warn = color.New(color.FgYellow)
	// Bad marks a report that could not be rendered.
	Bad = color.New(color.FgRed)
)

// FormatNumber groups the digits of n in threes: 1234567 -> "1,234,567".
func FormatNumber(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}

	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatLatency renders a run time in the largest unit below it.
// Whole values drop the decimals, seconds always keep two.
func FormatLatency(d time.Duration) string {
	switch {
	case d == 0:
		return "0"
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return inUnit(d, time.Microsecond, "µs", 1)
	case d < time.Second:
		return inUnit(d, time.Millisecond, "ms", 2)
	default:
		return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
	}
}

func inUnit(d, unit time.Duration, suffix string, prec int) string {
	if d%unit == 0 {
		return strconv.FormatInt(int64(d/unit), 10) + suffix
	}
	return strconv.FormatFloat(float64(d)/float64(unit), 'f', prec, 64) + suffix
}

func styledLine(w io.Writer, c *color.Color, a ...any) {
	_, _ = c.Fprintln(w, a...)
}

func styledf(w io.Writer, c *color.Color, format string, a ...any) {
	_, _ = c.Fprintf(w, format, a...)
}
