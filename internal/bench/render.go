package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// Render writes the report in the given output format: table, json or yaml.
func Render(w io.Writer, format string, report *Report) error {
	switch format {
	case "json":
		return RenderJSON(w, report)
	case "yaml":
		return RenderYAML(w, report)
	case "table", "":
		return RenderTable(w, report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// RenderTable prints the configuration header and the comparison table.
func RenderTable(w io.Writer, report *Report) error {
	printSectionHeader(w, "THROUGHPUT COMPARISON",
		fmt.Sprintf("Workload: %s (size %d)", report.Workload, report.Size),
		fmt.Sprintf("Tasks: %s   Workers: %d   Iterations: %d",
			FormatNumber(report.Tasks), report.Workers, report.Iterations),
	)

	table := tablewriter.NewWriter(w)
	table.Header("Rank", "Queue", "Avg Time", "Min", "Max", "Tasks/sec", "Speedup")

	for _, r := range report.Results {
		_ = table.Append(
			getRankIcon(r.Rank),
			r.Name,
			r.AvgTime.Round(time.Microsecond).String(),
			FormatLatency(r.MinTime),
			FormatLatency(r.MaxTime),
			FormatNumber(int(r.TasksPerSec)),
			getSpeedupStr(r),
		)
	}

	if err := table.Render(); err != nil {
		styledLine(w, Bad, "Error in rendering results table")
		return fmt.Errorf("rendering table: %w", err)
	}

	printFooter(w, report)
	return nil
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// RenderYAML writes the report as YAML.
func RenderYAML(w io.Writer, report *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	return enc.Close()
}

// MakeProgressBar builds the bar shown while a table report is being produced.
func MakeProgressBar(w io.Writer, steps int) *progressbar.ProgressBar {
	return progressbar.NewOptions(steps,
		progressbar.OptionSetDescription("Testing queues"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func getRankIcon(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d", rank)
	}
}

func getSpeedupStr(r Result) string {
	if r.Name == SequentialName {
		return "baseline"
	}
	return fmt.Sprintf("%.2fx", r.Speedup)
}

func printSectionHeader(w io.Writer, title string, descriptions ...string) {
	_, _ = fmt.Fprintln(w)
	styledLine(w, Heading, "═══════════════════════════════════════════════════════════")
	styledLine(w, Heading, title)
	styledLine(w, Heading, "═══════════════════════════════════════════════════════════")
	for _, desc := range descriptions {
		_, _ = fmt.Fprintln(w, desc)
	}
	_, _ = fmt.Fprintln(w)
}

func printFooter(w io.Writer, report *Report) {
	_, _ = fmt.Fprintln(w)
	best := fastestPool(report)
	if best == nil {
		styledLine(w, Warn, "No pool configuration was measured")
		return
	}

	c := Good
	if best.Speedup < 1 {
		c = Warn
	}
	styledf(w, c, "✅ Fastest queue: %s (%.2fx vs sequential)\n", best.Name, best.Speedup)
	_, _ = fmt.Fprintln(w)
}

// fastestPool returns the pool result with the lowest average time.
func fastestPool(report *Report) *Result {
	var best *Result
	for i := range report.Results {
		r := &report.Results[i]
		if r.Name == SequentialName {
			continue
		}
		if best == nil || r.AvgTime < best.AvgTime {
			best = r
		}
	}
	return best
}
