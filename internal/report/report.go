package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/signalnine/cyclebench/benchmark"
	"golang.org/x/term"
)

// Formats accepted by Generate.
const (
	FormatText     = "text"
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatPretty   = "pretty"
	FormatAuto     = "auto"
)

var Formats = []string{FormatText, FormatTable, FormatMarkdown, FormatJSON, FormatPretty, FormatAuto}

type Options struct {
	SortByAverage bool
}

type TestSummary struct {
	Name       string    `json:"name"`
	Cycles     int       `json:"cycles"`
	TotalMS    float64   `json:"total_ms"`
	AverageMS  float64   `json:"average_ms"`
	ShortestMS float64   `json:"shortest_ms"`
	LongestMS  float64   `json:"longest_ms"`
	CyclesMS   []float64 `json:"cycles_ms"`
}

type Summary struct {
	Suite     string        `json:"suite"`
	Cycles    int           `json:"cycles"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	TotalMS   float64       `json:"total_ms"`
	AverageMS float64       `json:"average_ms"`
	Tests     []TestSummary `json:"tests"`
}

// Generate renders res to w in the requested format.
func Generate(suite string, res *benchmark.Result, format string, w io.Writer, opts Options) error {
	if format == FormatAuto {
		format = autoFormat(w)
	}
	switch format {
	case FormatText:
		_, err := io.WriteString(w, res.Format(benchmark.FormatOptions{SortByAverage: opts.SortByAverage}))
		return err
	case FormatTable:
		return writeTable(res, opts, w)
	case FormatMarkdown:
		return writeMarkdown(res, opts, w)
	case FormatJSON:
		return writeJSON(summarize(suite, res, opts), w)
	case FormatPretty:
		_, err := io.WriteString(w, renderPretty(suite, res, opts))
		return err
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// autoFormat picks the styled report for terminals and plain text otherwise.
func autoFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return FormatPretty
	}
	return FormatText
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func summarize(suite string, res *benchmark.Result, opts Options) Summary {
	s := Summary{
		Suite:     suite,
		Cycles:    res.Cycles,
		StartedAt: res.StartedAt,
		EndedAt:   res.EndedAt,
		TotalMS:   ms(res.Duration),
		AverageMS: ms(res.AverageDuration),
	}
	for _, agg := range res.Ordered(opts.SortByAverage) {
		ts := TestSummary{
			Name:       agg.Name,
			Cycles:     agg.Cycles,
			TotalMS:    ms(agg.Duration),
			AverageMS:  ms(agg.Average),
			ShortestMS: ms(agg.Shortest),
			LongestMS:  ms(agg.Longest),
		}
		for _, d := range agg.Durations {
			ts.CyclesMS = append(ts.CyclesMS, ms(d))
		}
		s.Tests = append(s.Tests, ts)
	}
	return s
}

func writeTable(res *benchmark.Result, opts Options, w io.Writer) error {
	fmt.Fprintf(w, "%d cycles in %sms (%sms per cycle)\n\n",
		res.Cycles, benchmark.Millis(res.Duration), benchmark.Millis(res.AverageDuration))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tCYCLES\tAVERAGE\tSHORTEST\tLONGEST\tTOTAL\tTREND")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, agg := range res.Ordered(opts.SortByAverage) {
		fmt.Fprintf(tw, "%s\t%d\t%sms\t%sms\t%sms\t%sms\t%s\n",
			agg.Name, agg.Cycles, benchmark.Millis(agg.Average), benchmark.Millis(agg.Shortest),
			benchmark.Millis(agg.Longest), benchmark.Millis(agg.Duration), Sparkline(agg.Durations))
	}
	return tw.Flush()
}

func writeMarkdown(res *benchmark.Result, opts Options, w io.Writer) error {
	fmt.Fprintf(w, "Finished %d cycles within %sms.\n\n", res.Cycles, benchmark.Millis(res.Duration))
	fmt.Fprintln(w, "| Test | Cycles | Average | Shortest | Longest | Total |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|")
	for _, agg := range res.Ordered(opts.SortByAverage) {
		fmt.Fprintf(w, "| %s | %d | %sms | %sms | %sms | %sms |\n",
			agg.Name, agg.Cycles, benchmark.Millis(agg.Average), benchmark.Millis(agg.Shortest),
			benchmark.Millis(agg.Longest), benchmark.Millis(agg.Duration))
	}
	return nil
}

func writeJSON(summary Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
