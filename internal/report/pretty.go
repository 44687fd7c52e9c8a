package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/signalnine/cyclebench/benchmark"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws one block per cycle, scaled between the shortest and
// longest duration. Equal durations draw a flat line.
func Sparkline(durations []time.Duration) string {
	if len(durations) == 0 {
		return ""
	}
	lo, hi := durations[0], durations[0]
	for _, d := range durations {
		lo = min(lo, d)
		hi = max(hi, d)
	}
	var b strings.Builder
	for _, d := range durations {
		idx := 0
		if hi > lo {
			idx = int(float64(d-lo) / float64(hi-lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

func renderPretty(suite string, res *benchmark.Result, opts Options) string {
	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	fastStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	slowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	aggs := res.Ordered(opts.SortByAverage)
	nameWidth := len("test")
	fastest, slowest := aggs[0], aggs[0]
	for _, agg := range aggs {
		nameWidth = max(nameWidth, lipgloss.Width(agg.Name))
		if agg.Average < fastest.Average {
			fastest = agg
		}
		if agg.Average > slowest.Average {
			slowest = agg
		}
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(strings.ToUpper(suite)))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("%d cycles · %sms total · %sms per cycle",
		res.Cycles, benchmark.Millis(res.Duration), benchmark.Millis(res.AverageDuration))))
	sb.WriteString("\n\n")
	nameCell := lipgloss.NewStyle().Width(nameWidth)
	sb.WriteString(mutedStyle.Render(nameCell.Render("test") + fmt.Sprintf(" %12s %12s %12s  %s", "average", "shortest", "longest", "trend")))

	for _, agg := range aggs {
		avg := fmt.Sprintf("%sms", benchmark.Millis(agg.Average))
		switch {
		case len(aggs) > 1 && agg == fastest:
			avg = fastStyle.Render(fmt.Sprintf("%12s", avg))
		case len(aggs) > 1 && agg == slowest:
			avg = slowStyle.Render(fmt.Sprintf("%12s", avg))
		default:
			avg = fmt.Sprintf("%12s", avg)
		}
		sb.WriteString("\n")
		sb.WriteString(nameCell.Render(agg.Name))
		sb.WriteString(fmt.Sprintf(" %s %12s %12s  %s", avg,
			benchmark.Millis(agg.Shortest)+"ms", benchmark.Millis(agg.Longest)+"ms", Sparkline(agg.Durations)))
	}

	return boxStyle.Render(sb.String()) + "\n"
}
