package benchmark

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type FormatOptions struct {
	// SortByAverage lists the fastest test first. Off by default so the
	// output follows registration order.
	SortByAverage bool
}

func (r *Result) String() string {
	return r.Format(FormatOptions{})
}

// Format renders the plain-text report: a header line, a separator, then one
// line per test.
func (r *Result) Format(opts FormatOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Finished %d Testcycles within %sms.\n", r.Cycles, Millis(r.Duration))
	b.WriteString("-------\n")
	for _, agg := range r.Ordered(opts.SortByAverage) {
		fmt.Fprintf(&b, "%s took ~%sms (between %sms and %sms)\n",
			agg.Name, Millis(agg.Average), Millis(agg.Shortest), Millis(agg.Longest))
	}
	return b.String()
}

// Millis formats d in milliseconds, keeping up to microsecond precision and
// dropping trailing zeros ("10", "10.5", "0.003").
func Millis(d time.Duration) string {
	ms := float64(d.Round(time.Microsecond)) / float64(time.Millisecond)
	return strconv.FormatFloat(ms, 'f', -1, 64)
}
