package benchmark

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/bradenaw/juniper/xslices"
)

// TestResult is the timing of a single test execution.
type TestResult struct {
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Duration  time.Duration `json:"duration"`
}

func newTestResult(name string, startedAt, endedAt time.Time) TestResult {
	d := endedAt.Sub(startedAt)
	if d < 0 {
		d = 0
	}
	return TestResult{Name: name, StartedAt: startedAt, EndedAt: endedAt, Duration: d}
}

// PassResult holds one TestResult per registered test, in registration order.
type PassResult []TestResult

// Names returns the test names of the pass in order.
func (p PassResult) Names() []string {
	return xslices.Map(p, func(tr TestResult) string { return tr.Name })
}

// Aggregate summarises one test name across all cycles. Average is
// Duration / Cycles truncated to whole nanoseconds.
type Aggregate struct {
	Name      string          `json:"name"`
	Cycles    int             `json:"cycles"`
	Duration  time.Duration   `json:"duration"`
	Average   time.Duration   `json:"average"`
	Durations []time.Duration `json:"durations"`
	Shortest  time.Duration   `json:"shortest"`
	Longest   time.Duration   `json:"longest"`
}

func (a *Aggregate) summarize() {
	a.Duration = xslices.Reduce(a.Durations, time.Duration(0), func(sum, d time.Duration) time.Duration {
		return sum + d
	})
	a.Average = a.Duration / time.Duration(a.Cycles)
	a.Shortest = slices.Min(a.Durations)
	a.Longest = slices.Max(a.Durations)
}

// Result aggregates the passes of a run. AverageDuration is
// Duration / Cycles truncated to whole nanoseconds.
type Result struct {
	Passes          []PassResult  `json:"passes"`
	Cycles          int           `json:"cycles"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         time.Time     `json:"ended_at"`
	Duration        time.Duration `json:"duration"`
	AverageDuration time.Duration `json:"average_duration"`
	// Tests is ordered by first appearance in the first pass.
	Tests           []*Aggregate  `json:"tests"`

	byName map[string]*Aggregate
}

// NewResult validates that every pass ran the same tests in the same order
// and aggregates their timings by test name. A name that occurs more than
// once in a pass contributes the sum of its executions to that cycle.
func NewResult(passes []PassResult) (*Result, error) {
	if len(passes) == 0 {
		return nil, ErrNoCycles
	}
	first := passes[0]
	if len(first) == 0 {
		return nil, ErrNoTests
	}
	names := first.Names()
	for i, pass := range passes[1:] {
		if !slices.Equal(names, pass.Names()) {
			return nil, fmt.Errorf("%w: pass %d", ErrMisalignedPasses, i+2)
		}
	}

	last := passes[len(passes)-1]
	res := &Result{
		Passes:    passes,
		Cycles:    len(passes),
		StartedAt: first[0].StartedAt,
		EndedAt:   last[len(last)-1].EndedAt,
		byName:    make(map[string]*Aggregate, len(first)),
	}
	res.Duration = res.EndedAt.Sub(res.StartedAt)
	res.AverageDuration = res.Duration / time.Duration(res.Cycles)

	for _, name := range names {
		if _, ok := res.byName[name]; ok {
			continue
		}
		agg := &Aggregate{
			Name:      name,
			Cycles:    res.Cycles,
			Durations: make([]time.Duration, res.Cycles),
		}
		res.byName[name] = agg
		res.Tests = append(res.Tests, agg)
	}
	for cycle, pass := range passes {
		for _, tr := range pass {
			res.byName[tr.Name].Durations[cycle] += tr.Duration
		}
	}
	for _, agg := range res.Tests {
		agg.summarize()
	}
	return res, nil
}

// Test returns the aggregate for name.
func (r *Result) Test(name string) (*Aggregate, bool) {
	if r.byName != nil {
		agg, ok := r.byName[name]
		return agg, ok
	}
	for _, agg := range r.Tests {
		if agg.Name == name {
			return agg, true
		}
	}
	return nil, false
}

// Ordered returns the aggregates in first-pass order, or by ascending
// average when byAverage is set. Ties keep first-pass order.
func (r *Result) Ordered(byAverage bool) []*Aggregate {
	out := slices.Clone(r.Tests)
	if byAverage {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Average < out[j].Average
		})
	}
	return out
}
