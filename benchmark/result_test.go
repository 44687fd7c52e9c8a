package benchmark_test

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/signalnine/cyclebench/benchmark"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// buildPasses lays tests out back to back, starting at epoch.
func buildPasses(names []string, durations [][]time.Duration) []benchmark.PassResult {
	at := epoch
	passes := make([]benchmark.PassResult, 0, len(durations))
	for _, cycle := range durations {
		pass := make(benchmark.PassResult, 0, len(names))
		for i, name := range names {
			end := at.Add(cycle[i])
			pass = append(pass, benchmark.TestResult{Name: name, StartedAt: at, EndedAt: end, Duration: cycle[i]})
			at = end
		}
		passes = append(passes, pass)
	}
	return passes
}

func TestNewResult(t *testing.T) {
	ms := time.Millisecond
	passes := buildPasses([]string{"A", "B"}, [][]time.Duration{
		{10 * ms, 25 * ms},
		{12 * ms, 20 * ms},
		{8 * ms, 30 * ms},
	})

	res, err := benchmark.NewResult(passes)
	require.NoError(t, err)
	require.Equal(t, 3, res.Cycles)
	require.Equal(t, epoch, res.StartedAt)
	require.Equal(t, epoch.Add(105*ms), res.EndedAt)
	require.Equal(t, 105*ms, res.Duration)
	require.Equal(t, 35*ms, res.AverageDuration)

	a, ok := res.Test("A")
	require.True(t, ok)
	require.Equal(t, &benchmark.Aggregate{
		Name:      "A",
		Cycles:    3,
		Duration:  30 * ms,
		Average:   10 * ms,
		Durations: []time.Duration{10 * ms, 12 * ms, 8 * ms},
		Shortest:  8 * ms,
		Longest:   12 * ms,
	}, a)

	b, ok := res.Test("B")
	require.True(t, ok)
	require.Equal(t, 20*ms, b.Shortest)
	require.Equal(t, 30*ms, b.Longest)

	_, ok = res.Test("C")
	require.False(t, ok)
}

func TestAveragesTruncateToNanoseconds(t *testing.T) {
	passes := buildPasses([]string{"A"}, [][]time.Duration{{10}, {10}, {11}})

	res, err := benchmark.NewResult(passes)
	require.NoError(t, err)
	require.Equal(t, time.Duration(31), res.Duration)
	require.Equal(t, time.Duration(10), res.AverageDuration)

	a, ok := res.Test("A")
	require.True(t, ok)
	require.Equal(t, time.Duration(10), a.Average)
	require.Equal(t, "0", benchmark.Millis(a.Average))
}

func TestNewResultProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	names := []string{"alpha", "beta", "gamma", "delta"}

	for cycles := 1; cycles <= 8; cycles++ {
		durations := make([][]time.Duration, cycles)
		for c := range durations {
			durations[c] = make([]time.Duration, len(names))
			for i := range names {
				durations[c][i] = time.Duration(rng.Intn(50_000)) * time.Microsecond
			}
		}

		res, err := benchmark.NewResult(buildPasses(names, durations))
		require.NoError(t, err)
		require.Equal(t, cycles, res.Cycles)
		require.Equal(t, res.EndedAt.Sub(res.StartedAt), res.Duration)
		require.Equal(t, res.Duration/time.Duration(cycles), res.AverageDuration)
		require.Len(t, res.Tests, len(names))

		for i, agg := range res.Tests {
			require.Equal(t, names[i], agg.Name)
			require.Len(t, agg.Durations, cycles)

			var sum time.Duration
			shortest, longest := agg.Durations[0], agg.Durations[0]
			for _, d := range agg.Durations {
				sum += d
				shortest = min(shortest, d)
				longest = max(longest, d)
			}
			require.Equal(t, sum, agg.Duration)
			require.Equal(t, sum/time.Duration(cycles), agg.Average)
			require.Equal(t, shortest, agg.Shortest)
			require.Equal(t, longest, agg.Longest)
		}
	}
}

func TestNewResultRejectsDegenerateInput(t *testing.T) {
	_, err := benchmark.NewResult(nil)
	require.ErrorIs(t, err, benchmark.ErrNoCycles)

	_, err = benchmark.NewResult([]benchmark.PassResult{{}})
	require.ErrorIs(t, err, benchmark.ErrNoTests)

	tests := []struct {
		name   string
		passes []benchmark.PassResult
	}{
		{"shorter pass", []benchmark.PassResult{
			{{Name: "A"}, {Name: "B"}},
			{{Name: "A"}},
		}},
		{"longer pass", []benchmark.PassResult{
			{{Name: "A"}},
			{{Name: "A"}, {Name: "B"}},
		}},
		{"reordered pass", []benchmark.PassResult{
			{{Name: "A"}, {Name: "B"}},
			{{Name: "A"}, {Name: "B"}},
			{{Name: "B"}, {Name: "A"}},
		}},
		{"renamed test", []benchmark.PassResult{
			{{Name: "A"}},
			{{Name: "Z"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := benchmark.NewResult(tt.passes)
			require.ErrorIs(t, err, benchmark.ErrMisalignedPasses)
		})
	}
}

func TestOrdered(t *testing.T) {
	ms := time.Millisecond
	res, err := benchmark.NewResult(buildPasses([]string{"slow", "fast", "mid", "fast-too"}, [][]time.Duration{
		{30 * ms, 5 * ms, 10 * ms, 5 * ms},
	}))
	require.NoError(t, err)

	names := func(aggs []*benchmark.Aggregate) []string {
		out := make([]string, 0, len(aggs))
		for _, a := range aggs {
			out = append(out, a.Name)
		}
		return out
	}
	require.Equal(t, []string{"slow", "fast", "mid", "fast-too"}, names(res.Ordered(false)))
	require.Equal(t, []string{"fast", "fast-too", "mid", "slow"}, names(res.Ordered(true)))
	require.Equal(t, []string{"slow", "fast", "mid", "fast-too"}, names(res.Tests))
}

func TestResultLookupAfterDecode(t *testing.T) {
	res, err := benchmark.NewResult(buildPasses([]string{"A"}, [][]time.Duration{{time.Millisecond}}))
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded benchmark.Result
	require.NoError(t, json.Unmarshal(data, &decoded))

	agg, ok := decoded.Test("A")
	require.True(t, ok)
	require.Equal(t, time.Millisecond, agg.Duration)
}
