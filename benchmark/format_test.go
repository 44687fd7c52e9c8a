package benchmark_test

import (
	"testing"
	"time"

	"github.com/signalnine/cyclebench/benchmark"
	"github.com/stretchr/testify/require"
)

func TestResultString(t *testing.T) {
	ms := time.Millisecond
	res, err := benchmark.NewResult(buildPasses([]string{"B", "A"}, [][]time.Duration{
		{20 * ms, 10 * ms},
		{20 * ms, 12 * ms},
		{20 * ms, 8 * ms},
	}))
	require.NoError(t, err)

	want := "Finished 3 Testcycles within 90ms.\n" +
		"-------\n" +
		"B took ~20ms (between 20ms and 20ms)\n" +
		"A took ~10ms (between 8ms and 12ms)\n"
	require.Equal(t, want, res.String())

	sorted := "Finished 3 Testcycles within 90ms.\n" +
		"-------\n" +
		"A took ~10ms (between 8ms and 12ms)\n" +
		"B took ~20ms (between 20ms and 20ms)\n"
	require.Equal(t, sorted, res.Format(benchmark.FormatOptions{SortByAverage: true}))
}

func TestMillis(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0"},
		{10 * time.Millisecond, "10"},
		{10*time.Millisecond + 500*time.Microsecond, "10.5"},
		{3 * time.Microsecond, "0.003"},
		{1500 * time.Nanosecond, "0.002"},
		{2 * time.Second, "2000"},
	}
	for _, tt := range tests {
		if got := benchmark.Millis(tt.in); got != tt.want {
			t.Errorf("Millis(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
