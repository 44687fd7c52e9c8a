package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/signalnine/cyclebench/internal/config"
	"github.com/signalnine/cyclebench/internal/report"
	"github.com/signalnine/cyclebench/internal/result"
	"github.com/signalnine/cyclebench/internal/suite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagCycles            int
	flagTests             []string
	flagFormat            string
	flagSort              bool
	flagSave              bool
	flagCleanupAggressive bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the suite and print the timings",
		RunE:  runBenchmark,
	}
	cmd.Flags().IntVar(&flagCycles, "cycles", 0, "override cycle count")
	cmd.Flags().StringSliceVar(&flagTests, "test", nil, "only run the named tests (repeatable)")
	cmd.Flags().StringVar(&flagFormat, "format", report.FormatAuto, "output format (text, table, markdown, json, pretty, auto)")
	cmd.Flags().BoolVar(&flagSort, "sort", false, "order tests by ascending average")
	cmd.Flags().BoolVar(&flagSave, "save", false, "write a run record to the results dir")
	cmd.Flags().BoolVar(&flagCleanupAggressive, "cleanup-aggressive", false, "remove all cyclebench Docker containers after the run")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagCycles < 0 {
		return fmt.Errorf("--cycles must be positive, got %d", flagCycles)
	}
	if flagCycles > 0 {
		cfg.Cycles = flagCycles
	}

	tests, err := filterTests(cfg.Tests, flagTests)
	if err != nil {
		return err
	}
	runner, err := suite.NewBuilder().Build(cfg, tests)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout.Std())
		defer cancel()
	}

	logrus.WithFields(logrus.Fields{"suite": cfg.Name, "tests": len(tests), "cycles": cfg.Cycles}).Info("Starting run")
	res, err := runner.Run(ctx, cfg.Cycles)
	if flagCleanupAggressive {
		cleanupDocker()
	}
	if err != nil {
		return fmt.Errorf("running %s: %w", cfg.Name, err)
	}

	opts := report.Options{SortByAverage: flagSort || cfg.Sort}
	if err := report.Generate(cfg.Name, res, flagFormat, os.Stdout, opts); err != nil {
		return err
	}

	if flagSave {
		dir := cfg.Results.Dir
		if dir == "" {
			dir = "results"
		}
		path, err := result.WriteRecord(dir, result.NewRecord(cfg.Name, res))
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %s\n", path)
	}
	return nil
}

func cleanupDocker() {
	// Best-effort: a run that never started a container has nothing to prune.
	logrus.Info("Cleaning up Docker artifacts")
	cmd := newExecCmd("docker", "container", "prune", "-f", "--filter", "label=cyclebench=true")
	if err := cmd.Run(); err != nil {
		logrus.WithError(err).Warn("Docker cleanup failed")
	}
}

// filterTests keeps the tests named in names, in file order. Every name must
// match at least one test.
func filterTests(tests []config.Test, names []string) ([]config.Test, error) {
	if len(names) == 0 {
		return tests, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = false
	}
	var filtered []config.Test
	for _, t := range tests {
		if _, ok := want[t.Name]; ok {
			want[t.Name] = true
			filtered = append(filtered, t)
		}
	}
	var missing []string
	for _, n := range names {
		if !want[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no test named %s", strings.Join(missing, ", "))
	}
	return filtered, nil
}

func newExecCmd(args ...string) *exec.Cmd {
	return exec.Command(args[0], args[1:]...)
}
