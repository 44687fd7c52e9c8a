package cmd

import (
	"os"

	"github.com/signalnine/cyclebench/internal/report"
	"github.com/signalnine/cyclebench/internal/result"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		format string
		sorted bool
	)
	cmd := &cobra.Command{
		Use:   "report <record.json>",
		Short: "Render a saved run record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := result.ReadRecord(args[0])
			if err != nil {
				return err
			}
			res, err := rec.Result()
			if err != nil {
				return err
			}
			return report.Generate(rec.Suite, res, format, os.Stdout, report.Options{SortByAverage: sorted})
		},
	}
	cmd.Flags().StringVar(&format, "format", report.FormatAuto, "output format (text, table, markdown, json, pretty, auto)")
	cmd.Flags().BoolVar(&sorted, "sort", false, "order tests by ascending average")
	return cmd
}
