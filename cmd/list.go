package cmd

import (
	"fmt"

	"github.com/signalnine/cyclebench/internal/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tests of the configured suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%d cycles)\n", cfg.Name, cfg.Cycles)
			for _, t := range cfg.Tests {
				fmt.Printf("  - %s [%s] %s\n", t.Name, t.Kind, describe(&t))
			}
			return nil
		},
	}
}

func describe(t *config.Test) string {
	switch t.Kind {
	case config.KindSleep:
		return t.Duration.Std().String()
	case config.KindContainer:
		if t.Command == "" {
			return t.Image
		}
		return fmt.Sprintf("%s: %s", t.Image, t.Command)
	default:
		return t.Command
	}
}
