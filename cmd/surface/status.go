package main

import (
	"fmt"

	"github.com/dredimura/surface/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Connect to the configured host and print a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		render := tui.NewRenderer(isTerminal())
		out, err := render(tui.SnapshotMarkdown(a.surface.Snapshot()))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
