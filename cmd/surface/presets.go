package main

import (
	"encoding/json"
	"fmt"

	"github.com/dredimura/surface/internal/presentation/tui"
	"github.com/dredimura/surface/pkg/adapters/loam"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets [dir]",
	Short: "List the preset library",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir := cfg.Presets.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return fmt.Errorf("no preset directory: pass one or set presets.dir")
		}

		lib, err := loam.Open(dir)
		if err != nil {
			return err
		}
		presets, err := lib.List(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(presets)
		}

		render := tui.NewRenderer(isTerminal())
		out, err := render(tui.PresetsMarkdown(presets))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().Bool("json", false, "Print presets as JSON")
}
