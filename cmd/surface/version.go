package main

import (
	"fmt"
	"strings"

	"github.com/dredimura/surface"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of surface",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "surface version %s\n", strings.TrimSpace(surface.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
