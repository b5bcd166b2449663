package main

import (
	"fmt"

	"github.com/dredimura/surface/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Print the activation status messages shown to users",
	RunE: func(cmd *cobra.Command, args []string) error {
		render := tui.NewRenderer(isTerminal())
		out, err := render(tui.MessagesMarkdown())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(messagesCmd)
}
