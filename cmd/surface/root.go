package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dredimura/surface/internal/config"
	"github.com/dredimura/surface/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "surface",
	Short: "Surface is the control surface of the Dre-Dimura preamp",
	Long: `Surface binds UI controls to the parameters of an audio host, gates them
behind license activation and exposes them over HTTP, SSE and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to the surface config file (yaml or json)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
}

// loadConfig reads the config named by --config and applies the logging flags.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		cfg.Log.Format = "json"
	}

	logger, err := logging.FromConfig(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// isTerminal reports whether stdout is attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
