package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpAdapter "github.com/dredimura/surface/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Starts a Model Context Protocol server exposing the control surface as tools.
Logs always go to stderr so the stdio transport stays clean.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if transport, _ := cmd.Flags().GetString("transport"); transport != "" {
			cfg.MCP.Transport = transport
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.MCP.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to start surface: %w", err)
		}
		defer a.Close()

		srv := mcpAdapter.NewServer(a.surface, mcpAdapter.WithLogger(logger))
		switch cfg.MCP.Transport {
		case "sse":
			return srv.ServeSSE(ctx, cfg.MCP.Addr)
		case "stdio":
			return srv.ServeStdio()
		default:
			return fmt.Errorf("unknown mcp transport %q", cfg.MCP.Transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "", "Transport to use: stdio or sse (overrides mcp.transport)")
	mcpCmd.Flags().String("addr", "", "Address for the SSE transport (overrides mcp.addr)")
}
