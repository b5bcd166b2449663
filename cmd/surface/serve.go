package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dredimura/surface/internal/presentation/tui"
	httpAdapter "github.com/dredimura/surface/pkg/adapters/http"
	"github.com/dredimura/surface/pkg/adapters/remote"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the control surface over HTTP",
	Long: `Starts the control surface and exposes it as a JSON API with a server-sent
event stream of snapshots. With the pipe transport the host runs in-process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if isTerminal() {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to start surface: %w", err)
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.Warn("Surface closed with errors", "err", err)
			}
		}()

		opts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
		if a.metrics != nil {
			opts = append(opts, httpAdapter.WithMetrics(a.metrics.Handler()))
		}
		if cfg.HTTP.MountAuthority && a.authority != nil {
			opts = append(opts, httpAdapter.WithMount("/license", remote.NewHandler(a.authority, logger)))
		}

		if a.presets != nil && cfg.Presets.Watch {
			changes, err := a.presets.Watch(ctx)
			if err != nil {
				logger.Warn("Preset watch unavailable", "err", err)
			} else {
				go func() {
					for id := range changes {
						logger.Info("Preset changed", "preset", id)
					}
				}()
			}
		}

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpAdapter.NewHandler(a.surface, opts...),
			ReadHeaderTimeout: 10 * time.Second,
			// Event streams end with the signal context.
			BaseContext: func(net.Listener) context.Context { return ctx },
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Surface server listening", "address", srv.Addr, "transport", cfg.Bridge.Transport)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Shutdown signal received")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			logger.Info("Surface server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides http.addr)")
}
