package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	redisAdapter "github.com/dredimura/surface/pkg/adapters/redis"
	"github.com/dredimura/surface/pkg/host"
	"github.com/spf13/cobra"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run a standalone audio host over Redis",
	Long: `Runs the parameter host on the Redis bridge so that surfaces started with
bridge.transport=redis can attach to it. Only one host may hold a channel prefix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := &app{cfg: cfg, logger: logger}
		defer a.Close()

		transport, err := redisAdapter.NewHostTransport(ctx, a.redisClient(), a.transportOptions()...)
		if errors.Is(err, redisAdapter.ErrHostTaken) {
			return fmt.Errorf("another host is serving prefix %q: %w", cfg.Redis.Prefix, err)
		}
		if err != nil {
			return err
		}
		defer transport.Close()

		h, err := a.newHost(ctx, transport)
		if err != nil {
			return err
		}
		h.Watch(func(c host.Change) {
			logger.Debug("Parameter changed", "param", c.ID, "value", c.Value, "origin", c.Origin)
		})

		logger.Info("Host attached", "redis", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		return h.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(hostCmd)
}
