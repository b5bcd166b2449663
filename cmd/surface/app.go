package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dredimura/surface"
	"github.com/dredimura/surface/internal/config"
	"github.com/dredimura/surface/pkg/adapters/loam"
	"github.com/dredimura/surface/pkg/adapters/memory"
	redisAdapter "github.com/dredimura/surface/pkg/adapters/redis"
	"github.com/dredimura/surface/pkg/adapters/remote"
	"github.com/dredimura/surface/pkg/bridge"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/host"
	"github.com/dredimura/surface/pkg/observability"
	"github.com/dredimura/surface/pkg/persistence/middleware"
	"github.com/dredimura/surface/pkg/ports"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// app is one running surface with everything it was wired to.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	surface *surface.Surface
	presets *loam.Library
	metrics *observability.Metrics

	// authority is set when licensing runs in this process against the in-memory table.
	authority *memory.Authority

	redis   *backend.Client
	cancel  context.CancelFunc
	hostErr chan error
}

// newApp builds the surface selected by cfg.Bridge.Transport and mounts the layout.
// With the pipe transport the host runs in-process.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	hooks := observability.LogHooks(logger)
	if cfg.Metrics.Enabled {
		a.metrics = observability.NewMetrics(prometheus.NewRegistry())
		hooks = hooks.Merge(a.metrics.Hooks())
	}

	opts := []surface.Option{
		surface.WithName(cfg.Plugin.Name),
		surface.WithLogger(logger),
		surface.WithLifecycleHooks(hooks),
	}
	if cfg.Presets.Dir != "" {
		lib, err := loam.Open(cfg.Presets.Dir)
		if err != nil {
			return nil, err
		}
		a.presets = lib
		opts = append(opts, surface.WithPresets(lib))
	}

	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	var transport ports.Transport
	switch cfg.Bridge.Transport {
	case config.TransportPipe:
		ui, hostEnd := bridge.NewPipe()
		h, err := a.newHost(ctx, hostEnd)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.hostErr = make(chan error, 1)
		go func() { a.hostErr <- h.Run(runCtx) }()
		transport = ui
	case config.TransportRedis:
		transport = redisAdapter.NewUITransport(a.redisClient(), a.transportOptions()...)
	}

	if transport == nil {
		a.surface = surface.New(nil, opts...)
	} else {
		dialCtx, dialCancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
		surf, err := surface.Connect(dialCtx, transport, opts...)
		dialCancel()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.surface = surf
	}

	if err := mountLayout(a.surface, cfg.Layout()); err != nil {
		a.Close()
		return nil, err
	}
	a.surface.Start()
	return a, nil
}

// newHost creates a host on transport, with licensing when it is enabled.
func (a *app) newHost(ctx context.Context, transport ports.Transport) (*host.Host, error) {
	opts := []host.Option{host.WithLogger(a.logger)}
	if a.cfg.Licensing.Enabled {
		lic, err := a.newLicensing()
		if err != nil {
			return nil, err
		}
		status := lic.Validate(ctx)
		a.logger.Info("License validated", "machine", lic.MachineID(), "status", status)
		opts = append(opts, host.WithLicensing(lic))
	}
	return host.New(transport, a.cfg.Layout(), opts...)
}

func (a *app) newLicensing() (*host.Licensing, error) {
	cfg := a.cfg

	var store ports.ActivationStore
	switch cfg.Licensing.Store {
	case "redis":
		store = redisAdapter.NewFromClient(a.redisClient(),
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithTTL(cfg.RecordTTL()),
		)
	default:
		store = memory.NewStore()
	}

	mws := []middleware.Middleware{middleware.NewAuditMiddleware(a.logger)}
	active, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	store = middleware.Chain(store, mws...)

	var authority ports.LicenseAuthority
	switch cfg.Licensing.Authority {
	case "remote":
		authority = remote.NewClient(cfg.Licensing.RemoteURL, remote.WithLogger(a.logger))
	default:
		licenses, err := cfg.Licenses()
		if err != nil {
			return nil, err
		}
		a.authority = memory.NewAuthority(licenses)
		authority = a.authority
	}

	machineID := cfg.Plugin.MachineID
	if machineID == "" {
		machineID = uuid.NewString()
		a.logger.Warn("No machine id configured, using an ephemeral one", "machine", machineID)
	}
	return host.NewLicensing(authority, store, machineID, host.WithLicensingLogger(a.logger)), nil
}

func (a *app) transportOptions() []redisAdapter.TransportOption {
	opts := []redisAdapter.TransportOption{
		redisAdapter.WithChannelPrefix(a.cfg.Redis.Prefix),
		redisAdapter.WithTransportLogger(a.logger),
	}
	if ttl := a.cfg.PresenceTTL(); ttl > 0 {
		opts = append(opts, redisAdapter.WithPresenceTTL(ttl))
	}
	return opts
}

func (a *app) redisClient() *backend.Client {
	if a.redis == nil {
		a.redis = backend.NewClient(&backend.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
	}
	return a.redis
}

// Close detaches the surface, stops the in-process host and closes Redis.
func (a *app) Close() error {
	var errs []error
	if a.surface != nil {
		errs = append(errs, a.surface.Close())
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.hostErr != nil {
		errs = append(errs, <-a.hostErr)
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}

// mountLayout mounts one binding per declared parameter at its default.
func mountLayout(s *surface.Surface, layout []host.ParameterSpec) error {
	for _, spec := range layout {
		var err error
		if spec.Kind == domain.KindBoolean {
			_, err = s.Toggle(spec.ID, spec.Default >= 0.5)
		} else {
			_, err = s.Slider(spec.ID, host.ToNormalized(spec.Range, host.Snap(spec.Range, spec.Default)))
		}
		if err != nil {
			return fmt.Errorf("failed to mount %q: %w", spec.ID, err)
		}
	}
	return nil
}
