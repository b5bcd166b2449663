package surface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/activation"
	"github.com/dredimura/surface/pkg/batch"
	"github.com/dredimura/surface/pkg/bridge"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/param"
	"github.com/dredimura/surface/pkg/ports"
)

// Surface is the high-level entry point: one control surface bound to one host.
// It wires the parameter bindings, the batch scheduler and the activation
// machine together and gates input on the activation phase.
type Surface struct {
	Name string

	host      ports.Host
	closer    func() error
	registry  *param.Registry
	scheduler *batch.Scheduler
	machine   *activation.Machine
	presets   ports.PresetSource

	// present caches host presence so snapshots never probe the transport.
	present atomic.Bool

	hooks  domain.LifecycleHooks
	logger *slog.Logger

	mu        sync.Mutex
	listeners []func(Snapshot)
	closeOnce sync.Once
}

// Snapshot is a point-in-time view of the whole surface.
type Snapshot struct {
	Name        string                 `json:"name,omitempty"`
	HostPresent bool                   `json:"hostPresent"`
	Phase       domain.Phase           `json:"phase"`
	Interactive bool                   `json:"interactive"`
	Activation  domain.ActivationState `json:"activation"`
	Parameters  []param.Reading        `json:"parameters"`
}

// Option defines a functional option for configuring the Surface.
type Option func(*Surface)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Surface) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surface) {
		s.logger = logger
	}
}

// WithPresets sets the preset library used by Recall.
func WithPresets(src ports.PresetSource) Option {
	return func(s *Surface) {
		s.presets = src
	}
}

// WithName labels the surface in snapshots and logs.
func WithName(name string) Option {
	return func(s *Surface) {
		s.Name = name
	}
}

// New builds a surface over host. A nil host means standalone mode.
func New(host ports.Host, opts ...Option) *Surface {
	if host == nil {
		host = bridge.Standalone()
	}
	s := &Surface{
		host:   host,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.present.Store(host.HostPresent())
	s.registry = param.NewRegistry(host, param.WithLogger(s.logger), param.WithLifecycleHooks(s.hooks))
	s.scheduler = batch.NewScheduler(s.registry, batch.WithLogger(s.logger), batch.WithLifecycleHooks(s.hooks))
	s.machine = activation.NewMachine(host, activation.WithLogger(s.logger), activation.WithLifecycleHooks(s.hooks))
	s.machine.OnChange(func(activation.Change) { s.changed() })
	return s
}

// Connect dials the host behind transport and builds a surface over it.
// When the transport reports no host the surface runs standalone.
func Connect(ctx context.Context, transport ports.Transport, opts ...Option) (*Surface, error) {
	probe := &Surface{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(probe)
	}

	relay, err := bridge.Dial(ctx, transport, bridge.WithLogger(probe.logger), bridge.WithLifecycleHooks(probe.hooks))
	if errors.Is(err, domain.ErrHostAbsent) {
		probe.logger.Info("No host attached, running standalone")
		return New(nil, opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host: %w", err)
	}

	s := New(relay, opts...)
	s.closer = relay.Close
	return s, nil
}

// Start requests the host's activation state.
func (s *Surface) Start() {
	s.machine.Start()
	s.present.Store(!s.machine.Standalone())
}

// Host returns the host capability the surface is bound to.
func (s *Surface) Host() ports.Host { return s.host }

// Activation returns the activation machine.
func (s *Surface) Activation() *activation.Machine { return s.machine }

// Slider mounts a slider binding for id.
func (s *Surface) Slider(id domain.ParameterID, def float64) (*param.Slider, error) {
	sl, err := s.registry.MountSlider(id, def)
	if err != nil {
		return nil, err
	}
	sl.OnChange(func(float64) { s.changed() })
	return sl, nil
}

// Toggle mounts a toggle binding for id.
func (s *Surface) Toggle(id domain.ParameterID, def bool) (*param.Toggle, error) {
	t, err := s.registry.MountToggle(id, def)
	if err != nil {
		return nil, err
	}
	t.OnChange(func(bool) { s.changed() })
	return t, nil
}

// Unmount releases the binding for id.
func (s *Surface) Unmount(id domain.ParameterID) {
	s.registry.Unmount(id)
}

// SetNormalized writes v to id. It fails with domain.ErrSurfaceLocked while
// the surface is gated; unknown ids are a silent no-op.
func (s *Surface) SetNormalized(id domain.ParameterID, v float64) error {
	if err := s.gate(); err != nil {
		return err
	}
	s.registry.ApplyNormalized(id, v)
	return nil
}

// Gesture opens or closes a drag gesture on a mounted slider.
func (s *Surface) Gesture(id domain.ParameterID, phase string) error {
	if err := s.gate(); err != nil {
		return err
	}
	sl, ok := s.registry.Slider(id)
	if !ok {
		if _, isToggle := s.registry.Toggle(id); isToggle {
			return fmt.Errorf("gesture on %q: %w", id, domain.ErrKindMismatch)
		}
		return fmt.Errorf("gesture on %q: %w", id, domain.ErrUnknownParameter)
	}
	switch phase {
	case domain.GestureBegin:
		sl.DragStart()
	case domain.GestureEnd:
		sl.DragEnd()
	default:
		return fmt.Errorf("%w: gesture phase %q", domain.ErrMalformedPayload, phase)
	}
	return nil
}

// Apply schedules a batch of writes.
func (s *Surface) Apply(updates []domain.BatchUpdate, opts ...batch.ApplyOption) (*batch.Run, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	return s.scheduler.Apply(updates, opts...), nil
}

// Recall applies the preset with the given id.
func (s *Surface) Recall(ctx context.Context, presetID string, opts ...batch.ApplyOption) (*batch.Run, error) {
	if err := s.gate(); err != nil {
		return nil, err
	}
	if s.presets == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPresetNotFound, presetID)
	}
	preset, err := s.presets.Get(ctx, presetID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Recalling preset", "preset", preset.ID, "updates", len(preset.Updates))
	return s.scheduler.Apply(preset.Updates, opts...), nil
}

// Presets lists the preset library, or nothing when none is configured.
func (s *Surface) Presets(ctx context.Context) ([]domain.Preset, error) {
	if s.presets == nil {
		return nil, nil
	}
	return s.presets.List(ctx)
}

// Snapshot returns the current state of the surface.
func (s *Surface) Snapshot() Snapshot {
	state := s.machine.State()
	return Snapshot{
		Name:        s.Name,
		HostPresent: s.present.Load(),
		Phase:       state.Phase(),
		Interactive: state.Interactive(),
		Activation:  state,
		Parameters:  s.registry.Readings(),
	}
}

// OnChange registers fn to receive a snapshot after every binding or activation change.
func (s *Surface) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Close unmounts every binding and detaches from the host.
func (s *Surface) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.present.Store(false)
		s.registry.Close()
		s.machine.Close()
		if s.closer != nil {
			err = s.closer()
		}
	})
	return err
}

func (s *Surface) gate() error {
	if !s.machine.Interactive() {
		return domain.ErrSurfaceLocked
	}
	return nil
}

func (s *Surface) changed() {
	s.mu.Lock()
	listeners := s.listeners
	s.mu.Unlock()
	if len(listeners) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range listeners {
		fn(snap)
	}
}
