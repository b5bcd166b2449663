package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/bridge"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

// Host is the authority over parameter values and license state.
type Host struct {
	transport ports.Transport
	logger    *slog.Logger
	licensing *Licensing

	mu       sync.Mutex
	order    []domain.ParameterID
	params   map[domain.ParameterID]*parameter
	gestures map[domain.ParameterID]float64
	history  []UndoEntry
	watchers []func(Change)

	wg sync.WaitGroup
}

type parameter struct {
	spec       ParameterSpec
	normalized float64
}

// UndoEntry is one completed gesture.
type UndoEntry struct {
	ID   domain.ParameterID `json:"id"`
	From float64            `json:"from"`
	To   float64            `json:"to"`
}

// Change is reported to watchers after any parameter value changes.
type Change struct {
	ID         domain.ParameterID
	Normalized float64
	Value      float64
	Origin     domain.Origin
}

// Option configures the Host.
type Option func(*Host)

// WithLogger configures a logger for the Host.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithLicensing enables license gating. Without it the host reports
// activation as not configured.
func WithLicensing(l *Licensing) Option {
	return func(h *Host) {
		h.licensing = l
	}
}

// New creates a host serving layout on the host end of transport.
func New(transport ports.Transport, layout []ParameterSpec, opts ...Option) (*Host, error) {
	h := &Host{
		transport: transport,
		logger:    logging.NewNop(),
		params:    make(map[domain.ParameterID]*parameter, len(layout)),
		gestures:  make(map[domain.ParameterID]float64),
	}
	for _, opt := range opts {
		opt(h)
	}

	for _, spec := range layout {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid layout: %w", err)
		}
		if _, dup := h.params[spec.ID]; dup {
			return nil, fmt.Errorf("layout parameter %q: %w", spec.ID, domain.ErrDuplicateParameter)
		}
		if spec.Kind == "" {
			spec.Kind = domain.KindContinuous
		}
		p := &parameter{spec: spec}
		if spec.Kind == domain.KindBoolean {
			p.normalized = domain.BoolValue(spec.Default >= 0.5)
		} else {
			p.normalized = ToNormalized(spec.Range, Snap(spec.Range, spec.Default))
		}
		h.params[spec.ID] = p
		h.order = append(h.order, spec.ID)
	}
	return h, nil
}

// Run serves UI requests until ctx is done or the transport closes.
// In-flight license requests are waited for before returning.
func (h *Host) Run(ctx context.Context) error {
	inbound, err := h.transport.Receive(ctx)
	if err != nil {
		return fmt.Errorf("failed to receive: %w", err)
	}
	defer h.wg.Wait()

	h.logger.Info("Host running", "parameters", len(h.order), "licensing", h.licensing != nil)
	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-inbound:
			if !ok {
				return nil
			}
			h.handle(ctx, env)
		}
	}
}

func (h *Host) handle(ctx context.Context, env domain.Envelope) {
	switch env.Event {
	case domain.EventParameterSync:
		h.send(ctx, domain.EventParameterManifest, domain.ManifestPayload{Parameters: h.Parameters()})

	case domain.EventParameterSet:
		var p domain.ParameterSetPayload
		if err := bridge.Decode(env.Payload, &p); err != nil {
			h.logger.Warn("Host: malformed parameter.set", "err", err)
			return
		}
		if _, err := h.SetNormalized(ctx, p.ID, p.Value, domain.OriginLocal); err != nil {
			h.logger.Debug("Host: set rejected", "param", p.ID, "err", err)
		}

	case domain.EventParameterGesture:
		var p domain.GesturePayload
		if err := bridge.Decode(env.Payload, &p); err != nil {
			h.logger.Warn("Host: malformed parameter.gesture", "err", err)
			return
		}
		h.gesture(p)

	case domain.EventGetActivationStatus:
		h.send(ctx, domain.EventActivationState, h.activationState(ctx))

	case domain.EventActivateLicense:
		var p domain.ActivateRequest
		if err := bridge.Decode(env.Payload, &p); err != nil {
			p = domain.ActivateRequest{}
		}
		h.async(func() {
			h.send(ctx, domain.EventActivationResult, h.activate(ctx, p.Code))
		})

	case domain.EventDeactivateLicense:
		h.async(func() {
			h.send(ctx, domain.EventDeactivationResult, h.deactivate(ctx))
		})

	default:
		h.logger.Debug("Host: ignoring event", "event", env.Event)
	}
}

// async runs license work off the request loop so parameter traffic keeps flowing.
func (h *Host) async(fn func()) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn()
	}()
}

func (h *Host) send(ctx context.Context, event string, payload any) {
	if err := h.transport.Send(ctx, domain.Envelope{Event: event, Payload: payload}); err != nil {
		h.logger.Warn("Host: send failed", "event", event, "err", err)
	}
}

func (h *Host) activationState(ctx context.Context) domain.ActivationStatePayload {
	if h.licensing == nil {
		return domain.ActivationStatePayload{}
	}
	return h.licensing.State(ctx)
}

func (h *Host) activate(ctx context.Context, code string) domain.ActivationResultPayload {
	if h.licensing == nil {
		return domain.ActivationResultPayload{Status: string(domain.StatusNotConfigured)}
	}
	if code == "" {
		return domain.ActivationResultPayload{Status: string(domain.StatusInvalid)}
	}
	return h.licensing.Activate(ctx, code)
}

func (h *Host) deactivate(ctx context.Context) domain.ActivationResultPayload {
	if h.licensing == nil {
		return domain.ActivationResultPayload{Status: string(domain.StatusNotConfigured)}
	}
	return h.licensing.Deactivate(ctx)
}

// Parameters returns the current state of every parameter in layout order.
func (h *Host) Parameters() []domain.ParameterState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.ParameterState, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.stateLocked(h.params[id]))
	}
	return out
}

// Parameter returns the current state of one parameter.
func (h *Host) Parameter(id domain.ParameterID) (domain.ParameterState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.params[id]
	if !ok {
		return domain.ParameterState{}, false
	}
	return h.stateLocked(p), true
}

// Value returns a parameter in range units.
func (h *Host) Value(id domain.ParameterID) (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.params[id]
	if !ok {
		return 0, false
	}
	return p.value(), true
}

// SetNormalized stores v (quantized to the parameter's range) and notifies
// the UI. It returns the stored normalized value.
func (h *Host) SetNormalized(ctx context.Context, id domain.ParameterID, v float64, origin domain.Origin) (float64, error) {
	h.mu.Lock()
	p, ok := h.params[id]
	if !ok {
		h.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownParameter, id)
	}
	if p.spec.Kind == domain.KindBoolean {
		p.normalized = domain.BoolValue(v >= 0.5)
	} else {
		p.normalized = Quantize(p.spec.Range, v)
	}
	state := h.stateLocked(p)
	change := Change{ID: id, Normalized: p.normalized, Value: p.value(), Origin: origin}
	watchers := h.watchers
	h.mu.Unlock()

	// The UI is always told the stored value, including the echo of its own write.
	h.send(ctx, domain.EventParameterUpdate, state)
	for _, fn := range watchers {
		fn(change)
	}
	return state.Value, nil
}

// SetValue stores a value given in range units, as host automation would.
func (h *Host) SetValue(ctx context.Context, id domain.ParameterID, v float64) (float64, error) {
	h.mu.Lock()
	p, ok := h.params[id]
	h.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownParameter, id)
	}
	if p.spec.Kind == domain.KindBoolean {
		return h.SetNormalized(ctx, id, v, domain.OriginHost)
	}
	return h.SetNormalized(ctx, id, ToNormalized(p.spec.Range, Snap(p.spec.Range, v)), domain.OriginHost)
}

// Watch registers fn to run after every parameter change.
func (h *Host) Watch(fn func(Change)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watchers = append(h.watchers, fn)
}

func (h *Host) stateLocked(p *parameter) domain.ParameterState {
	s := domain.ParameterState{
		ID:      p.spec.ID,
		Kind:    p.spec.Kind,
		Value:   p.normalized,
		Default: p.spec.Default,
	}
	if p.spec.Kind != domain.KindBoolean {
		r := p.spec.Range
		s.Range = &r
	}
	return s
}

func (p *parameter) value() float64 {
	if p.spec.Kind == domain.KindBoolean {
		return p.normalized
	}
	return FromNormalized(p.spec.Range, p.normalized)
}
