package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

const (
	// presenceTimeout bounds a single presence probe of a networked transport.
	presenceTimeout = 500 * time.Millisecond
	// flushTimeout bounds how long Close waits for queued events to reach the host.
	flushTimeout = 2 * time.Second
)

// Relay is the host-present bridge. It implements ports.Host.
type Relay struct {
	transport ports.Transport
	logger    *slog.Logger
	hooks     domain.LifecycleHooks

	mu       sync.RWMutex
	handlers map[string]*subscriberList[ports.Handler]
	sliders  map[domain.ParameterID]*sliderRelay
	toggles  map[domain.ParameterID]*toggleRelay

	outbox   *mailbox
	sent     chan struct{}
	manifest chan struct{}
	gotOnce  sync.Once

	cancel context.CancelFunc
	closed atomic.Bool
}

// Option configures the Relay.
type Option func(*Relay)

// WithLogger configures a logger for the Relay.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Relay) {
		r.hooks = hooks
	}
}

// Dial attaches a Relay to transport and waits for the host's parameter manifest.
// It returns domain.ErrHostAbsent when the transport has no host, in which case
// callers should use Standalone. ctx bounds the handshake only.
func Dial(ctx context.Context, transport ports.Transport, opts ...Option) (*Relay, error) {
	r := &Relay{
		transport: transport,
		logger:    logging.NewNop(),
		handlers:  make(map[string]*subscriberList[ports.Handler]),
		sliders:   make(map[domain.ParameterID]*sliderRelay),
		toggles:   make(map[domain.ParameterID]*toggleRelay),
		outbox:    newMailbox(),
		sent:      make(chan struct{}),
		manifest:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if !transport.Present(ctx) {
		return nil, domain.ErrHostAbsent
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	inbound, err := transport.Receive(runCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open transport: %w", err)
	}

	go r.dispatch(inbound)
	go r.send(runCtx)

	r.Publish(domain.EventParameterSync, struct{}{})

	select {
	case <-r.manifest:
		r.mu.RLock()
		r.logger.Debug("Relay: manifest received", "sliders", len(r.sliders), "toggles", len(r.toggles))
		r.mu.RUnlock()
		return r, nil
	case <-ctx.Done():
		_ = r.Close()
		return nil, fmt.Errorf("waiting for host manifest: %w", ctx.Err())
	}
}

// HostPresent reports whether the host is still attached.
func (r *Relay) HostPresent() bool {
	if r.closed.Load() {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	return r.transport.Present(ctx)
}

// Subscribe registers handler for event.
func (r *Relay) Subscribe(event string, handler ports.Handler) ports.UnsubscribeFunc {
	r.mu.Lock()
	list, ok := r.handlers[event]
	if !ok {
		list = &subscriberList[ports.Handler]{}
		r.handlers[event] = list
	}
	r.mu.Unlock()
	return list.add(handler)
}

// Publish queues an event for the host. It never blocks and never fails.
func (r *Relay) Publish(event string, payload any) {
	if r.closed.Load() {
		return
	}
	if !r.outbox.put(domain.Envelope{Event: event, Payload: payload}) {
		r.logger.Debug("Relay: publish after close dropped", "event", event)
	}
}

// Slider returns the relay of a declared continuous parameter.
func (r *Relay) Slider(id domain.ParameterID) (ports.SliderRelay, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sliders[id]
	if !ok {
		return nil, false
	}
	return s, true
}

// Toggle returns the relay of a declared boolean parameter.
func (r *Relay) Toggle(id domain.ParameterID) (ports.ToggleRelay, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.toggles[id]
	if !ok {
		return nil, false
	}
	return t, true
}

// Close detaches from the host. Pending outbound events are flushed first.
// It waits for the sender only, so a handler may call it. The dispatcher exits
// once the transport closes its inbound channel and runs no handler after Close.
func (r *Relay) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.outbox.close()
	select {
	case <-r.sent:
	case <-time.After(flushTimeout):
		r.logger.Warn("Relay: outbound flush timed out")
	}
	r.cancel()
	err := r.transport.Close()
	<-r.sent
	return err
}

func (r *Relay) send(ctx context.Context) {
	defer close(r.sent)
	r.outbox.pump(ctx.Done(), func(env domain.Envelope) bool {
		if err := r.transport.Send(ctx, env); err != nil {
			r.logger.Warn("Relay: send failed", "event", env.Event, "err", err)
		}
		return true
	})
}

func (r *Relay) dispatch(inbound <-chan domain.Envelope) {
	for env := range inbound {
		if r.closed.Load() {
			continue
		}
		if r.hooks.OnHostMessage != nil {
			r.hooks.OnHostMessage(&domain.MessageEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventHostMessage},
				Event:     env.Event,
			})
		}

		switch env.Event {
		case domain.EventParameterManifest:
			r.applyManifest(env.Payload)
		case domain.EventParameterUpdate:
			r.applyUpdate(env.Payload)
		}

		r.mu.RLock()
		list := r.handlers[env.Event]
		r.mu.RUnlock()
		if list == nil {
			continue
		}
		list.each(func(h ports.Handler) {
			r.invoke(env.Event, h, env.Payload)
		})
	}
}

// invoke runs one handler; a panicking handler must not stop the dispatcher.
func (r *Relay) invoke(event string, h ports.Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Relay: handler panicked", "event", event, "panic", rec)
		}
	}()
	h(payload)
}

func (r *Relay) applyManifest(payload any) {
	var manifest domain.ManifestPayload
	if err := Decode(payload, &manifest); err != nil {
		r.logger.Warn("Relay: malformed manifest", "err", err)
		return
	}

	// A repeated manifest refreshes known relays; listeners run after the lock is released.
	var refresh []func()
	r.mu.Lock()
	for _, p := range manifest.Parameters {
		switch p.Kind {
		case domain.KindBoolean:
			on := p.Value >= 0.5
			if t, ok := r.toggles[p.ID]; ok {
				refresh = append(refresh, func() { t.store(on) })
				continue
			}
			r.toggles[p.ID] = &toggleRelay{relay: r, id: p.ID, value: on}
		default:
			rng := domain.Range{Min: 0, Max: 1}
			if p.Range != nil {
				rng = *p.Range
			}
			v := p.Value
			if s, ok := r.sliders[p.ID]; ok {
				refresh = append(refresh, func() { s.store(v) })
				continue
			}
			r.sliders[p.ID] = &sliderRelay{relay: r, id: p.ID, value: domain.ClampNormalized(v), rng: rng}
		}
	}
	r.mu.Unlock()

	for _, fn := range refresh {
		fn()
	}

	r.gotOnce.Do(func() { close(r.manifest) })
}

func (r *Relay) applyUpdate(payload any) {
	var update domain.ParameterState
	if err := Decode(payload, &update); err != nil {
		r.logger.Warn("Relay: malformed parameter update", "err", err)
		return
	}

	r.mu.RLock()
	s, isSlider := r.sliders[update.ID]
	t, isToggle := r.toggles[update.ID]
	r.mu.RUnlock()

	switch {
	case isSlider:
		s.store(update.Value)
	case isToggle:
		t.store(update.Value >= 0.5)
	default:
		r.logger.Debug("Relay: update for undeclared parameter", "param", update.ID)
	}
}

// sliderRelay caches the host value of one continuous parameter.
type sliderRelay struct {
	relay *Relay
	id    domain.ParameterID
	rng   domain.Range

	mu        sync.Mutex
	value     float64
	listeners subscriberList[func()]
}

func (s *sliderRelay) NormalizedValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// SetNormalizedValue updates the cache optimistically and forwards the write.
func (s *sliderRelay) SetNormalizedValue(v float64) {
	v = domain.ClampNormalized(v)
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	s.relay.Publish(domain.EventParameterSet, domain.ParameterSetPayload{ID: s.id, Kind: domain.KindContinuous, Value: v})
}

func (s *sliderRelay) DragStarted() {
	s.relay.Publish(domain.EventParameterGesture, domain.GesturePayload{ID: s.id, Phase: domain.GestureBegin})
}

func (s *sliderRelay) DragEnded() {
	s.relay.Publish(domain.EventParameterGesture, domain.GesturePayload{ID: s.id, Phase: domain.GestureEnd})
}

func (s *sliderRelay) Range() domain.Range { return s.rng }

func (s *sliderRelay) OnValueChanged(fn func()) ports.UnsubscribeFunc {
	return s.listeners.add(fn)
}

// store applies a host-originated value and notifies listeners.
func (s *sliderRelay) store(v float64) {
	s.mu.Lock()
	s.value = domain.ClampNormalized(v)
	s.mu.Unlock()
	s.listeners.each(func(fn func()) {
		s.relay.invoke(domain.EventParameterUpdate, func(any) { fn() }, nil)
	})
}

// toggleRelay caches the host value of one boolean parameter.
type toggleRelay struct {
	relay *Relay
	id    domain.ParameterID

	mu        sync.Mutex
	value     bool
	listeners subscriberList[func()]
}

func (t *toggleRelay) Value() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *toggleRelay) SetValue(v bool) {
	t.mu.Lock()
	t.value = v
	t.mu.Unlock()
	t.relay.Publish(domain.EventParameterSet, domain.ParameterSetPayload{ID: t.id, Kind: domain.KindBoolean, Value: domain.BoolValue(v)})
}

func (t *toggleRelay) OnValueChanged(fn func()) ports.UnsubscribeFunc {
	return t.listeners.add(fn)
}

func (t *toggleRelay) store(v bool) {
	t.mu.Lock()
	t.value = v
	t.mu.Unlock()
	t.listeners.each(func(fn func()) {
		t.relay.invoke(domain.EventParameterUpdate, func(any) { fn() }, nil)
	})
}
