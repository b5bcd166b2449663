package activation

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/bridge"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/mirror"
	"github.com/dredimura/surface/pkg/ports"
)

// Change describes one update of the machine state.
type Change struct {
	From   domain.Phase
	To     domain.Phase
	Status domain.Status // set when the change was caused by a host result
	Failed bool          // the host rejected the pending request
	State  domain.ActivationState
}

// Machine is the activation state machine. It is safe for concurrent use.
type Machine struct {
	host   ports.Bridge
	logger *slog.Logger
	hooks  domain.LifecycleHooks

	inflight mirror.Flag

	mu         sync.Mutex
	state      domain.ActivationState
	standalone bool // decided once by Start
	listeners  []func(Change)

	unsubs    []ports.UnsubscribeFunc
	closeOnce sync.Once
}

// Option configures the Machine.
type Option func(*Machine)

// WithLogger configures a logger for the Machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// NewMachine subscribes to the host's license events. Call Start to request
// the initial state.
func NewMachine(host ports.Bridge, opts ...Option) *Machine {
	m := &Machine{
		host:   host,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.unsubs = []ports.UnsubscribeFunc{
		host.Subscribe(domain.EventActivationState, m.onState),
		host.Subscribe(domain.EventActivationResult, m.onActivationResult),
		host.Subscribe(domain.EventDeactivationResult, m.onDeactivationResult),
	}
	return m
}

// Start asks the host for its current license state. Without a host the
// surface is unconditionally usable and nothing is published. Host presence
// is probed here only; later requests rely on the decision made now.
func (m *Machine) Start() {
	present := m.host.HostPresent()
	m.mu.Lock()
	m.standalone = !present
	m.mu.Unlock()

	if !present {
		m.logger.Info("Activation skipped: no host")
		m.update(func(s *domain.ActivationState) {
			s.Configured = false
			s.Activated = true
		}, "", false)
		return
	}
	m.host.Publish(domain.EventGetActivationStatus, struct{}{})
}

// Activate sends code to the host for activation.
func (m *Machine) Activate(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.ErrEmptyCode
	}
	m.mu.Lock()
	switch phase := m.state.Phase(); {
	case m.standalone:
		m.mu.Unlock()
		return nil
	case m.inflight.Raised():
		m.mu.Unlock()
		return domain.ErrRequestInFlight
	case phase == domain.PhaseUnconfigured:
		m.mu.Unlock()
		return domain.ErrActivationNotConfigured
	case phase == domain.PhaseUnlocked:
		m.mu.Unlock()
		return domain.ErrAlreadyActivated
	}
	m.inflight.TryRaise()
	from := m.state.Phase()
	m.state.Loading = true
	m.state.Pending = domain.RequestActivate
	m.state.LastError = ""
	change := m.changeLocked(from, "", false)
	listeners := m.listeners
	m.mu.Unlock()

	m.logger.Debug("Activation requested")
	m.host.Publish(domain.EventActivateLicense, domain.ActivateRequest{Code: code})
	m.notify(listeners, change)
	return nil
}

// Deactivate asks the host to release the current activation.
func (m *Machine) Deactivate() error {
	m.mu.Lock()
	if m.standalone {
		m.mu.Unlock()
		return nil
	}
	if m.inflight.Raised() {
		m.mu.Unlock()
		return domain.ErrRequestInFlight
	}
	from := m.state.Phase()
	if from != domain.PhaseUnlocked {
		m.mu.Unlock()
		return domain.ErrNotActivated
	}
	m.inflight.TryRaise()
	m.state.Loading = true
	m.state.Pending = domain.RequestDeactivate
	change := m.changeLocked(from, "", false)
	listeners := m.listeners
	m.mu.Unlock()

	m.logger.Debug("Deactivation requested")
	m.host.Publish(domain.EventDeactivateLicense, struct{}{})
	m.notify(listeners, change)
	return nil
}

// ClearError drops the last error message.
func (m *Machine) ClearError() {
	m.mu.Lock()
	if m.state.LastError == "" {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.update(func(s *domain.ActivationState) { s.LastError = "" }, "", false)
}

// Standalone reports whether Start found no host.
func (m *Machine) Standalone() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.standalone
}

// State returns a copy of the cached state.
func (m *Machine) State() domain.ActivationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

func (m *Machine) Phase() domain.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Phase()
}

// Interactive reports whether the control surface accepts input.
func (m *Machine) Interactive() bool {
	return m.Phase().Interactive()
}

// OnChange registers fn to run after every state update.
func (m *Machine) OnChange(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Close drops the host subscriptions. It is safe to call more than once.
func (m *Machine) Close() {
	m.closeOnce.Do(func() {
		for _, unsub := range m.unsubs {
			unsub()
		}
	})
}

func (m *Machine) onState(payload any) {
	var p domain.ActivationStatePayload
	if err := bridge.Decode(payload, &p); err != nil {
		m.logger.Warn("Activation: malformed state", "err", err)
		return
	}
	m.update(func(s *domain.ActivationState) {
		s.Configured = p.IsConfigured
		s.Activated = p.IsActivated
		s.Info = p.Info
	}, "", false)
}

func (m *Machine) onActivationResult(payload any) {
	result := decodeResult(payload)
	status := domain.ParseStatus(result.Status)
	succeeded := domain.ActivationSucceeded(status)

	m.apply(status, func(s *domain.ActivationState) bool {
		pending := s.Loading && s.Pending == domain.RequestActivate
		s.LastStatus = status
		if !pending && !succeeded {
			m.logger.Debug("Activation: late failure recorded", "status", status)
			return false
		}
		if pending {
			s.Loading = false
			s.Pending = domain.RequestNone
			m.inflight.Lower()
		}
		s.Activated = succeeded
		s.Info = result.Info
		if succeeded {
			s.LastError = ""
			return false
		}
		s.LastError = domain.StatusMessage(status)
		return true
	})
	m.logger.Info("Activation result", "status", status)
}

func (m *Machine) onDeactivationResult(payload any) {
	result := decodeResult(payload)
	status := domain.ParseStatus(result.Status)
	succeeded := domain.DeactivationSucceeded(status)

	m.apply(status, func(s *domain.ActivationState) bool {
		s.LastStatus = status
		if !(s.Loading && s.Pending == domain.RequestDeactivate) {
			return false
		}
		s.Loading = false
		s.Pending = domain.RequestNone
		m.inflight.Lower()
		if succeeded {
			s.Activated = false
			s.Info = nil
			s.LastError = ""
			return false
		}
		s.LastError = domain.StatusMessage(status)
		return true
	})
	m.logger.Info("Deactivation result", "status", status)
}

// decodeResult maps an undecodable result to status unknown.
func decodeResult(payload any) domain.ActivationResultPayload {
	var p domain.ActivationResultPayload
	if err := bridge.Decode(payload, &p); err != nil {
		return domain.ActivationResultPayload{Status: string(domain.StatusUnknown)}
	}
	return p
}

func (m *Machine) update(mutate func(*domain.ActivationState), status domain.Status, failed bool) {
	m.apply(status, func(s *domain.ActivationState) bool {
		mutate(s)
		return failed
	})
}

// apply runs mutate under the lock; mutate reports whether the host rejected
// the pending request.
func (m *Machine) apply(status domain.Status, mutate func(*domain.ActivationState) bool) {
	m.mu.Lock()
	from := m.state.Phase()
	failed := mutate(&m.state)
	change := m.changeLocked(from, status, failed)
	listeners := m.listeners
	m.mu.Unlock()

	m.notify(listeners, change)
}

func (m *Machine) changeLocked(from domain.Phase, status domain.Status, failed bool) Change {
	return Change{
		From:   from,
		To:     m.state.Phase(),
		Status: status,
		Failed: failed,
		State:  m.state.Clone(),
	}
}

func (m *Machine) notify(listeners []func(Change), c Change) {
	if c.From != c.To || c.Status != "" {
		m.logger.Debug("Activation transition", "from", c.From, "to", c.To, "status", c.Status)
		if m.hooks.OnTransition != nil {
			m.hooks.OnTransition(&domain.TransitionEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransition},
				From:      c.From,
				To:        c.To,
				Status:    c.Status,
			})
		}
	}
	for _, fn := range listeners {
		fn(c)
	}
}
