package param

import (
	"sync"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/mirror"
	"github.com/dredimura/surface/pkg/ports"
)

// Slider binds a continuous parameter.
type Slider struct {
	id    domain.ParameterID
	opts  options
	value *mirror.Value[float64]
	relay ports.SliderRelay

	unsub ports.UnsubscribeFunc
	once  sync.Once
}

// NewSlider mounts a slider for id. The local value starts at def and is
// replaced by the host's value when the host declares id.
func NewSlider(host ports.Host, id domain.ParameterID, def float64, opts ...Option) *Slider {
	s := &Slider{
		id:    id,
		opts:  newOptions(opts),
		value: mirror.NewValue(domain.ClampNormalized(def)),
	}

	if host == nil || !host.HostPresent() {
		return s
	}
	relay, ok := host.Slider(id)
	if !ok {
		s.opts.logger.Debug("Slider: parameter not declared by host", "param", id)
		return s
	}

	s.relay = relay
	s.value.Reconcile(relay.NormalizedValue)
	s.unsub = relay.OnValueChanged(s.reconcile)
	return s
}

// ID returns the parameter id.
func (s *Slider) ID() domain.ParameterID { return s.id }

// Value returns the local normalized value.
func (s *Slider) Value() float64 { return s.value.Get() }

// Dragging reports whether a drag gesture is in progress.
func (s *Slider) Dragging() bool { return s.value.Held() }

// Connected reports whether the slider is bound to a host parameter.
func (s *Slider) Connected() bool { return s.relay != nil }

// Range returns the host's range for the parameter, or [0,1] when disconnected.
func (s *Slider) Range() domain.Range {
	if s.relay == nil {
		return domain.Range{Min: 0, Max: 1}
	}
	return s.relay.Range()
}

// SetValue writes v locally and forwards it to the host.
func (s *Slider) SetValue(v float64) {
	v = domain.ClampNormalized(v)
	s.value.Set(v)
	if s.relay != nil {
		s.relay.SetNormalizedValue(v)
	}
	s.opts.emit(s.opts.hooks.OnParamWrite, domain.EventParamWrite, s.id, v, domain.OriginLocal, "")
}

// DragStart begins a gesture. Host notifications are ignored until DragEnd.
func (s *Slider) DragStart() {
	if !s.value.Hold() {
		return
	}
	if s.relay != nil {
		s.relay.DragStarted()
	}
	s.opts.emit(s.opts.hooks.OnGesture, domain.EventGesture, s.id, s.value.Get(), domain.OriginLocal, domain.GestureBegin)
}

// DragEnd ends the gesture and re-reads the host's authoritative value.
// Without a preceding DragStart it does nothing.
func (s *Slider) DragEnd() {
	if !s.value.Held() {
		return
	}
	if s.relay == nil {
		if s.value.Release() {
			s.opts.emit(s.opts.hooks.OnGesture, domain.EventGesture, s.id, s.value.Get(), domain.OriginLocal, domain.GestureEnd)
		}
		return
	}

	s.relay.DragEnded()
	if s.value.Settle(s.relay.NormalizedValue) {
		s.opts.emit(s.opts.hooks.OnGesture, domain.EventGesture, s.id, s.value.Get(), domain.OriginHost, domain.GestureEnd)
	}
}

// OnChange registers fn to run after the local value changes.
func (s *Slider) OnChange(fn func(float64)) {
	s.value.OnChange(fn)
}

// Close releases the host subscription. It is safe to call more than once.
func (s *Slider) Close() {
	s.once.Do(func() {
		if s.unsub != nil {
			s.unsub()
		}
	})
}

func (s *Slider) reconcile() {
	if !s.value.Reconcile(s.relay.NormalizedValue) {
		return
	}
	s.opts.emit(s.opts.hooks.OnParamReconcile, domain.EventParamReconcile, s.id, s.value.Get(), domain.OriginHost, "")
}
