package param_test

import (
	"math"
	"sync"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

// fakeHost is a synchronous ports.Host whose sliders snap writes to a 0.1 grid.
type fakeHost struct {
	present bool
	sliders map[domain.ParameterID]*fakeSlider
	toggles map[domain.ParameterID]*fakeToggle
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		present: true,
		sliders: map[domain.ParameterID]*fakeSlider{"drive": {value: 0.4}},
		toggles: map[domain.ParameterID]*fakeToggle{"bypass": {}},
	}
}

func (h *fakeHost) HostPresent() bool { return h.present }

func (h *fakeHost) Subscribe(string, ports.Handler) ports.UnsubscribeFunc { return func() {} }

func (h *fakeHost) Publish(string, any) {}

func (h *fakeHost) Slider(id domain.ParameterID) (ports.SliderRelay, bool) {
	s, ok := h.sliders[id]
	if !ok {
		return nil, false
	}
	return s, true
}

func (h *fakeHost) Toggle(id domain.ParameterID) (ports.ToggleRelay, bool) {
	t, ok := h.toggles[id]
	if !ok {
		return nil, false
	}
	return t, true
}

type fakeSlider struct {
	mu        sync.Mutex
	value     float64
	writes    []float64
	gestures  []string
	listeners []func()
}

func (s *fakeSlider) NormalizedValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *fakeSlider) SetNormalizedValue(v float64) {
	s.mu.Lock()
	s.writes = append(s.writes, v)
	s.value = math.Round(v*10) / 10
	s.mu.Unlock()
}

func (s *fakeSlider) DragStarted() { s.gestures = append(s.gestures, domain.GestureBegin) }

func (s *fakeSlider) DragEnded() { s.gestures = append(s.gestures, domain.GestureEnd) }

func (s *fakeSlider) Range() domain.Range { return domain.Range{Min: 0, Max: 10, Interval: 1} }

func (s *fakeSlider) OnValueChanged(fn func()) ports.UnsubscribeFunc {
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	return func() { s.listeners[idx] = nil }
}

// push simulates a host-side change followed by a notification.
func (s *fakeSlider) push(v float64) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	for _, fn := range s.listeners {
		if fn != nil {
			fn()
		}
	}
}

func (s *fakeSlider) subscribers() int {
	n := 0
	for _, fn := range s.listeners {
		if fn != nil {
			n++
		}
	}
	return n
}

type fakeToggle struct {
	value     bool
	writes    []bool
	listeners []func()
}

func (t *fakeToggle) Value() bool { return t.value }

func (t *fakeToggle) SetValue(b bool) {
	t.writes = append(t.writes, b)
	t.value = b
}

func (t *fakeToggle) OnValueChanged(fn func()) ports.UnsubscribeFunc {
	t.listeners = append(t.listeners, fn)
	return func() {}
}

func (t *fakeToggle) push(b bool) {
	t.value = b
	for _, fn := range t.listeners {
		fn()
	}
}
