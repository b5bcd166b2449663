package param

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

// Reading is a point-in-time view of one mounted binding.
type Reading struct {
	ID        domain.ParameterID   `json:"id"`
	Kind      domain.ParameterKind `json:"kind"`
	Value     float64              `json:"value"`
	Dragging  bool                 `json:"dragging,omitempty"`
	Connected bool                 `json:"connected"`
}

// Registry keeps the mounted bindings of one surface, keyed by id.
// It is the write target of batch runs.
type Registry struct {
	host ports.Host
	opts options

	mu      sync.RWMutex
	sliders map[domain.ParameterID]*Slider
	toggles map[domain.ParameterID]*Toggle
}

// NewRegistry creates an empty registry over host. Bindings mounted through it
// inherit opts.
func NewRegistry(host ports.Host, opts ...Option) *Registry {
	return &Registry{
		host:    host,
		opts:    newOptions(opts),
		sliders: make(map[domain.ParameterID]*Slider),
		toggles: make(map[domain.ParameterID]*Toggle),
	}
}

// MountSlider creates and registers a slider.
func (r *Registry) MountSlider(id domain.ParameterID, def float64) (*Slider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(id) {
		return nil, fmt.Errorf("mount slider %q: %w", id, domain.ErrDuplicateParameter)
	}
	s := NewSlider(r.host, id, def, r.with()...)
	r.sliders[id] = s
	return s, nil
}

// MountToggle creates and registers a toggle.
func (r *Registry) MountToggle(id domain.ParameterID, def bool) (*Toggle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(id) {
		return nil, fmt.Errorf("mount toggle %q: %w", id, domain.ErrDuplicateParameter)
	}
	t := NewToggle(r.host, id, def, r.with()...)
	r.toggles[id] = t
	return t, nil
}

// Unmount closes and forgets the binding for id. Unknown ids are ignored.
func (r *Registry) Unmount(id domain.ParameterID) {
	r.mu.Lock()
	s := r.sliders[id]
	t := r.toggles[id]
	delete(r.sliders, id)
	delete(r.toggles, id)
	r.mu.Unlock()

	if s != nil {
		s.Close()
	}
	if t != nil {
		t.Close()
	}
}

func (r *Registry) Slider(id domain.ParameterID) (*Slider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sliders[id]
	return s, ok
}

func (r *Registry) Toggle(id domain.ParameterID) (*Toggle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.toggles[id]
	return t, ok
}

// ApplyNormalized writes v to id: through the mounted binding when there is
// one, else straight to the host relay. Unknown ids are a silent no-op.
func (r *Registry) ApplyNormalized(id domain.ParameterID, v float64) {
	if s, ok := r.Slider(id); ok {
		s.SetValue(v)
		return
	}
	if t, ok := r.Toggle(id); ok {
		t.SetValue(v >= 0.5)
		return
	}

	if r.host == nil || !r.host.HostPresent() {
		return
	}
	if relay, ok := r.host.Slider(id); ok {
		relay.SetNormalizedValue(domain.ClampNormalized(v))
		return
	}
	if relay, ok := r.host.Toggle(id); ok {
		relay.SetValue(v >= 0.5)
		return
	}
	r.opts.logger.Debug("Registry: write to unknown parameter dropped", "param", id)
}

// Readings returns the mounted bindings sorted by id.
func (r *Registry) Readings() []Reading {
	r.mu.RLock()
	out := make([]Reading, 0, len(r.sliders)+len(r.toggles))
	for id, s := range r.sliders {
		out = append(out, Reading{ID: id, Kind: domain.KindContinuous, Value: s.Value(), Dragging: s.Dragging(), Connected: s.Connected()})
	}
	for id, t := range r.toggles {
		out = append(out, Reading{ID: id, Kind: domain.KindBoolean, Value: domain.BoolValue(t.Value()), Connected: t.Connected()})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close unmounts every binding.
func (r *Registry) Close() {
	r.mu.Lock()
	sliders, toggles := r.sliders, r.toggles
	r.sliders = make(map[domain.ParameterID]*Slider)
	r.toggles = make(map[domain.ParameterID]*Toggle)
	r.mu.Unlock()

	for _, s := range sliders {
		s.Close()
	}
	for _, t := range toggles {
		t.Close()
	}
}

func (r *Registry) taken(id domain.ParameterID) bool {
	_, s := r.sliders[id]
	_, t := r.toggles[id]
	return s || t
}

func (r *Registry) with() []Option {
	o := r.opts
	return []Option{func(dst *options) { *dst = o }}
}
