package ports

import "github.com/dredimura/surface/pkg/domain"

// Handler receives the opaque payload of one event occurrence.
type Handler func(payload any)

// UnsubscribeFunc releases a subscription. Calling it more than once is safe.
type UnsubscribeFunc func()

// Bridge is the UI's named-event channel to the host process.
type Bridge interface {
	// HostPresent reports whether a host is attached. It has no side effects.
	HostPresent() bool

	// Subscribe registers handler for event. Handlers of the same event run in
	// registration order, once per occurrence.
	Subscribe(event string, handler Handler) UnsubscribeFunc

	// Publish sends an event to the host without waiting for delivery.
	// It is a no-op when no host is present.
	Publish(event string, payload any)
}

// SliderRelay is the UI-side handle of one continuous host parameter.
type SliderRelay interface {
	NormalizedValue() float64
	SetNormalizedValue(v float64)
	DragStarted()
	DragEnded()
	Range() domain.Range
	// OnValueChanged registers a payload-less change listener; re-query the relay in it.
	OnValueChanged(fn func()) UnsubscribeFunc
}

// ToggleRelay is the UI-side handle of one boolean host parameter.
type ToggleRelay interface {
	Value() bool
	SetValue(v bool)
	OnValueChanged(fn func()) UnsubscribeFunc
}

// ParameterRelay looks up host parameters by id.
// The boolean is false when the host did not declare the parameter.
type ParameterRelay interface {
	Slider(id domain.ParameterID) (SliderRelay, bool)
	Toggle(id domain.ParameterID) (ToggleRelay, bool)
}

// Host is the capability injected into bindings and the activation machine.
type Host interface {
	Bridge
	ParameterRelay
}
