package domain

import "time"

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventParamWrite      EventType = "param_write"
	EventParamReconcile  EventType = "param_reconcile"
	EventGesture         EventType = "gesture"
	EventTransition      EventType = "transition"
	EventBatchComplete   EventType = "batch_complete"
	EventHostMessage     EventType = "host_message"
)

// Origin tells whether a parameter change came from the UI or from the host.
type Origin string

const (
	OriginLocal Origin = "local"
	OriginHost  Origin = "host"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ParamEvent reports a change to a binding's local value or a gesture boundary.
type ParamEvent struct {
	EventBase
	ID     ParameterID `json:"id"`
	Value  float64     `json:"value"`
	Origin Origin      `json:"origin"`
	Phase  string      `json:"phase,omitempty"` // gesture begin/end
}

// TransitionEvent reports an activation phase change.
type TransitionEvent struct {
	EventBase
	From   Phase  `json:"from"`
	To     Phase  `json:"to"`
	Status Status `json:"status,omitempty"`
}

// BatchEvent reports the completion of a batch run.
type BatchEvent struct {
	EventBase
	Size     int           `json:"size"`
	Stagger  time.Duration `json:"stagger"`
	Duration time.Duration `json:"duration"`
}

// MessageEvent reports an envelope received from the host.
type MessageEvent struct {
	EventBase
	Event string `json:"event"`
}

// LifecycleHooks defines callbacks for observability.
// Every field is optional.
type LifecycleHooks struct {
	OnParamWrite     func(*ParamEvent)
	OnParamReconcile func(*ParamEvent)
	OnGesture        func(*ParamEvent)
	OnTransition     func(*TransitionEvent)
	OnBatchComplete  func(*BatchEvent)
	OnHostMessage    func(*MessageEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnParamWrite:     chain(h.OnParamWrite, other.OnParamWrite),
		OnParamReconcile: chain(h.OnParamReconcile, other.OnParamReconcile),
		OnGesture:        chain(h.OnGesture, other.OnGesture),
		OnTransition:     chain(h.OnTransition, other.OnTransition),
		OnBatchComplete:  chain(h.OnBatchComplete, other.OnBatchComplete),
		OnHostMessage:    chain(h.OnHostMessage, other.OnHostMessage),
	}
}

func chain[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}
