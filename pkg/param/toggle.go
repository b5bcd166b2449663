package param

import (
	"sync"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/mirror"
	"github.com/dredimura/surface/pkg/ports"
)

// Toggle binds a boolean parameter.
type Toggle struct {
	id    domain.ParameterID
	opts  options
	value *mirror.Value[bool]
	relay ports.ToggleRelay

	unsub ports.UnsubscribeFunc
	once  sync.Once
}

// NewToggle mounts a toggle for id with def as the local value until the host answers.
func NewToggle(host ports.Host, id domain.ParameterID, def bool, opts ...Option) *Toggle {
	t := &Toggle{
		id:    id,
		opts:  newOptions(opts),
		value: mirror.NewValue(def),
	}

	if host == nil || !host.HostPresent() {
		return t
	}
	relay, ok := host.Toggle(id)
	if !ok {
		t.opts.logger.Debug("Toggle: parameter not declared by host", "param", id)
		return t
	}

	t.relay = relay
	t.value.Reconcile(relay.Value)
	t.unsub = relay.OnValueChanged(t.reconcile)
	return t
}

func (t *Toggle) ID() domain.ParameterID { return t.id }

func (t *Toggle) Value() bool { return t.value.Get() }

func (t *Toggle) Connected() bool { return t.relay != nil }

// SetValue writes b locally and forwards it to the host.
func (t *Toggle) SetValue(b bool) {
	t.value.Set(b)
	if t.relay != nil {
		t.relay.SetValue(b)
	}
	t.opts.emit(t.opts.hooks.OnParamWrite, domain.EventParamWrite, t.id, domain.BoolValue(b), domain.OriginLocal, "")
}

// Toggle flips the local value.
func (t *Toggle) Toggle() {
	t.SetValue(!t.value.Get())
}

func (t *Toggle) OnChange(fn func(bool)) {
	t.value.OnChange(fn)
}

// Close releases the host subscription. It is safe to call more than once.
func (t *Toggle) Close() {
	t.once.Do(func() {
		if t.unsub != nil {
			t.unsub()
		}
	})
}

func (t *Toggle) reconcile() {
	if !t.value.Reconcile(t.relay.Value) {
		return
	}
	t.opts.emit(t.opts.hooks.OnParamReconcile, domain.EventParamReconcile, t.id, domain.BoolValue(t.value.Get()), domain.OriginHost, "")
}
