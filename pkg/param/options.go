package param

import (
	"log/slog"
	"time"

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/domain"
)

type options struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

func newOptions(opts []Option) options {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a binding or a Registry.
type Option func(*options)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

func (o options) emit(fn func(*domain.ParamEvent), typ domain.EventType, id domain.ParameterID, v float64, origin domain.Origin, phase string) {
	if fn == nil {
		return
	}
	fn(&domain.ParamEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		ID:        id,
		Value:     v,
		Origin:    origin,
		Phase:     phase,
	})
}
