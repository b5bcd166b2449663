package observability

import (
	"log/slog"

	"github.com/dredimura/surface/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event at debug level, and
// activation transitions at info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnParamWrite: func(e *domain.ParamEvent) {
			logger.Debug("param_write", "param", e.ID, "value", e.Value, "origin", e.Origin)
		},
		OnParamReconcile: func(e *domain.ParamEvent) {
			logger.Debug("param_reconcile", "param", e.ID, "value", e.Value)
		},
		OnGesture: func(e *domain.ParamEvent) {
			logger.Debug("gesture", "param", e.ID, "phase", e.Phase)
		},
		OnTransition: func(e *domain.TransitionEvent) {
			logger.Info("activation_transition", "from", e.From, "to", e.To, "status", e.Status)
		},
		OnBatchComplete: func(e *domain.BatchEvent) {
			logger.Debug("batch_complete", "size", e.Size, "stagger", e.Stagger, "duration", e.Duration)
		},
		OnHostMessage: func(e *domain.MessageEvent) {
			logger.Debug("host_message", "event", e.Event)
		},
	}
}
