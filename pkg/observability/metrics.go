package observability

import (
	"net/http"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	gatherer prometheus.Gatherer

	ParamWrites     *prometheus.CounterVec
	ParamReconciles *prometheus.CounterVec
	Gestures        *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	Phase           *prometheus.GaugeVec
	BatchUpdates    prometheus.Counter
	BatchDuration   prometheus.Histogram
	HostMessages    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		ParamWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surface_param_writes_total",
				Help: "Local parameter writes forwarded to the host",
			},
			[]string{"param"},
		),
		ParamReconciles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surface_param_reconciles_total",
				Help: "Host values adopted by bindings",
			},
			[]string{"param"},
		),
		Gestures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surface_gestures_total",
				Help: "Gesture boundaries sent to the host",
			},
			[]string{"param", "phase"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surface_activation_transitions_total",
				Help: "Activation state machine transitions",
			},
			[]string{"from", "to", "status"},
		),
		Phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "surface_activation_phase",
				Help: "1 for the current activation phase, 0 otherwise",
			},
			[]string{"phase"},
		),
		BatchUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "surface_batch_updates_total",
			Help: "Parameter updates written by completed batch runs",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "surface_batch_duration_seconds",
			Help:    "Wall time of completed batch runs",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		HostMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surface_host_messages_total",
				Help: "Envelopes received from the host",
			},
			[]string{"event"},
		),
	}

	reg.MustRegister(
		m.ParamWrites,
		m.ParamReconciles,
		m.Gestures,
		m.Transitions,
		m.Phase,
		m.BatchUpdates,
		m.BatchDuration,
		m.HostMessages,
	)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnParamWrite: func(e *domain.ParamEvent) {
			m.ParamWrites.WithLabelValues(string(e.ID)).Inc()
		},
		OnParamReconcile: func(e *domain.ParamEvent) {
			m.ParamReconciles.WithLabelValues(string(e.ID)).Inc()
		},
		OnGesture: func(e *domain.ParamEvent) {
			m.Gestures.WithLabelValues(string(e.ID), e.Phase).Inc()
		},
		OnTransition: func(e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To), string(e.Status)).Inc()
			for _, p := range domain.Phases() {
				v := 0.0
				if p == e.To {
					v = 1
				}
				m.Phase.WithLabelValues(string(p)).Set(v)
			}
		},
		OnBatchComplete: func(e *domain.BatchEvent) {
			m.BatchUpdates.Add(float64(e.Size))
			m.BatchDuration.Observe(e.Duration.Seconds())
		},
		OnHostMessage: func(e *domain.MessageEvent) {
			m.HostMessages.WithLabelValues(e.Event).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
