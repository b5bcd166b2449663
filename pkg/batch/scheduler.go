package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/domain"
)

// Target receives the writes of a batch.
type Target interface {
	ApplyNormalized(id domain.ParameterID, v float64)
}

// TargetFunc adapts a function to Target.
type TargetFunc func(id domain.ParameterID, v float64)

func (f TargetFunc) ApplyNormalized(id domain.ParameterID, v float64) { f(id, v) }

// Scheduler applies batches to a Target. Runs are independent of each other.
type Scheduler struct {
	target Target
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Scheduler.
type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scheduler) {
		s.hooks = hooks
	}
}

// NewScheduler creates a scheduler writing to target.
func NewScheduler(target Target, opts ...Option) *Scheduler {
	s := &Scheduler{
		target: target,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyOption configures a single Apply call.
type ApplyOption func(*applyConfig)

type applyConfig struct {
	stagger    time.Duration
	onComplete func()
}

// WithStagger spaces consecutive writes by d. Zero applies the batch synchronously.
func WithStagger(d time.Duration) ApplyOption {
	return func(c *applyConfig) {
		if d > 0 {
			c.stagger = d
		}
	}
}

// WithOnComplete registers fn to run once after the final write.
func WithOnComplete(fn func()) ApplyOption {
	return func(c *applyConfig) {
		c.onComplete = fn
	}
}

// Apply writes updates in order. Without a stagger every write happens before
// Apply returns; otherwise update i is written i*stagger after the call by a
// goroutine owned by the returned Run.
func (s *Scheduler) Apply(updates []domain.BatchUpdate, opts ...ApplyOption) *Run {
	var cfg applyConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	batch := make([]domain.BatchUpdate, len(updates))
	copy(batch, updates)

	r := &Run{
		size:   len(batch),
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	start := time.Now()

	if cfg.stagger == 0 || len(batch) <= 1 {
		for _, u := range batch {
			s.target.ApplyNormalized(u.ID, u.Value)
		}
		r.applied = len(batch)
		s.complete(r, cfg, start)
		return r
	}

	s.logger.Debug("Batch: staggered run started", "size", len(batch), "stagger", cfg.stagger)
	go s.stagger(r, batch, cfg, start)
	return r
}

func (s *Scheduler) stagger(r *Run, batch []domain.BatchUpdate, cfg applyConfig, start time.Time) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for i, u := range batch {
		if i > 0 {
			timer.Reset(time.Until(start.Add(time.Duration(i) * cfg.stagger)))
			select {
			case <-timer.C:
			case <-r.cancel:
				s.logger.Debug("Batch: run cancelled", "applied", i, "size", len(batch))
				close(r.done)
				return
			}
		} else {
			<-timer.C
		}
		s.target.ApplyNormalized(u.ID, u.Value)
		r.mu.Lock()
		r.applied = i + 1
		r.mu.Unlock()
	}
	s.complete(r, cfg, start)
}

func (s *Scheduler) complete(r *Run, cfg applyConfig, start time.Time) {
	if cfg.onComplete != nil {
		cfg.onComplete()
	}
	if s.hooks.OnBatchComplete != nil {
		s.hooks.OnBatchComplete(&domain.BatchEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBatchComplete},
			Size:      r.size,
			Stagger:   cfg.stagger,
			Duration:  time.Since(start),
		})
	}
	close(r.done)
}

// Run tracks one Apply call.
type Run struct {
	size int

	mu      sync.Mutex
	applied int

	cancelOnce sync.Once
	cancel     chan struct{}
	done       chan struct{}
}

// Size is the number of updates in the batch.
func (r *Run) Size() int { return r.size }

// Applied is the number of updates written so far.
func (r *Run) Applied() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}

// Cancel stops pending writes. The completion callback of a cancelled run
// never fires. Cancelling a finished run has no effect.
func (r *Run) Cancel() {
	r.cancelOnce.Do(func() { close(r.cancel) })
}

// Done is closed when the run finishes or is cancelled.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run is over or ctx ends.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
