package batch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dredimura/surface/pkg/batch"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	id domain.ParameterID
	v  float64
	at time.Time
}

type recorder struct {
	mu     sync.Mutex
	writes []write
}

func (r *recorder) ApplyNormalized(id domain.ParameterID, v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, write{id: id, v: v, at: time.Now()})
}

func (r *recorder) ids() []domain.ParameterID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ParameterID, len(r.writes))
	for i, w := range r.writes {
		out[i] = w.id
	}
	return out
}

var preset = []domain.BatchUpdate{
	{ID: "drive", Value: 0.6},
	{ID: "tone", Value: 0.4},
	{ID: "output", Value: 0.8},
}

func TestApply_Unstaggered(t *testing.T) {
	rec := &recorder{}
	s := batch.NewScheduler(rec)

	completed := 0
	run := s.Apply(preset, batch.WithOnComplete(func() {
		completed++
		assert.Len(t, rec.ids(), 3, "completion fires after the last write")
	}))

	assert.Equal(t, []domain.ParameterID{"drive", "tone", "output"}, rec.ids())
	assert.Equal(t, 1, completed)
	assert.Equal(t, 3, run.Applied())

	select {
	case <-run.Done():
	default:
		t.Fatal("synchronous run should be done on return")
	}
}

func TestApply_Staggered(t *testing.T) {
	rec := &recorder{}
	s := batch.NewScheduler(rec)

	var mu sync.Mutex
	completed := 0
	start := time.Now()
	run := s.Apply(preset, batch.WithStagger(25*time.Millisecond), batch.WithOnComplete(func() {
		mu.Lock()
		completed++
		mu.Unlock()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, run.Wait(ctx))

	assert.Equal(t, []domain.ParameterID{"drive", "tone", "output"}, rec.ids())
	rec.mu.Lock()
	last := rec.writes[2].at
	rec.mu.Unlock()
	assert.GreaterOrEqual(t, last.Sub(start), 50*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, completed)
	mu.Unlock()
}

func TestApply_Empty(t *testing.T) {
	s := batch.NewScheduler(&recorder{})

	completed := 0
	s.Apply(nil, batch.WithStagger(time.Second), batch.WithOnComplete(func() { completed++ }))
	assert.Equal(t, 1, completed)
}

func TestApply_Cancel(t *testing.T) {
	rec := &recorder{}
	s := batch.NewScheduler(rec)

	completed := false
	run := s.Apply(preset, batch.WithStagger(time.Hour), batch.WithOnComplete(func() { completed = true }))

	assert.Eventually(t, func() bool { return run.Applied() == 1 }, time.Second, 5*time.Millisecond)
	run.Cancel()
	run.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, run.Wait(ctx))

	assert.Equal(t, []domain.ParameterID{"drive"}, rec.ids())
	assert.False(t, completed)
}

func TestApply_IndependentRuns(t *testing.T) {
	rec := &recorder{}
	s := batch.NewScheduler(rec)

	slow := s.Apply(preset, batch.WithStagger(time.Hour))
	defer slow.Cancel()

	fast := s.Apply([]domain.BatchUpdate{{ID: "bypass", Value: 1}})
	<-fast.Done()

	assert.Eventually(t, func() bool { return len(rec.ids()) == 2 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []domain.ParameterID{"drive", "bypass"}, rec.ids())
}

func TestApply_Hooks(t *testing.T) {
	var got *domain.BatchEvent
	s := batch.NewScheduler(batch.TargetFunc(func(domain.ParameterID, float64) {}),
		batch.WithLifecycleHooks(domain.LifecycleHooks{
			OnBatchComplete: func(e *domain.BatchEvent) { got = e },
		}))

	s.Apply(preset)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Size)
	assert.Equal(t, domain.EventBatchComplete, got.Type)
}
