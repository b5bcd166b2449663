package mirror_test

import (
	"sync"
	"testing"

	"github.com/dredimura/surface/pkg/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_OptimisticSet(t *testing.T) {
	v := mirror.NewValue(0.3)
	assert.Equal(t, 0.3, v.Get())

	v.Set(0.7)
	assert.Equal(t, 0.7, v.Get())
}

func TestValue_HoldSuppressesReconcile(t *testing.T) {
	remote := 0.5
	v := mirror.NewValue(0.0)

	assert.True(t, v.Reconcile(func() float64 { return remote }))
	assert.Equal(t, 0.5, v.Get())

	assert.True(t, v.Hold())
	assert.False(t, v.Hold(), "second hold must report the value is already held")

	v.Set(0.9)
	reads := 0
	for i := 0; i < 5; i++ {
		remote = float64(i) / 10
		applied := v.Reconcile(func() float64 { reads++; return remote })
		assert.False(t, applied)
	}
	assert.Zero(t, reads, "remote must not be read while held")
	assert.Equal(t, 0.9, v.Get())

	remote = 0.2
	assert.True(t, v.Settle(func() float64 { return remote }))
	assert.False(t, v.Held())
	assert.Equal(t, 0.2, v.Get(), "settle reconciles with the remote authority")
}

func TestValue_SettleWithoutHold(t *testing.T) {
	v := mirror.NewValue(true)
	called := false
	assert.False(t, v.Settle(func() bool { called = true; return false }))
	assert.False(t, called)
	assert.True(t, v.Get())
}

func TestValue_OnChange(t *testing.T) {
	v := mirror.NewValue(1)
	var seen []int
	v.OnChange(func(x int) { seen = append(seen, x) })

	v.Set(2)
	v.Set(2) // unchanged, no notification
	v.Reconcile(func() int { return 3 })

	assert.Equal(t, []int{2, 3}, seen)
}

func TestValue_ConcurrentAccess(t *testing.T) {
	v := mirror.NewValue(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v.Set(n)
			v.Reconcile(func() int { return n })
			_ = v.Get()
		}(i)
	}
	wg.Wait()
}

func TestFlag(t *testing.T) {
	var f mirror.Flag
	assert.False(t, f.Raised())
	assert.True(t, f.TryRaise())
	assert.False(t, f.TryRaise())
	assert.True(t, f.Raised())
	assert.True(t, f.Lower())
	assert.False(t, f.Lower())
}

func TestValue_Release(t *testing.T) {
	v := mirror.NewValue(0.5)

	assert.False(t, v.Release())
	require.True(t, v.Hold())
	v.Set(0.7)
	assert.True(t, v.Release())
	assert.False(t, v.Held())
	assert.Equal(t, 0.7, v.Get())
}
