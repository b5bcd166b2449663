package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/dredimura/surface/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLease_AcquireRelease(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	// 1. Acquire
	lease, err := redis.AcquireLease(ctx, client, "test:lease", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lease"))
	assert.Equal(t, "test:lease", lease.Key())

	// 2. Release
	require.NoError(t, lease.Release(ctx))
	assert.False(t, mr.Exists("test:lease"))
}

func TestLease_Contention(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	first, err := redis.AcquireLease(ctx, client, "test:lease", 5*time.Second)
	require.NoError(t, err)

	// 1. A second owner gives up when its context ends
	short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = redis.AcquireLease(short, client, "test:lease", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLeaseHeld)

	// 2. It gets the lease once the first owner releases
	done := make(chan error, 1)
	go func() {
		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_, err := redis.AcquireLease(waitCtx, client, "test:lease", 5*time.Second)
		done <- err
	}()
	require.NoError(t, first.Release(ctx))
	assert.NoError(t, <-done)
}

func TestLease_RefreshAndLoss(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	lease, err := redis.AcquireLease(ctx, client, "test:lease", 2*time.Second)
	require.NoError(t, err)

	// 1. Refresh extends the TTL
	mr.FastForward(1500 * time.Millisecond)
	require.NoError(t, lease.Refresh(ctx))
	mr.FastForward(1500 * time.Millisecond)
	assert.True(t, mr.Exists("test:lease"))

	// 2. Once expired and taken over, the old owner cannot refresh or release it
	mr.FastForward(3 * time.Second)
	other, err := redis.AcquireLease(ctx, client, "test:lease", 2*time.Second)
	require.NoError(t, err)

	assert.ErrorIs(t, lease.Refresh(ctx), redis.ErrLeaseLost)
	require.NoError(t, lease.Release(ctx))
	assert.True(t, mr.Exists("test:lease"))

	require.NoError(t, other.Release(ctx))
}
