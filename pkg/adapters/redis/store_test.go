package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dredimura/surface/pkg/adapters/redis"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunActivationStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	info := domain.ActivationInfo{ActivationCode: "AAAA-1111", MachineID: "m1", IsValid: true}

	// 1. Save
	require.NoError(t, store.Save(ctx, info))
	assert.True(t, mr.Exists("surface:activation:m1"))

	// 2. Expire
	mr.FastForward(2 * time.Second)

	// 3. Gone
	_, err := store.Load(ctx, "m1")
	assert.ErrorIs(t, err, domain.ErrActivationNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("plugin-a:"))

	require.NoError(t, store.Save(context.Background(), domain.ActivationInfo{MachineID: "m1"}))
	assert.True(t, mr.Exists("plugin-a:activation:m1"))
	assert.False(t, mr.Exists("surface:activation:m1"))
}

func TestRedisStore_CorruptRecord(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	require.NoError(t, mr.Set("surface:activation:m1", "{not json"))

	_, err := store.Load(context.Background(), "m1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrActivationNotFound)
}

func TestRedisStore_CloseKeepsSharedClient(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, store.Close())
	assert.NoError(t, client.Ping(context.Background()).Err())
}
