package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/dredimura/surface/pkg/adapters/memory"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func record() domain.ActivationInfo {
	return domain.ActivationInfo{
		ActivationCode:     "ABCD-EFGH-1234",
		MachineID:          "machine-1",
		ActivatedAt:        "2026-01-02T03:04:05Z",
		CurrentActivations: 1,
		MaxActivations:     3,
		IsValid:            true,
	}
}

func newSecureStore(t *testing.T, cfg middleware.EncryptionConfig) (*memory.Store, func() middleware.Middleware) {
	t.Helper()
	underlying := memory.NewStore()
	return underlying, func() middleware.Middleware {
		mw, err := middleware.NewEncryptionMiddleware(cfg)
		require.NoError(t, err)
		return mw
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying, mw := newSecureStore(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secure := mw()(underlying)

	// 1. Save
	require.NoError(t, secure.Save(ctx, record()))

	// 2. The underlying record hides code and terms
	stored, err := underlying.Load(ctx, "machine-1")
	require.NoError(t, err)
	assert.NotContains(t, stored.ActivationCode, "ABCD")
	assert.Zero(t, stored.MaxActivations)
	assert.False(t, stored.IsValid)

	// 3. Load via middleware decrypts
	loaded, err := secure.Load(ctx, "machine-1")
	require.NoError(t, err)
	assert.Equal(t, record(), *loaded)

	// 4. Delete passes through
	require.NoError(t, secure.Delete(ctx, "machine-1"))
	_, err = secure.Load(ctx, "machine-1")
	assert.ErrorIs(t, err, domain.ErrActivationNotFound)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	oldKey, newKey := generateKey(t), generateKey(t)
	underlying := memory.NewStore()

	oldMW, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, err)
	require.NoError(t, oldMW(underlying).Save(ctx, record()))

	// 1. New key alone cannot open the record
	newOnly, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})
	require.NoError(t, err)
	_, err = newOnly(underlying).Load(ctx, "machine-1")
	assert.Error(t, err)

	// 2. With the old key as fallback it can
	rotated, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	require.NoError(t, err)
	loaded, err := rotated(underlying).Load(ctx, "machine-1")
	require.NoError(t, err)
	assert.Equal(t, "ABCD-EFGH-1234", loaded.ActivationCode)
}

func TestEncryptionMiddleware_BoundToMachine(t *testing.T) {
	ctx := context.Background()
	underlying, mw := newSecureStore(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secure := mw()(underlying)
	require.NoError(t, secure.Save(ctx, record()))

	// Copy the sealed envelope to another machine
	stored, err := underlying.Load(ctx, "machine-1")
	require.NoError(t, err)
	stolen := *stored
	stolen.MachineID = "machine-2"
	require.NoError(t, underlying.Save(ctx, stolen))

	_, err = secure.Load(ctx, "machine-2")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t), FallbackKeys: [][]byte{{1}}})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	// A record stored in the clear is refused
	underlying, mw := newSecureStore(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, underlying.Save(ctx, record()))
	_, err = mw()(underlying).Load(ctx, "machine-1")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}
