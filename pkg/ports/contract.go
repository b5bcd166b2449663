package ports

import (
	"context"
	"testing"
	"time"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunActivationStoreContract runs a suite of tests to verify that an ActivationStore
// implementation adheres to the defined interface contract.
func RunActivationStoreContract(t *testing.T, store ActivationStore) {
	ctx := context.Background()
	machineID := "contract-machine-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		info := domain.ActivationInfo{
			ActivationCode:     "ABCD-1234",
			MachineID:          machineID,
			ActivatedAt:        "2026-01-02T03:04:05Z",
			ExpiresAt:          "2027-01-02T03:04:05Z",
			CurrentActivations: 1,
			MaxActivations:     3,
			IsValid:            true,
		}

		err := store.Save(ctx, info)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, machineID)
		require.NoError(t, err, "Load should not return error")
		require.NotNil(t, loaded)
		assert.Equal(t, info, *loaded)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.ActivationInfo{MachineID: machineID, ActivationCode: "OLD"}))
		require.NoError(t, store.Save(ctx, domain.ActivationInfo{MachineID: machineID, ActivationCode: "NEW"}))

		loaded, err := store.Load(ctx, machineID)
		require.NoError(t, err)
		assert.Equal(t, "NEW", loaded.ActivationCode)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+machineID)
		assert.ErrorIs(t, err, domain.ErrActivationNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.ActivationInfo{MachineID: machineID}))

		err := store.Delete(ctx, machineID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, machineID)
		assert.ErrorIs(t, err, domain.ErrActivationNotFound, "Load after Delete should return ErrActivationNotFound")

		assert.NoError(t, store.Delete(ctx, machineID), "Deleting twice should be harmless")
	})
}
