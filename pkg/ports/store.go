package ports

import (
	"context"

	"github.com/dredimura/surface/pkg/domain"
)

// ActivationStore persists the host's activation record, one per machine.
type ActivationStore interface {
	// Load returns domain.ErrActivationNotFound when the machine has no record.
	Load(ctx context.Context, machineID string) (*domain.ActivationInfo, error)

	// Save stores info under info.MachineID, replacing any previous record.
	Save(ctx context.Context, info domain.ActivationInfo) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, machineID string) error
}
