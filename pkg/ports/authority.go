package ports

import (
	"context"

	"github.com/dredimura/surface/pkg/domain"
)

// LicenseResult is the outcome of a license operation.
// Failures, including transport failures, are expressed as statuses.
type LicenseResult struct {
	Status domain.Status
	Info   *domain.ActivationInfo
}

// LicenseAuthority validates activation codes on behalf of the host.
type LicenseAuthority interface {
	Activate(ctx context.Context, code, machineID string) LicenseResult
	Deactivate(ctx context.Context, code, machineID string) LicenseResult
	Validate(ctx context.Context, code, machineID string) LicenseResult
}
