package host

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

// Licensing is the host's license component: it keeps the activation record
// of this machine and defers code checks to a LicenseAuthority.
type Licensing struct {
	authority ports.LicenseAuthority
	store     ports.ActivationStore
	machineID string
	logger    *slog.Logger

	// serialises operations on the single record
	mu sync.Mutex
}

// LicensingOption configures Licensing.
type LicensingOption func(*Licensing)

// WithLicensingLogger configures a logger for Licensing.
func WithLicensingLogger(logger *slog.Logger) LicensingOption {
	return func(l *Licensing) {
		l.logger = logger
	}
}

// NewLicensing creates the license component for machineID.
func NewLicensing(authority ports.LicenseAuthority, store ports.ActivationStore, machineID string, opts ...LicensingOption) *Licensing {
	l := &Licensing{
		authority: authority,
		store:     store,
		machineID: machineID,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MachineID returns the machine this component licenses.
func (l *Licensing) MachineID() string { return l.machineID }

// State reports the stored activation.
func (l *Licensing) State(ctx context.Context) domain.ActivationStatePayload {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := l.load(ctx)
	if err != nil || info == nil {
		return domain.ActivationStatePayload{IsConfigured: true}
	}
	return domain.ActivationStatePayload{IsConfigured: true, IsActivated: info.IsValid, Info: info}
}

// Activate checks code with the authority and stores the activation on success.
func (l *Licensing) Activate(ctx context.Context, code string) domain.ActivationResultPayload {
	l.mu.Lock()
	defer l.mu.Unlock()

	if current, err := l.load(ctx); err == nil && current != nil && current.IsValid {
		return domain.ActivationResultPayload{Status: string(domain.StatusAlreadyActive), Info: current}
	}

	res := l.authority.Activate(ctx, code, l.machineID)
	l.logger.Info("License activation", "status", res.Status)
	if !domain.ActivationSucceeded(res.Status) || res.Info == nil {
		return domain.ActivationResultPayload{Status: string(res.Status)}
	}

	info := *res.Info
	info.MachineID = l.machineID
	if err := l.store.Save(ctx, info); err != nil {
		l.logger.Error("Failed to store activation", "err", err)
		return domain.ActivationResultPayload{Status: string(domain.StatusUnknown)}
	}
	return domain.ActivationResultPayload{Status: string(res.Status), Info: &info}
}

// Deactivate releases the stored activation with the authority.
func (l *Licensing) Deactivate(ctx context.Context) domain.ActivationResultPayload {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.load(ctx)
	if err != nil || current == nil {
		return domain.ActivationResultPayload{Status: string(domain.StatusNotActivated)}
	}

	res := l.authority.Deactivate(ctx, current.ActivationCode, l.machineID)
	l.logger.Info("License deactivation", "status", res.Status)
	if !domain.DeactivationSucceeded(res.Status) {
		return domain.ActivationResultPayload{Status: string(res.Status)}
	}
	if err := l.store.Delete(ctx, l.machineID); err != nil {
		l.logger.Error("Failed to delete activation", "err", err)
		return domain.ActivationResultPayload{Status: string(domain.StatusUnknown)}
	}
	return domain.ActivationResultPayload{Status: string(res.Status)}
}

// Validate re-checks the stored activation at startup. A revoked, expired or
// unknown code drops the record; transport failures keep it.
func (l *Licensing) Validate(ctx context.Context) domain.Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.load(ctx)
	if err != nil || current == nil {
		return domain.StatusNotActivated
	}

	res := l.authority.Validate(ctx, current.ActivationCode, l.machineID)
	switch {
	case res.Status == domain.StatusValid:
		if res.Info != nil {
			info := *res.Info
			info.MachineID = l.machineID
			if err := l.store.Save(ctx, info); err != nil {
				l.logger.Warn("Failed to refresh activation", "err", err)
			}
		}
	case res.Status.TransportFailure():
		l.logger.Warn("License validation unavailable, keeping activation", "status", res.Status)
	default:
		l.logger.Warn("Stored activation rejected", "status", res.Status)
		if err := l.store.Delete(ctx, l.machineID); err != nil {
			l.logger.Error("Failed to delete activation", "err", err)
		}
	}
	return res.Status
}

func (l *Licensing) load(ctx context.Context) (*domain.ActivationInfo, error) {
	info, err := l.store.Load(ctx, l.machineID)
	if errors.Is(err, domain.ErrActivationNotFound) {
		return nil, nil
	}
	if err != nil {
		l.logger.Error("Failed to load activation", "err", err)
		return nil, err
	}
	return info, nil
}
