package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

// License is one entry of the authority's code table.
type License struct {
	Code           string
	MaxActivations int
	ExpiresAt      time.Time // zero means perpetual
	Revoked        bool
}

// Authority implements ports.LicenseAuthority over a fixed code table.
// Codes are matched case-insensitively.
type Authority struct {
	mu          sync.Mutex
	licenses    map[string]License
	activations map[string]map[string]domain.ActivationInfo // code -> machine -> info
	now         func() time.Time
}

// AuthorityOption configures the Authority.
type AuthorityOption func(*Authority)

// WithClock replaces the time source.
func WithClock(now func() time.Time) AuthorityOption {
	return func(a *Authority) {
		a.now = now
	}
}

// NewAuthority creates an authority that accepts the given licenses.
func NewAuthority(licenses []License, opts ...AuthorityOption) *Authority {
	a := &Authority{
		licenses:    make(map[string]License, len(licenses)),
		activations: make(map[string]map[string]domain.ActivationInfo),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	for _, l := range licenses {
		if l.MaxActivations <= 0 {
			l.MaxActivations = 1
		}
		a.licenses[normalizeCode(l.Code)] = l
	}
	return a
}

// Revoke marks code as revoked. Existing activations fail their next validation.
func (a *Authority) Revoke(code string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := normalizeCode(code)
	if l, ok := a.licenses[key]; ok {
		l.Revoked = true
		a.licenses[key] = l
	}
}

// Activations returns the number of machines holding code.
func (a *Authority) Activations(code string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.activations[normalizeCode(code)])
}

func (a *Authority) Activate(ctx context.Context, code, machineID string) ports.LicenseResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := normalizeCode(code)
	l, status := a.check(key)
	if status != domain.StatusValid {
		return ports.LicenseResult{Status: status}
	}

	machines := a.activations[key]
	if info, ok := machines[machineID]; ok {
		return ports.LicenseResult{Status: domain.StatusAlreadyActive, Info: &info}
	}
	if len(machines) >= l.MaxActivations {
		return ports.LicenseResult{Status: domain.StatusMaxReached}
	}
	if machines == nil {
		machines = make(map[string]domain.ActivationInfo)
		a.activations[key] = machines
	}

	info := domain.ActivationInfo{
		ActivationCode: l.Code,
		MachineID:      machineID,
		ActivatedAt:    a.now().UTC().Format(time.RFC3339),
		MaxActivations: l.MaxActivations,
		IsValid:        true,
	}
	if !l.ExpiresAt.IsZero() {
		info.ExpiresAt = l.ExpiresAt.UTC().Format(time.RFC3339)
	}
	machines[machineID] = info
	a.recount(key)
	info = machines[machineID]
	return ports.LicenseResult{Status: domain.StatusValid, Info: &info}
}

func (a *Authority) Deactivate(ctx context.Context, code, machineID string) ports.LicenseResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := normalizeCode(code)
	if _, ok := a.licenses[key]; !ok {
		return ports.LicenseResult{Status: domain.StatusInvalid}
	}
	if _, ok := a.activations[key][machineID]; !ok {
		return ports.LicenseResult{Status: domain.StatusNotActivated}
	}
	delete(a.activations[key], machineID)
	a.recount(key)
	return ports.LicenseResult{Status: domain.StatusValid}
}

func (a *Authority) Validate(ctx context.Context, code, machineID string) ports.LicenseResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := normalizeCode(code)
	if _, status := a.check(key); status != domain.StatusValid {
		return ports.LicenseResult{Status: status}
	}
	info, ok := a.activations[key][machineID]
	if !ok {
		return ports.LicenseResult{Status: domain.StatusNotActivated}
	}
	return ports.LicenseResult{Status: domain.StatusValid, Info: &info}
}

func (a *Authority) check(key string) (License, domain.Status) {
	l, ok := a.licenses[key]
	switch {
	case !ok:
		return l, domain.StatusInvalid
	case l.Revoked:
		return l, domain.StatusRevoked
	case !l.ExpiresAt.IsZero() && a.now().After(l.ExpiresAt):
		return l, domain.StatusExpired
	}
	return l, domain.StatusValid
}

// recount refreshes CurrentActivations on every activation of key.
func (a *Authority) recount(key string) {
	machines := a.activations[key]
	for id, info := range machines {
		info.CurrentActivations = len(machines)
		machines[id] = info
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
