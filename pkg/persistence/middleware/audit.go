package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

type auditMiddleware struct {
	next   ports.ActivationStore
	logger *slog.Logger
}

// NewAuditMiddleware logs every store operation. Activation codes are masked.
func NewAuditMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.ActivationStore) ports.ActivationStore {
		return &auditMiddleware{next: next, logger: logger}
	}
}

func (m *auditMiddleware) Save(ctx context.Context, info domain.ActivationInfo) error {
	err := m.next.Save(ctx, info)
	m.log("save", info.MachineID, err, "code", MaskCode(info.ActivationCode), "valid", info.IsValid)
	return err
}

func (m *auditMiddleware) Load(ctx context.Context, machineID string) (*domain.ActivationInfo, error) {
	info, err := m.next.Load(ctx, machineID)
	if errors.Is(err, domain.ErrActivationNotFound) {
		m.logger.Debug("Activation store: no record", "machine", machineID)
		return nil, err
	}
	if info != nil {
		m.log("load", machineID, err, "code", MaskCode(info.ActivationCode))
	} else {
		m.log("load", machineID, err)
	}
	return info, err
}

func (m *auditMiddleware) Delete(ctx context.Context, machineID string) error {
	err := m.next.Delete(ctx, machineID)
	m.log("delete", machineID, err)
	return err
}

func (m *auditMiddleware) log(op, machineID string, err error, attrs ...any) {
	attrs = append([]any{"op", op, "machine", machineID}, attrs...)
	if err != nil {
		m.logger.Warn("Activation store operation failed", append(attrs, "err", err)...)
		return
	}
	m.logger.Debug("Activation store", attrs...)
}

// MaskCode keeps the last four characters of an activation code.
func MaskCode(code string) string {
	if strings.HasPrefix(code, encryptedPrefix) {
		return "[encrypted]"
	}
	const visible = 4
	if len(code) <= visible {
		return strings.Repeat("*", len(code))
	}
	return strings.Repeat("*", len(code)-visible) + code[len(code)-visible:]
}
