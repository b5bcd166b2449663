package ports

import (
	"context"

	"github.com/dredimura/surface/pkg/domain"
)

// PresetSource provides read access to the preset library.
type PresetSource interface {
	List(ctx context.Context) ([]domain.Preset, error)

	// Get returns domain.ErrPresetNotFound for unknown ids.
	Get(ctx context.Context, id string) (domain.Preset, error)
}
