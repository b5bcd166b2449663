package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/dredimura/surface/pkg/domain"
)

// Presets implements ports.PresetSource over a fixed set of presets.
type Presets struct {
	byID map[string]domain.Preset
}

// NewPresets creates a preset source. Ids must be unique and non-empty.
func NewPresets(presets ...domain.Preset) (*Presets, error) {
	byID := make(map[string]domain.Preset, len(presets))
	for _, p := range presets {
		if p.ID == "" {
			return nil, fmt.Errorf("preset missing ID")
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate preset: %s", p.ID)
		}
		byID[p.ID] = p
	}
	return &Presets{byID: byID}, nil
}

// List returns every preset ordered by group, then id.
func (p *Presets) List(ctx context.Context) ([]domain.Preset, error) {
	out := make([]domain.Preset, 0, len(p.byID))
	for _, preset := range p.byID {
		out = append(out, preset)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (p *Presets) Get(ctx context.Context, id string) (domain.Preset, error) {
	preset, ok := p.byID[id]
	if !ok {
		return domain.Preset{}, fmt.Errorf("%w: %s", domain.ErrPresetNotFound, id)
	}
	return preset, nil
}
