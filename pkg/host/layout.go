package host

import (
	"fmt"

	"github.com/dredimura/surface/pkg/domain"
)

// ParameterSpec declares one host parameter. Default is in range units.
type ParameterSpec struct {
	ID      domain.ParameterID   `yaml:"id" json:"id"`
	Kind    domain.ParameterKind `yaml:"kind" json:"kind"`
	Range   domain.Range         `yaml:",inline" json:"range"`
	Default float64              `yaml:"default" json:"default"`
	Label   string               `yaml:"label,omitempty" json:"label,omitempty"`
}

// Validate checks the declaration is usable.
func (s ParameterSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("parameter id is empty")
	}
	switch s.Kind {
	case domain.KindBoolean:
		return nil
	case domain.KindContinuous, "":
	default:
		return fmt.Errorf("parameter %q: unknown kind %q", s.ID, s.Kind)
	}
	if s.Range.Max <= s.Range.Min {
		return fmt.Errorf("parameter %q: max must exceed min", s.ID)
	}
	if s.Range.Interval < 0 || s.Range.Skew < 0 {
		return fmt.Errorf("parameter %q: interval and skew must not be negative", s.ID)
	}
	return nil
}

// Preamp types selectable through the preampType parameter.
const (
	PreampCathode    = 0
	PreampFilament   = 1
	PreampSteelPlate = 2
)

// EffectIDs lists the five effect mixes of each preamp type, in slot order.
var EffectIDs = map[int][]domain.ParameterID{
	PreampCathode:    {"cath_ember", "cath_haze", "cath_echo", "cath_drift", "cath_velvet"},
	PreampFilament:   {"fil_fracture", "fil_glisten", "fil_cascade", "fil_phase", "fil_prism"},
	PreampSteelPlate: {"steel_scorch", "steel_rust", "steel_grind", "steel_shred", "steel_snarl"},
}

// DefaultLayout is the parameter layout of the Dre-Dimura preamp.
func DefaultLayout() []ParameterSpec {
	mix := domain.Range{Min: 0, Max: 1, Interval: 0.01, Skew: 1}

	layout := []ParameterSpec{
		{ID: "preampType", Kind: domain.KindContinuous, Range: domain.Range{Min: 0, Max: 2, Interval: 1, Skew: 1}, Label: "Preamp"},
		{ID: "drive", Kind: domain.KindContinuous, Range: domain.Range{Min: 0, Max: 10, Interval: 0.1, Skew: 1}, Default: 3, Label: "Drive"},
		{ID: "tone", Kind: domain.KindContinuous, Range: domain.Range{Min: 0, Max: 10, Interval: 0.1, Skew: 1}, Default: 5, Label: "Tone"},
		{ID: "output", Kind: domain.KindContinuous, Range: domain.Range{Min: -24, Max: 12, Interval: 0.1, Skew: 1}, Default: 0, Label: "Output"},
		{ID: "bypass", Kind: domain.KindBoolean, Label: "Bypass"},
	}
	for _, preamp := range []int{PreampCathode, PreampFilament, PreampSteelPlate} {
		for _, id := range EffectIDs[preamp] {
			layout = append(layout, ParameterSpec{ID: id, Kind: domain.KindContinuous, Range: mix})
		}
	}
	return layout
}
