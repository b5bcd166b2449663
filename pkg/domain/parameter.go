package domain

import "math"

// ParameterID is the key agreed upon out of band between UI and host.
// It is compared case-sensitively.
type ParameterID string

// ParameterKind distinguishes continuous (slider) from boolean (toggle) parameters.
type ParameterKind string

const (
	KindContinuous ParameterKind = "continuous"
	KindBoolean    ParameterKind = "boolean"
)

// Range describes how the host maps a normalized value to its scaled value.
// The UI never performs the mapping; it only carries the properties along.
type Range struct {
	Min      float64 `json:"min" mapstructure:"min" yaml:"min"`
	Max      float64 `json:"max" mapstructure:"max" yaml:"max"`
	Interval float64 `json:"interval,omitempty" mapstructure:"interval" yaml:"interval"`
	Skew     float64 `json:"skew,omitempty" mapstructure:"skew" yaml:"skew"`
}

// ClampNormalized bounds v to [0,1]. NaN collapses to 0.
func ClampNormalized(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BatchUpdate is one entry of an ordered batch of parameter writes.
type BatchUpdate struct {
	ID    ParameterID `json:"id" mapstructure:"id" yaml:"id"`
	Value float64     `json:"value" mapstructure:"value" yaml:"value"`
}
