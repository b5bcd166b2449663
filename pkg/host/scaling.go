package host

import (
	"math"

	"github.com/dredimura/surface/pkg/domain"
)

// FromNormalized maps a normalized value onto r, applying skew and snapping
// to the interval.
func FromNormalized(r domain.Range, n float64) float64 {
	p := domain.ClampNormalized(n)
	if r.Skew > 0 && r.Skew != 1 && p > 0 {
		p = math.Exp(math.Log(p) / r.Skew)
	}
	return Snap(r, r.Min+(r.Max-r.Min)*p)
}

// ToNormalized maps a value in r back to [0,1].
func ToNormalized(r domain.Range, v float64) float64 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	p := domain.ClampNormalized((v - r.Min) / span)
	if r.Skew > 0 && r.Skew != 1 {
		p = math.Pow(p, r.Skew)
	}
	return p
}

// Snap rounds v to the nearest interval step and clamps it to r.
func Snap(r domain.Range, v float64) float64 {
	if r.Interval > 0 {
		v = r.Min + r.Interval*math.Round((v-r.Min)/r.Interval)
	}
	return math.Min(math.Max(v, r.Min), r.Max)
}

// Quantize snaps a normalized value to the nearest value representable in r.
func Quantize(r domain.Range, n float64) float64 {
	return ToNormalized(r, FromNormalized(r, n))
}
