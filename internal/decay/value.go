// Package decay provides the bounded, exponentially decaying numeric
// primitive that all relationship state is built from.
package decay

import (
	"math"
	"time"
)

// Value is a bounded number with a stable base and a transient delta.
// The delta decays exponentially toward zero with the configured half-life;
// the base only moves when explicitly set. Reads clamp to the bounds, so the
// effective value can never leave [Lower, Upper] no matter how large the
// delta grows.
//
// A HalfLife of zero means the delta never decays.
type Value struct {
	Base     float64       `json:"base"`
	Delta    float64       `json:"delta"`
	Lower    float64       `json:"lower"`
	Upper    float64       `json:"upper"`
	HalfLife time.Duration `json:"half_life_ns"`
}

// New returns a value bounded to [lower, upper]. A non-positive halfLife
// disables decay.
func New(base, lower, upper float64, halfLife time.Duration) *Value {
	if halfLife < 0 {
		halfLife = 0
	}
	return &Value{
		Base:     base,
		Lower:    lower,
		Upper:    upper,
		HalfLife: halfLife,
	}
}

// NewUnit returns a value bounded to [0, 1].
func NewUnit(base float64, halfLife time.Duration) *Value {
	return New(base, 0, 1, halfLife)
}

// Effective returns base+delta clamped to the bounds.
func (v *Value) Effective() float64 {
	return Clamp(v.Base+v.Delta, v.Lower, v.Upper)
}

// ApplyDecay shrinks the delta by half for every half-life contained in
// elapsed. Values without a half-life are untouched.
func (v *Value) ApplyDecay(elapsed time.Duration) {
	if v.HalfLife <= 0 || elapsed <= 0 || v.Delta == 0 {
		return
	}
	v.Delta *= math.Pow(0.5, float64(elapsed)/float64(v.HalfLife))
}

// AddDelta shifts the transient delta.
func (v *Value) AddDelta(d float64) {
	v.Delta += d
}

// SetDelta replaces the transient delta.
func (v *Value) SetDelta(d float64) {
	v.Delta = d
}

// SetBase replaces the stable base. Out-of-range bases are legal; Effective
// clamps on read.
func (v *Value) SetBase(b float64) {
	v.Base = b
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp01 bounds x to the unit interval.
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}
