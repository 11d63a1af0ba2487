// Package control carries the gesture control signals from the inference
// boundary to the animation tick.
package control

import "log/slog"

// State is one complete gesture reading. Both values live in [0, 1].
type State struct {
	Expansion float32 // hand distance: 0 = touching, 1 = arms spread
	Tension   float32 // fist clench: 0 = open palms, 1 = tight fists
}

// Clamp returns s with both values forced into [0, 1]. NaN becomes 0.
func (s State) Clamp() State {
	return State{
		Expansion: Clamp01(s.Expansion),
		Tension:   Clamp01(s.Tension),
	}
}

// Clamp01 forces v into [0, 1], mapping NaN to 0.
func Clamp01(v float32) float32 {
	if v != v {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FromFloat64 converts loosely typed readings from the wire. NaN reads as
// 0; everything else, infinities and values beyond float32 range included,
// clamps into [0, 1].
func FromFloat64(expansion, tension float64) State {
	return State{
		Expansion: float32(expansion),
		Tension:   float32(tension),
	}.Clamp()
}

// LogValue implements slog.LogValuer for structured logging.
func (s State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("expansion", float64(s.Expansion)),
		slog.Float64("tension", float64(s.Tension)),
	)
}
