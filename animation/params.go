// Package animation turns a formation's original positions plus the live
// gesture controls into the positions drawn every frame.
package animation

import "github.com/pthm-cable/zenparticles/config"

// Params holds the deformation constants applied each tick.
type Params struct {
	ExpansionGain    float64 // expansionFactor = 1 + expansion * ExpansionGain
	BreatheFrequency float64
	BreathePhase     float64 // phase offset per particle index
	BreatheAmplitude float64
	JitterGain       float64 // jitterAmount = tension * JitterGain
	JitterScale      float64
	SpinBase         float64
	SpinTension      float64
	SpinScale        float64
	BurstThreshold   float64
	PointSizeBase    float64
	PointSizeTension float64

	// ParallelThreshold is the particle count from which ticks fan out to
	// the worker pool.
	ParallelThreshold int
	// Workers is the pool size; 0 means GOMAXPROCS.
	Workers int
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		ExpansionGain:     2.5,
		BreatheFrequency:  2.0,
		BreathePhase:      0.1,
		BreatheAmplitude:  0.1,
		JitterGain:        0.2,
		JitterScale:       5.0,
		SpinBase:          0.1,
		SpinTension:       2.0,
		SpinScale:         0.5,
		BurstThreshold:    0.5,
		PointSizeBase:     0.05,
		PointSizeTension:  0.05,
		ParallelThreshold: 4096,
	}
}

// ParamsFromConfig returns the parameters held in the animation config section.
func ParamsFromConfig(c *config.AnimationConfig) Params {
	return Params{
		ExpansionGain:     c.ExpansionGain,
		BreatheFrequency:  c.BreatheFrequency,
		BreathePhase:      c.BreathePhase,
		BreatheAmplitude:  c.BreatheAmplitude,
		JitterGain:        c.JitterGain,
		JitterScale:       c.JitterScale,
		SpinBase:          c.SpinBase,
		SpinTension:       c.SpinTension,
		SpinScale:         c.SpinScale,
		BurstThreshold:    c.BurstThreshold,
		PointSizeBase:     c.PointSizeBase,
		PointSizeTension:  c.PointSizeTension,
		ParallelThreshold: c.ParallelThreshold,
		Workers:           c.Workers,
	}
}

// ExpansionFactor returns the uniform radial scale for an expansion reading.
func (p Params) ExpansionFactor(expansion float32) float32 {
	return float32(1 + float64(expansion)*p.ExpansionGain)
}

// PointSize returns the rendered point size for a tension reading.
func (p Params) PointSize(tension float32) float32 {
	return float32(p.PointSizeBase + float64(tension)*p.PointSizeTension)
}

// SpinRate returns the rotation speed about the vertical axis in rad/s.
func (p Params) SpinRate(tension float32) float64 {
	return (p.SpinBase + float64(tension)*p.SpinTension) * p.SpinScale
}
