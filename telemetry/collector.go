package telemetry

import (
	"math"

	"github.com/pthm-cable/zenparticles/animation"
	"github.com/pthm-cable/zenparticles/geometry"
)

// Collector accumulates per-frame observations within clock windows and
// produces WindowStats.
type Collector struct {
	windowSec float64
	stride    int

	windowStart     float64
	windowStartTick uint64

	ticks      int
	updates    int
	swaps      int
	sumE, sumT float64
	maxT       float64

	lastShape geometry.Shape
	lastCount int
	seen      bool
}

// NewCollector creates a collector with windows of windowSec seconds of
// animation clock. stride selects every Nth particle for radius stats.
func NewCollector(windowSec float64, stride int) *Collector {
	if windowSec <= 0 {
		windowSec = 5
	}
	if stride < 1 {
		stride = 1
	}
	return &Collector{windowSec: windowSec, stride: stride}
}

// RecordTick records one animated frame. fresh reports whether the tick saw
// a new control reading.
func (c *Collector) RecordTick(f animation.Frame, fresh bool) {
	c.ticks++
	if fresh {
		c.updates++
	}
	e, t := float64(f.Control.Expansion), float64(f.Control.Tension)
	c.sumE += e
	c.sumT += t
	c.maxT = math.Max(c.maxT, t)

	if c.seen && (f.Shape != c.lastShape || f.Count != c.lastCount) {
		c.swaps++
	}
	c.lastShape, c.lastCount, c.seen = f.Shape, f.Count, true
}

// ShouldFlush reports whether the window covering clock has ended.
func (c *Collector) ShouldFlush(clock float64) bool {
	return clock-c.windowStart >= c.windowSec
}

// Flush produces a WindowStats from f and resets counters for the next window.
func (c *Collector) Flush(f animation.Frame, connected bool) WindowStats {
	mean, std, p50, p90 := RadiusStats(f.Positions[:f.Count*3], c.stride)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   f.Tick,
		Clock:           f.Clock,
		Shape:           f.Shape.String(),
		Count:           f.Count,
		Swaps:           c.swaps,
		Updates:         c.updates,
		TensionMax:      c.maxT,
		Connected:       connected,
		RadiusMean:      mean,
		RadiusStd:       std,
		RadiusP50:       p50,
		RadiusP90:       p90,
		PointSize:       float64(f.PointSize),
		Rotation:        float64(f.Rotation),
	}
	if c.ticks > 0 {
		stats.ExpansionMean = c.sumE / float64(c.ticks)
		stats.TensionMean = c.sumT / float64(c.ticks)
	}

	c.windowStart = f.Clock
	c.windowStartTick = f.Tick
	c.ticks, c.updates, c.swaps = 0, 0, 0
	c.sumE, c.sumT, c.maxT = 0, 0, 0

	return stats
}

// WindowSeconds returns the window length in clock seconds.
func (c *Collector) WindowSeconds() float64 {
	return c.windowSec
}
