package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick uint64  `csv:"-"`
	WindowEndTick   uint64  `csv:"window_end"`
	Clock           float64 `csv:"clock"`

	// Formation at window end
	Shape string `csv:"shape"`
	Count int    `csv:"count"`
	Swaps int    `csv:"swaps"` // formation changes during the window

	// Control signal over the window
	Updates       int     `csv:"updates"` // fresh readings seen by the tick
	ExpansionMean float64 `csv:"expansion_mean"`
	TensionMean   float64 `csv:"tension_mean"`
	TensionMax    float64 `csv:"tension_max"`
	Connected     bool    `csv:"connected"`

	// Live positions sampled at window end
	RadiusMean float64 `csv:"radius_mean"`
	RadiusStd  float64 `csv:"radius_std"`
	RadiusP50  float64 `csv:"radius_p50"`
	RadiusP90  float64 `csv:"radius_p90"`

	PointSize float64 `csv:"point_size"`
	Rotation  float64 `csv:"rotation"`
}

// RadiusStats computes distance-from-origin statistics over every
// stride-th point of a packed xyz buffer.
func RadiusStats(positions []float32, stride int) (mean, std, p50, p90 float64) {
	if stride < 1 {
		stride = 1
	}
	n := len(positions) / 3
	if n == 0 {
		return 0, 0, 0, 0
	}

	radii := make([]float64, 0, (n+stride-1)/stride)
	for i := 0; i < n; i += stride {
		idx := i * 3
		radii = append(radii, r3.Norm(r3.Vec{
			X: float64(positions[idx]),
			Y: float64(positions[idx+1]),
			Z: float64(positions[idx+2]),
		}))
	}

	if len(radii) > 1 {
		mean, std = stat.MeanStdDev(radii, nil)
	} else {
		mean = radii[0]
	}
	sort.Float64s(radii)
	p50 = stat.Quantile(0.5, stat.Empirical, radii, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, radii, nil)
	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("clock", s.Clock),
		slog.String("shape", s.Shape),
		slog.Int("count", s.Count),
		slog.Int("swaps", s.Swaps),
		slog.Int("updates", s.Updates),
		slog.Float64("expansion_mean", s.ExpansionMean),
		slog.Float64("tension_mean", s.TensionMean),
		slog.Float64("tension_max", s.TensionMax),
		slog.Bool("connected", s.Connected),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("radius_std", s.RadiusStd),
		slog.Float64("radius_p90", s.RadiusP90),
		slog.Float64("point_size", s.PointSize),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
