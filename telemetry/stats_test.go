package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/zenparticles/animation"
	"github.com/pthm-cable/zenparticles/config"
	"github.com/pthm-cable/zenparticles/control"
	"github.com/pthm-cable/zenparticles/geometry"
)

// shell returns n points at radius 1..n along x.
func shell(n int) []float32 {
	pos := make([]float32, n*3)
	for i := 0; i < n; i++ {
		pos[i*3] = float32(i + 1)
	}
	return pos
}

func TestRadiusStats(t *testing.T) {
	tests := []struct {
		name     string
		pos      []float32
		stride   int
		mean     float64
		p50, p90 float64
	}{
		{"empty", nil, 1, 0, 0, 0},
		{"single", []float32{3, 4, 0}, 1, 5, 5, 5},
		{"ten", shell(10), 1, 5.5, 5, 9},
		{"stride", shell(10), 2, 5, 5, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, _, p50, p90 := RadiusStats(tt.pos, tt.stride)
			if math.Abs(mean-tt.mean) > 1e-9 {
				t.Errorf("mean = %v, want %v", mean, tt.mean)
			}
			if math.Abs(p50-tt.p50) > 1e-9 || math.Abs(p90-tt.p90) > 1e-9 {
				t.Errorf("p50/p90 = %v/%v, want %v/%v", p50, p90, tt.p50, tt.p90)
			}
		})
	}
}

func TestRadiusStatsStdDev(t *testing.T) {
	_, std, _, _ := RadiusStats([]float32{1, 0, 0, 3, 0, 0}, 1)
	// Sample standard deviation of {1, 3}.
	if math.Abs(std-math.Sqrt2) > 1e-9 {
		t.Errorf("std = %v, want sqrt(2)", std)
	}
}

func frame(tick uint64, clock float64, shape geometry.Shape, pos []float32, ctl control.State) animation.Frame {
	return animation.Frame{
		Positions: pos,
		Count:     len(pos) / 3,
		Shape:     shape,
		Control:   ctl,
		Clock:     clock,
		Tick:      tick,
		PointSize: 0.07,
	}
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 1)
	pos := shell(4)

	c.RecordTick(frame(1, 0.25, geometry.Heart, pos, control.State{Expansion: 0.2, Tension: 0.4}), true)
	c.RecordTick(frame(2, 0.5, geometry.Heart, pos, control.State{Expansion: 0.4, Tension: 0.8}), false)
	if c.ShouldFlush(0.5) {
		t.Error("flush before window end")
	}
	last := frame(3, 1.0, geometry.Saturn, shell(2), control.State{Expansion: 0.6, Tension: 0})
	c.RecordTick(last, true)
	if !c.ShouldFlush(1.0) {
		t.Fatal("no flush at window end")
	}

	s := c.Flush(last, true)
	if s.WindowStartTick != 0 || s.WindowEndTick != 3 {
		t.Errorf("window ticks = %d..%d, want 0..3", s.WindowStartTick, s.WindowEndTick)
	}
	if s.Shape != "Saturn" || s.Count != 2 || s.Swaps != 1 || s.Updates != 2 {
		t.Errorf("shape %s count %d swaps %d updates %d", s.Shape, s.Count, s.Swaps, s.Updates)
	}
	if math.Abs(s.ExpansionMean-0.4) > 1e-6 || math.Abs(s.TensionMax-0.8) > 1e-6 {
		t.Errorf("expansion mean %v, tension max %v", s.ExpansionMean, s.TensionMax)
	}
	if s.RadiusMean != 1.5 || !s.Connected {
		t.Errorf("radius mean %v connected %v", s.RadiusMean, s.Connected)
	}

	if c.ShouldFlush(1.5) {
		t.Error("new window should start at the flush clock")
	}
	next := c.Flush(frame(4, 2.0, geometry.Saturn, shell(2), control.State{}), false)
	if next.Swaps != 0 || next.Updates != 0 || next.WindowStartTick != 3 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestOutputManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")

	om, err := NewOutputManager(dir, "abc-123")
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: uint64(i), Shape: "Heart"}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, 9); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkCalm, Tick: 9, Description: "quiet"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "window_end,clock,shape") {
		t.Errorf("telemetry.csv = %q", data)
	}

	for _, name := range []string{"perf.csv", "bookmarks.csv", "config.yaml", "session"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("", "")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil manager WriteTelemetry = %v", err)
	}
	if om.Dir() != "" || om.Close() != nil {
		t.Error("nil manager should be inert")
	}
}
