package telemetry

import (
	"math"
	"testing"
	"time"
)

// fakeClock advances by step on every read.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

// scriptedClock advances by the given steps in turn, cycling.
func scriptedClock(steps ...time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	i := 0
	return func() time.Time {
		t = t.Add(steps[i%len(steps)])
		i++
		return t
	}
}

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	// Reads per tick: start, control, animate, end.
	pc.now = scriptedClock(0, 0, time.Millisecond, 2*time.Millisecond)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseControl)
		pc.StartPhase(PhaseAnimate)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration != 3*time.Millisecond {
		t.Errorf("avg tick = %v, want 3ms", stats.AvgTickDuration)
	}
	if got := stats.PhaseAvg[PhaseControl]; got != time.Millisecond {
		t.Errorf("control avg = %v, want 1ms", got)
	}
	if got := stats.PhaseAvg[PhaseAnimate]; got != 2*time.Millisecond {
		t.Errorf("animate avg = %v, want 2ms", got)
	}
	if stats.MinTickDuration != 3*time.Millisecond || stats.MaxTickDuration != 3*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 3ms", stats.MinTickDuration, stats.MaxTickDuration)
	}
	if stats.P90TickDuration != 3*time.Millisecond {
		t.Errorf("p90 = %v, want 3ms", stats.P90TickDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	pc.now = fakeClock(time.Millisecond)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseRender)
		pc.EndTick()
	}

	stats := pc.Stats()
	// Each tick reads the clock three times: start, phase, end.
	if stats.AvgTickDuration != 2*time.Millisecond {
		t.Errorf("avg tick = %v, want 2ms", stats.AvgTickDuration)
	}
	if stats.TicksPerSecond != 500 {
		t.Errorf("ticks/sec = %v, want 500", stats.TicksPerSecond)
	}
	if pct := stats.PhasePct[PhaseRender]; pct != 50 {
		t.Errorf("render pct = %v, want 50", pct)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)
	// The gap before each tick starts is not measured.
	pc.now = scriptedClock(5*time.Millisecond, 0, time.Millisecond, 10*time.Millisecond)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		pc.StartPhase("slow")
		pc.EndTick()
	}

	stats := pc.Stats()
	tests := []struct {
		phase string
		avg   time.Duration
		pct   float64
	}{
		{"fast", time.Millisecond, 100.0 / 11},
		{"slow", 10 * time.Millisecond, 1000.0 / 11},
	}
	for _, tt := range tests {
		if got := stats.PhaseAvg[tt.phase]; got != tt.avg {
			t.Errorf("%s avg = %v, want %v", tt.phase, got, tt.avg)
		}
		if got := stats.PhasePct[tt.phase]; math.Abs(got-tt.pct) > 1e-9 {
			t.Errorf("%s pct = %v, want %v", tt.phase, got, tt.pct)
		}
	}
	if stats.AvgTickDuration != 11*time.Millisecond {
		t.Errorf("avg tick = %v, want 11ms", stats.AvgTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.now = fakeClock(16 * time.Millisecond)

	pc.RecordFrame()
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 16*time.Millisecond {
		t.Errorf("frame duration = %v, want 16ms", stats.FrameDuration)
	}
	if stats.FPS < 62 || stats.FPS > 63 {
		t.Errorf("FPS = %v, want 62.5", stats.FPS)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		PhasePct:        map[string]float64{PhaseAnimate: 60, PhaseRender: 30},
	}
	row := s.ToCSV(42)
	if row.WindowEnd != 42 || row.AvgTickUS != 1500 || row.AnimatePct != 60 || row.RenderPct != 30 {
		t.Errorf("ToCSV = %+v", row)
	}
}
