package gesture

import (
	"context"
	"math"
	"sync"
	"time"
)

// SyntheticSource emits slow oscillating readings for demos and headless runs.
type SyntheticSource struct {
	ExpansionPeriod float64 // seconds
	TensionPeriod   float64 // seconds
	Rate            float64 // updates per second

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyntheticSource creates a source with the given periods and rate.
func NewSyntheticSource(expansionPeriod, tensionPeriod, rate float64) *SyntheticSource {
	return &SyntheticSource{
		ExpansionPeriod: expansionPeriod,
		TensionPeriod:   tensionPeriod,
		Rate:            rate,
	}
}

// At returns the readings at t seconds into the session. Both stay in [0, 1].
func (s *SyntheticSource) At(t float64) (expansion, tension float64) {
	expansion = 0.5 + 0.5*math.Sin(2*math.Pi*t/nonZero(s.ExpansionPeriod))
	tension = 0.5 - 0.5*math.Cos(2*math.Pi*t/nonZero(s.TensionPeriod))
	return expansion, tension
}

func nonZero(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// Connect starts emitting readings until Disconnect or ctx ends.
func (s *SyntheticSource) Connect(ctx context.Context, h Handlers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	rate := s.Rate
	if rate <= 0 {
		rate = 5
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	h.connect()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
		defer ticker.Stop()

		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				h.update(s.At(now.Sub(start).Seconds()))
			}
		}
	}()
	return nil
}

// SendFrame is a no-op; the signal does not depend on the camera.
func (s *SyntheticSource) SendFrame([]byte) {}

// Disconnect stops the emitter.
func (s *SyntheticSource) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *SyntheticSource) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}
