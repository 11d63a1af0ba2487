package gesture

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ReplaySource plays back a recorded trace with its original timing. When
// the trace ends the session ends with OnDisconnect unless Loop is set.
type ReplaySource struct {
	Samples []TraceSample
	Loop    bool
	Speed   float64 // playback rate multiplier; <= 0 means 1

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReplaySource creates a source over samples.
func NewReplaySource(samples []TraceSample, loop bool) *ReplaySource {
	return &ReplaySource{Samples: samples, Loop: loop, Speed: 1}
}

// Connect starts playback.
func (r *ReplaySource) Connect(ctx context.Context, h Handlers) error {
	if len(r.Samples) == 0 {
		return errors.New("replay trace is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	h.connect()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if r.play(ctx, h) {
			h.disconnect()
		}
	}()
	return nil
}

// play returns true when the trace finished on its own.
func (r *ReplaySource) play(ctx context.Context, h Handlers) bool {
	speed := r.Speed
	if speed <= 0 {
		speed = 1
	}

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		start := time.Now()
		base := r.Samples[0].TMillis
		for _, s := range r.Samples {
			at := time.Duration(float64(time.Duration(s.TMillis-base)*time.Millisecond) / speed)
			if wait := at - time.Since(start); wait > 0 {
				timer.Reset(wait)
				select {
				case <-ctx.Done():
					return false
				case <-timer.C:
				}
			} else if ctx.Err() != nil {
				return false
			}
			h.update(s.Expansion, s.Tension)
		}
		if !r.Loop {
			return true
		}
	}
}

// SendFrame is a no-op.
func (r *ReplaySource) SendFrame([]byte) {}

// Disconnect stops playback.
func (r *ReplaySource) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *ReplaySource) stopLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.wg.Wait()
}
