package gesture

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/zenparticles/control"
)

// TraceSample is one recorded reading.
type TraceSample struct {
	TMillis   int64   `csv:"t_ms"`
	Expansion float64 `csv:"expansion"`
	Tension   float64 `csv:"tension"`
}

// Recorder appends accepted readings to a CSV trace.
type Recorder struct {
	mu            sync.Mutex
	w             io.Writer
	closer        io.Closer
	start         time.Time
	now           func() time.Time
	headerWritten bool
}

// NewRecorder creates a trace file at path. Returns nil if path is empty
// (recording disabled).
func NewRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	r := NewRecorderWriter(f)
	r.closer = f
	return r, nil
}

// NewRecorderWriter records to w.
func NewRecorderWriter(w io.Writer) *Recorder {
	return &Recorder{w: w, now: time.Now}
}

// Record appends s stamped with the time since the first record.
func (r *Recorder) Record(s control.State) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.start.IsZero() {
		r.start = now
	}
	records := []TraceSample{{
		TMillis:   now.Sub(r.start).Milliseconds(),
		Expansion: float64(s.Expansion),
		Tension:   float64(s.Tension),
	}}

	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.w); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// Close closes the underlying file, if the recorder owns one.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ReadTrace parses a CSV trace and sorts it by time.
func ReadTrace(in io.Reader) ([]TraceSample, error) {
	var samples []TraceSample
	if err := gocsv.Unmarshal(in, &samples); err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].TMillis < samples[j].TMillis })
	return samples, nil
}

// LoadTrace reads a CSV trace file.
func LoadTrace(path string) ([]TraceSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()
	return ReadTrace(f)
}
