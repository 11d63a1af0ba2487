package gesture

import (
	"context"
	"sync"

	"github.com/pthm-cable/zenparticles/control"
)

// ManualSource turns keyboard input into readings.
type ManualSource struct {
	mu        sync.Mutex
	handlers  Handlers
	connected bool
	current   control.State
}

// NewManualSource creates a source starting at initial.
func NewManualSource(initial control.State) *ManualSource {
	return &ManualSource{current: initial.Clamp()}
}

// Connect marks the source live and emits the current reading.
func (m *ManualSource) Connect(_ context.Context, h Handlers) error {
	m.mu.Lock()
	m.handlers = h
	m.connected = true
	cur := m.current
	m.mu.Unlock()

	h.connect()
	h.update(float64(cur.Expansion), float64(cur.Tension))
	return nil
}

// Adjust moves the reading by the given deltas and emits it.
func (m *ManualSource) Adjust(dExpansion, dTension float64) {
	m.mu.Lock()
	m.current = control.State{
		Expansion: m.current.Expansion + float32(dExpansion),
		Tension:   m.current.Tension + float32(dTension),
	}.Clamp()
	cur, h, ok := m.current, m.handlers, m.connected
	m.mu.Unlock()

	if ok {
		h.update(float64(cur.Expansion), float64(cur.Tension))
	}
}

// Set replaces the reading and emits it.
func (m *ManualSource) Set(s control.State) {
	m.mu.Lock()
	m.current = s.Clamp()
	cur, h, ok := m.current, m.handlers, m.connected
	m.mu.Unlock()

	if ok {
		h.update(float64(cur.Expansion), float64(cur.Tension))
	}
}

// Current returns the held reading.
func (m *ManualSource) Current() control.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SendFrame is a no-op.
func (m *ManualSource) SendFrame([]byte) {}

// Disconnect stops emitting.
func (m *ManualSource) Disconnect() {
	m.mu.Lock()
	m.connected = false
	m.handlers = Handlers{}
	m.mu.Unlock()
}
