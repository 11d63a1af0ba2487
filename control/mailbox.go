package control

import "sync/atomic"

// reading pairs a published state with its publication number so Poll
// sees both in one load.
type reading struct {
	state State
	seq   uint64
}

// Mailbox is a single-slot, latest-value-wins cell between gesture
// producers and the render tick. Publish may run on any goroutine; Poll
// never blocks and always sees a whole State.
type Mailbox struct {
	slot    atomic.Pointer[reading]
	seq     atomic.Uint64
	current State  // last state handed to the tick
	seen    uint64 // seq of the reading returned by the last fresh Poll
}

// NewMailbox creates a mailbox holding the given initial state.
func NewMailbox(initial State) *Mailbox {
	m := &Mailbox{current: initial.Clamp()}
	m.slot.Store(&reading{state: m.current})
	return m
}

// Publish stores s as the newest reading, replacing any unread one.
// Among concurrent publishers the later sequence number wins.
func (m *Mailbox) Publish(s State) {
	r := &reading{state: s.Clamp(), seq: m.seq.Add(1)}
	for {
		old := m.slot.Load()
		if old.seq > r.seq {
			return
		}
		if m.slot.CompareAndSwap(old, r) {
			return
		}
	}
}

// Poll returns the newest state and whether it arrived since the previous
// Poll. When nothing new arrived the previous state is returned unchanged.
// Poll must only be called from the tick goroutine.
func (m *Mailbox) Poll() (State, bool) {
	r := m.slot.Load()
	if r.seq == m.seen {
		return m.current, false
	}
	m.current = r.state
	m.seen = r.seq
	return m.current, true
}

// Peek returns the newest published state without marking it consumed.
// Safe from any goroutine.
func (m *Mailbox) Peek() State {
	return m.slot.Load().state
}

// Seq returns the number of states published so far.
func (m *Mailbox) Seq() uint64 {
	return m.seq.Load()
}
