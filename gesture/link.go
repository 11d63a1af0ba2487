package gesture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/zenparticles/control"
)

// Status is the connection state shown on the HUD.
type Status int32

const (
	Offline Status = iota
	Connecting
	Online
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Online:
		return "online"
	default:
		return "offline"
	}
}

// Link binds a Source to a mailbox. Updates are clamped and published;
// after a disconnect late updates are dropped and the mailbox keeps the
// last value.
type Link struct {
	src     Source
	mailbox *control.Mailbox

	mu       sync.Mutex // serializes Connect/Disconnect
	status   atomic.Int32
	gen      atomic.Uint64 // bumped on every connect and disconnect
	updates  atomic.Uint64
	dropped  atomic.Uint64
	recorder *Recorder
}

// LinkOption configures a Link.
type LinkOption func(*Link)

// WithRecorder records every accepted update.
func WithRecorder(r *Recorder) LinkOption {
	return func(l *Link) { l.recorder = r }
}

// NewLink creates a disconnected link.
func NewLink(src Source, mailbox *control.Mailbox, opts ...LinkOption) *Link {
	l := &Link{src: src, mailbox: mailbox}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Connect starts a session on the source. Calling it while connected is a no-op.
func (l *Link) Connect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if Status(l.status.Load()) != Offline {
		return nil
	}
	gen := l.gen.Add(1)
	l.status.Store(int32(Connecting))

	err := l.src.Connect(ctx, Handlers{
		OnConnect: func() {
			if l.gen.Load() == gen {
				l.status.CompareAndSwap(int32(Connecting), int32(Online))
				slog.Info("gesture session connected")
			}
		},
		OnDisconnect: func() {
			if l.gen.CompareAndSwap(gen, gen+1) {
				l.status.Store(int32(Offline))
				slog.Warn("gesture session lost", "updates", l.updates.Load())
			}
		},
		OnUpdate: func(expansion, tension float64) {
			l.accept(gen, expansion, tension)
		},
	})
	if err != nil {
		l.gen.Add(1)
		l.status.Store(int32(Offline))
		return fmt.Errorf("connect gesture source: %w", err)
	}
	return nil
}

func (l *Link) accept(gen uint64, expansion, tension float64) {
	if l.gen.Load() != gen || Status(l.status.Load()) == Offline {
		l.dropped.Add(1)
		return
	}
	s := control.FromFloat64(expansion, tension)
	l.mailbox.Publish(s)
	l.updates.Add(1)
	if l.recorder != nil {
		if err := l.recorder.Record(s); err != nil {
			slog.Warn("gesture trace write failed", "error", err)
		}
	}
}

// Disconnect ends the session. The mailbox keeps its last value.
func (l *Link) Disconnect() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if Status(l.status.Load()) == Offline {
		return
	}
	l.gen.Add(1)
	l.status.Store(int32(Offline))
	l.src.Disconnect()
	slog.Info("gesture session closed", "updates", l.updates.Load(), "dropped", l.dropped.Load())
}

// Toggle connects when offline and disconnects otherwise.
func (l *Link) Toggle(ctx context.Context) error {
	if l.Status() == Offline {
		return l.Connect(ctx)
	}
	l.Disconnect()
	return nil
}

// SendFrame forwards a frame while a session is live.
func (l *Link) SendFrame(jpeg []byte) {
	if l.Status() != Online {
		return
	}
	l.src.SendFrame(jpeg)
}

// Status returns the current connection state.
func (l *Link) Status() Status { return Status(l.status.Load()) }

// Connected reports whether the session is live.
func (l *Link) Connected() bool { return l.Status() == Online }

// Updates returns the number of accepted readings.
func (l *Link) Updates() uint64 { return l.updates.Load() }

// Dropped returns the number of readings discarded after a disconnect.
func (l *Link) Dropped() uint64 { return l.dropped.Load() }
