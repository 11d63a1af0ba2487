// Package gesture connects external hand-gesture readings to the control
// mailbox consumed by the animation tick.
package gesture

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// ErrNotConnected is returned when an operation needs a live session.
var ErrNotConnected = errors.New("gesture: not connected")

// Handlers receives session events from a Source. Callbacks may run on any
// goroutine and must not block.
type Handlers struct {
	OnConnect    func()
	OnDisconnect func()
	// OnUpdate carries raw readings; receivers clamp them.
	OnUpdate func(expansion, tension float64)
}

func (h Handlers) connect() {
	if h.OnConnect != nil {
		h.OnConnect()
	}
}

func (h Handlers) disconnect() {
	if h.OnDisconnect != nil {
		h.OnDisconnect()
	}
}

func (h Handlers) update(expansion, tension float64) {
	if h.OnUpdate != nil {
		h.OnUpdate(expansion, tension)
	}
}

// Source is a producer of gesture readings. Connect starts a session;
// SendFrame forwards an encoded camera frame and never blocks; Disconnect
// ends the session without firing OnDisconnect.
type Source interface {
	Connect(ctx context.Context, h Handlers) error
	SendFrame(jpeg []byte)
	Disconnect()
}

// Instruction is the task description sent with every frame to an
// inference service.
const Instruction = `You are a vision-based controller for an interactive art installation.
Your goal is to analyze the video stream for the user's hand gestures and update the visual parameters.

Controls:
1. "Expansion": Estimate the horizontal distance between the user's two hands relative to their body width.
   - 0.0 = Hands touching or crossed.
   - 1.0 = Arms fully spread wide.
2. "Tension": Estimate how "tight" or "energetic" the hands look.
   - 0.0 = Open palms, relaxed fingers.
   - 1.0 = Tight fists or rapid shaking movement.

If no hands are visible, output defaults (Expansion: 0.5, Tension: 0.1).

Report "expansion" and "tension" for every frame you process.`

// coerce reads a loosely typed wire value as a number. Anything that is
// not numeric reads as 0.
func coerce(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
