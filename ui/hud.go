package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/zenparticles/control"
	"github.com/pthm-cable/zenparticles/geometry"
	"github.com/pthm-cable/zenparticles/gesture"
	"github.com/pthm-cable/zenparticles/palette"
	"github.com/pthm-cable/zenparticles/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Shape        geometry.Shape
	Palette      *palette.Palette
	ColorIndex   int
	Status       gesture.Status
	Mode         string
	Control      control.State
	Count        int
	Updates      uint64
	FPS          int32
	ScreenWidth  int32
	ScreenHeight int32
}

// HUDActions reports what the user clicked this frame.
type HUDActions struct {
	Shape         geometry.Shape
	ShapeChanged  bool
	ColorIndex    int
	ColorChanged  bool
	ToggleConnect bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer  *Renderer
	cool, hot colorful.Color
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	cool, _ := colorful.Hex("#00ccff")
	hot, _ := colorful.Hex("#ff0055")
	return &HUD{renderer: NewRenderer(), cool: cool, hot: hot}
}

// StatusText returns the banner for a connection state.
func StatusText(s gesture.Status) string {
	switch s {
	case gesture.Online:
		return "SYSTEM ONLINE // TRACKING"
	case gesture.Connecting:
		return "CONNECTING..."
	default:
		return "OFFLINE"
	}
}

func (h *HUD) gaugeColor(v float32) rl.Color {
	r, g, b, a := palette.RGBA8(palette.Gauge(h.cool, h.hot, v), 1)
	return rl.Color{R: r, G: g, B: b, A: a}
}

// Draw renders the HUD and returns the user's selections.
func (h *HUD) Draw(data HUDData) HUDActions {
	t := h.renderer.Theme
	act := HUDActions{Shape: data.Shape, ColorIndex: data.ColorIndex}

	// Status and gauges, top left
	x, y := t.Padding, t.Padding
	const panelW = 280
	h.renderer.DrawPanel(x, y, panelW, 128)
	x += t.Padding
	y += t.Padding

	statusColor := t.Offline
	if data.Status == gesture.Online {
		statusColor = t.Online
	}
	rl.DrawCircle(x+5, y+7, 5, statusColor)
	rl.DrawText(StatusText(data.Status), x+16, y, t.HeaderFontSize, statusColor)
	y += t.LineHeight + 6

	y = h.renderer.DrawGauge(x, y, "Expansion", data.Control.Expansion, h.gaugeColor(data.Control.Expansion), panelW-2*t.Padding)
	y = h.renderer.DrawGauge(x, y, "Tension", data.Control.Tension, h.gaugeColor(data.Control.Tension), panelW-2*t.Padding)
	y = h.renderer.DrawLabelValue(x, y, "Particles", humanize.Comma(int64(data.Count)))
	h.renderer.DrawLabelValue(x, y, "Source", fmt.Sprintf("%s, %s updates", data.Mode, humanize.Comma(int64(data.Updates))))

	// Connect toggle
	label := "Connect"
	if data.Status != gesture.Offline {
		label = "Disconnect"
	}
	if gui.Button(rl.Rectangle{X: float32(t.Padding), Y: float32(t.Padding + 136), Width: 120, Height: 28}, label) {
		act.ToggleConnect = true
	}

	// Shape selector, bottom center
	shapes := geometry.Shapes()
	const btnW, btnH, gap = 96, 30, 8
	rowW := int32(len(shapes))*(btnW+gap) - gap
	bx := (data.ScreenWidth - rowW) / 2
	by := data.ScreenHeight - btnH - 3*t.Padding - 28
	for i, s := range shapes {
		rect := rl.Rectangle{X: float32(bx + int32(i)*(btnW+gap)), Y: float32(by), Width: btnW, Height: btnH}
		text := s.String()
		if s == data.Shape {
			text = "[" + text + "]"
		}
		if gui.Button(rect, text) && s != data.Shape {
			act.Shape = s
			act.ShapeChanged = true
		}
	}

	// Color swatches under the shapes
	if data.Palette != nil {
		const sw = 24
		n := int32(data.Palette.Len())
		sx := (data.ScreenWidth - n*(sw+gap) + gap) / 2
		sy := by + btnH + t.Padding
		for i := 0; i < data.Palette.Len(); i++ {
			rect := rl.Rectangle{X: float32(sx + int32(i)*(sw+gap)), Y: float32(sy), Width: sw, Height: sw}
			if gui.Button(rect, "") && i != data.ColorIndex {
				act.ColorIndex = i
				act.ColorChanged = true
			}
			r, g, b, a := palette.RGBA8(data.Palette.At(i), 1)
			h.renderer.DrawSwatchFrame(rect, rl.Color{R: r, G: g, B: b, A: a}, i == data.ColorIndex)
		}
	}

	if data.Status == gesture.Offline {
		h.DrawInstructions(data.ScreenWidth, data.ScreenHeight)
	}

	rl.DrawText(fmt.Sprintf("%d FPS", data.FPS), data.ScreenWidth-70, t.Padding, t.FontSize, t.LabelColor)
	return act
}

// DrawInstructions explains the gestures while no session is live.
func (h *HUD) DrawInstructions(screenWidth, screenHeight int32) {
	lines := []string{
		"Spread your hands apart to expand the field",
		"Clench your fists to raise tension",
		"Keys: W/S expansion, A/D tension, 1-5 shape, C color, Space connect",
	}
	t := h.renderer.Theme
	y := screenHeight/2 + 140
	for _, line := range lines {
		w := rl.MeasureText(line, t.FontSize+2)
		rl.DrawText(line, (screenWidth-w)/2, y, t.FontSize+2, t.LabelColor)
		y += t.LineHeight
	}
}

// PerfPanel renders per-phase frame timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, phases []string) {
	x, y := p.x, p.y
	p.renderer.DrawPanel(x-6, y-6, 230, int32(len(phases))*14+46)

	rl.DrawText("Frame Timing", x, y, 14, rl.White)
	y += 18
	rl.DrawText(fmt.Sprintf("avg %s  p90 %s", stats.AvgTickDuration.Round(time.Microsecond), stats.P90TickDuration.Round(time.Microsecond)), x, y, 12, rl.Yellow)
	y += 16

	for _, name := range phases {
		pct := stats.PhasePct[name]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct), x, y, 12, color)
		y += 14
	}
}
