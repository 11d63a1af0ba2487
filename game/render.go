package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/zenparticles/telemetry"
	"github.com/pthm-cable/zenparticles/ui"
)

// Draw renders the current frame and the HUD. HUD selections take effect
// on the next Update.
func (g *Game) Draw() {
	g.perfCollector.StartPhase(telemetry.PhaseRender)
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	c := g.frame.Color
	glow := 0.4 + 0.6*g.frame.Control.Tension
	g.background.Draw([3]float32{float32(c.R), float32(c.G), float32(c.B)}, glow)

	g.particles.Draw(g.frame, g.camera)

	actions := g.hud.Draw(ui.HUDData{
		Shape:        g.frame.Shape,
		Palette:      g.palette,
		ColorIndex:   g.colorIndex,
		Status:       g.link.Status(),
		Mode:         g.mode,
		Control:      g.frame.Control,
		Count:        g.frame.Count,
		Updates:      g.link.Updates(),
		FPS:          rl.GetFPS(),
		ScreenWidth:  g.screenW,
		ScreenHeight: g.screenH,
	})
	g.applyActions(actions)

	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats(), telemetry.Phases())
	}

	rl.EndDrawing()
	g.perfCollector.EndTick()
	g.perfCollector.RecordFrame()
}

// applyActions applies what the user clicked on the HUD.
func (g *Game) applyActions(a ui.HUDActions) {
	if a.ShapeChanged {
		g.selectShape(a.Shape)
	}
	if a.ColorChanged {
		g.setColor(a.ColorIndex)
	}
	if a.ToggleConnect {
		g.toggleConnect()
	}
}
