package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/zenparticles/geometry"
)

// Orbit sensitivity in radians per pixel of mouse drag.
const orbitSensitivity = 0.005

// shapeKeys select formations in selector order.
var shapeKeys = []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput(frameTime float32) {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.toggleConnect()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.setColor(g.colorIndex + 1)
	}

	shapes := geometry.Shapes()
	for i, key := range shapeKeys {
		if i < len(shapes) && rl.IsKeyPressed(key) {
			g.selectShape(shapes[i])
		}
	}

	g.handleManualInput(frameTime)
	g.handleCameraInput()
}

// handleManualInput moves the keyboard reading while keys are held.
func (g *Game) handleManualInput(frameTime float32) {
	if g.manual == nil {
		return
	}
	step := g.cfg.Gesture.KeyboardStep * float64(frameTime)

	var dE, dT float64
	if rl.IsKeyDown(rl.KeyW) {
		dE += step
	}
	if rl.IsKeyDown(rl.KeyS) {
		dE -= step
	}
	if rl.IsKeyDown(rl.KeyD) {
		dT += step
	}
	if rl.IsKeyDown(rl.KeyA) {
		dT -= step
	}
	if dE != 0 || dT != 0 {
		g.manual.Adjust(dE, dT)
	}
}

// handleCameraInput orbits with the right mouse button and zooms with the wheel.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Rotate(-d.X*orbitSensitivity, d.Y*orbitSensitivity)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 - wheel*0.1)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.camera.Reset()
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if w == g.screenW && h == g.screenH {
		return
	}
	g.screenW, g.screenH = w, h
	g.background.Resize(w, h)
	g.perfPanel.SetPosition(w-240, 40)
}
