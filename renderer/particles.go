package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/zenparticles/animation"
	"github.com/pthm-cable/zenparticles/camera"
	"github.com/pthm-cable/zenparticles/palette"
)

// spriteScale maps the frame's point size to billboard size; the sprite's
// soft falloff leaves the visible core about half the quad.
const spriteScale = 2

// ParticleRenderer draws a frame as additive soft-dot billboards.
type ParticleRenderer struct {
	opacity     float64
	sprite      rl.Texture2D
	initialized bool
}

// NewParticleRenderer creates a renderer drawing points at the given alpha.
func NewParticleRenderer(opacity float64) *ParticleRenderer {
	return &ParticleRenderer{opacity: opacity}
}

// Init creates the point sprite (must be called after raylib window is created).
func (r *ParticleRenderer) Init() {
	if r.initialized {
		return
	}
	img := rl.GenImageGradientRadial(32, 32, 0.2, rl.White, rl.Blank)
	r.sprite = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(r.sprite, rl.FilterBilinear)
	r.initialized = true
}

// Camera3D converts the orbit camera to a raylib camera.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	x, y, z := cam.Position()
	return rl.Camera3D{
		Position:   rl.NewVector3(x, y, z),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       cam.FOV,
		Projection: rl.CameraPerspective,
	}
}

// Draw renders every particle of f, rotated by the frame's spin. The frame's
// positions are read only during this call.
func (r *ParticleRenderer) Draw(f animation.Frame, cam *camera.Camera) {
	if !r.initialized {
		r.Init()
	}
	if f.Count == 0 {
		return
	}

	cr, cg, cb, ca := palette.RGBA8(f.Color, r.opacity)
	tint := rl.Color{R: cr, G: cg, B: cb, A: ca}
	sin, cos := math.Sincos(float64(f.Rotation))
	s, c := float32(sin), float32(cos)
	size := f.PointSize * spriteScale

	rc := Camera3D(cam)
	rl.BeginMode3D(rc)
	rl.BeginBlendMode(rl.BlendAdditive)

	pos := f.Positions
	for i := 0; i < f.Count; i++ {
		idx := i * 3
		x, y, z := pos[idx], pos[idx+1], pos[idx+2]
		p := rl.Vector3{X: x*c + z*s, Y: y, Z: z*c - x*s}
		rl.DrawBillboard(rc, r.sprite, p, size, tint)
	}

	rl.EndBlendMode()
	rl.EndMode3D()
}

// Unload frees resources.
func (r *ParticleRenderer) Unload() {
	if r.initialized {
		rl.UnloadTexture(r.sprite)
		r.initialized = false
	}
}
