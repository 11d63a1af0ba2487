package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// backgroundFS darkens toward the edges and tints the center with the
// particle color.
const backgroundFS = `#version 330
in vec2 fragTexCoord;
out vec4 finalColor;

uniform vec2 resolution;
uniform vec3 glowColor;
uniform float glow;

void main() {
    vec2 uv = gl_FragCoord.xy / resolution - 0.5;
    uv.x *= resolution.x / resolution.y;
    float d = length(uv);
    float vignette = smoothstep(0.9, 0.1, d);
    vec3 base = vec3(0.0);
    finalColor = vec4(base + glowColor * glow * vignette * 0.12, 1.0);
}
`

// BackgroundRenderer renders a dark vignette with a faint glow in the
// particle color. The glow follows tension.
type BackgroundRenderer struct {
	shader        rl.Shader
	resolutionLoc int32
	glowColorLoc  int32
	glowLoc       int32

	screenW, screenH float32
	initialized      bool
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(screenW, screenH int32) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: float32(screenW),
		screenH: float32(screenH),
	}
}

// Init initializes the renderer (must be called after raylib window is created).
func (b *BackgroundRenderer) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory("", backgroundFS)
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.glowColorLoc = rl.GetShaderLocation(b.shader, "glowColor")
	b.glowLoc = rl.GetShaderLocation(b.shader, "glow")

	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{b.screenW, b.screenH}, rl.ShaderUniformVec2)

	b.initialized = true
}

// Draw renders the background. color is linear RGB in [0, 1].
func (b *BackgroundRenderer) Draw(color [3]float32, glow float32) {
	if !b.initialized {
		b.Init()
	}

	rl.BeginShaderMode(b.shader)
	rl.SetShaderValue(b.shader, b.glowColorLoc, color[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(b.shader, b.glowLoc, []float32{glow}, rl.ShaderUniformFloat)
	rl.DrawRectangle(0, 0, int32(b.screenW), int32(b.screenH), rl.White)
	rl.EndShaderMode()
}

// Resize updates the viewport size.
func (b *BackgroundRenderer) Resize(screenW, screenH int32) {
	b.screenW, b.screenH = float32(screenW), float32(screenH)
	if b.initialized {
		rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{b.screenW, b.screenH}, rl.ShaderUniformVec2)
	}
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
