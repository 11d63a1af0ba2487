// Snapshot tool - renders one formation to a PNG file for inspection.
//
// Usage: go run ./cmd/snapshot -shape Saturn -tension 0.8 -out saturn.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/zenparticles/animation"
	"github.com/pthm-cable/zenparticles/camera"
	"github.com/pthm-cable/zenparticles/config"
	"github.com/pthm-cable/zenparticles/control"
	"github.com/pthm-cable/zenparticles/geometry"
	"github.com/pthm-cable/zenparticles/renderer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	shapeName := flag.String("shape", "Heart", "Formation to render")
	count := flag.Int("count", 0, "Particle count (0 = use config)")
	expansion := flag.Float64("expansion", 0, "Expansion in [0, 1]")
	tension := flag.Float64("tension", 0, "Tension in [0, 1]")
	ticks := flag.Int("ticks", 60, "Ticks to animate before capture")
	seed := flag.Int64("seed", 1, "RNG seed")
	hex := flag.String("color", "", "Point color (empty = use config)")
	outPath := flag.String("out", "snapshot.png", "Output PNG path")
	width := flag.Int("width", 1024, "Render width")
	height := flag.Int("height", 768, "Render height")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	shape, err := geometry.ParseShape(*shapeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *count <= 0 {
		*count = cfg.Particles.Count
	}
	if *hex == "" {
		*hex = cfg.Particles.Color
	}
	color, err := colorful.Hex(*hex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad color %q: %v\n", *hex, err)
		os.Exit(1)
	}

	// Animate on the CPU before any window exists
	engine := animation.New(animation.ParamsFromConfig(&cfg.Animation), animation.WithSeed(*seed), animation.WithColor(color))
	defer engine.Close()
	if err := engine.SetShape(shape, *count); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build formation: %v\n", err)
		os.Exit(1)
	}
	ctl := control.FromFloat64(*expansion, *tension)
	for i := 0; i < *ticks; i++ {
		engine.Tick(1.0/60.0, ctl)
	}
	frame := engine.Frame()

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Snapshot")
	defer rl.CloseWindow()

	cam := camera.New(
		float32(cfg.Camera.Distance),
		float32(cfg.Camera.MinDistance),
		float32(cfg.Camera.MaxDistance),
		float32(cfg.Camera.FOV),
		float32(cfg.Camera.Damping),
	)
	particles := renderer.NewParticleRenderer(cfg.Particles.Opacity)
	particles.Init()
	defer particles.Unload()
	background := renderer.NewBackgroundRenderer(int32(*width), int32(*height))
	background.Init()
	defer background.Unload()

	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	background.Draw([3]float32{float32(color.R), float32(color.G), float32(color.B)}, 0.4+0.6*frame.Control.Tension)
	particles.Draw(frame, cam)
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("%s rendered to: %s (%d particles, %dx%d)\n", shape, *outPath, frame.Count, *width, *height)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
