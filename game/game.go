// Package game wires the gesture link, animation engine, renderer and
// telemetry into the viewer's frame loop.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pthm-cable/zenparticles/animation"
	"github.com/pthm-cable/zenparticles/camera"
	"github.com/pthm-cable/zenparticles/config"
	"github.com/pthm-cable/zenparticles/control"
	"github.com/pthm-cable/zenparticles/geometry"
	"github.com/pthm-cable/zenparticles/gesture"
	"github.com/pthm-cable/zenparticles/palette"
	"github.com/pthm-cable/zenparticles/renderer"
	"github.com/pthm-cable/zenparticles/telemetry"
	"github.com/pthm-cable/zenparticles/ui"
)

// DT is the fixed tick length used in headless runs.
const DT = 1.0 / 60.0

// maxFrameDelta caps the tick length after a stalled frame.
const maxFrameDelta = 0.1

// Options configures a game instance. Zero values fall back to config.
type Options struct {
	Seed         int64
	Session      string  // run id; generated when empty
	OutputDir    string  // CSV telemetry and config snapshot (empty = off)
	Headless     bool    // no window; ticks at DT and connects immediately
	LogStats     bool    // log window stats via slog
	Shape        string  // initial formation override
	Mode         string  // gesture mode override
	CycleSeconds float64 // advance to the next shape every N clock seconds (0 = off)
}

// Game holds the viewer state.
type Game struct {
	cfg  *config.Config
	opts Options

	session string
	ctx     context.Context
	cancel  context.CancelFunc

	// Control path
	mailbox  *control.Mailbox
	link     *gesture.Link
	mode     string
	manual   *gesture.ManualSource // set in keyboard mode
	recorder *gesture.Recorder
	pump     *gesture.FramePump

	// Animation
	engine     *animation.Engine
	frame      animation.Frame
	palette    *palette.Palette
	colorIndex int

	// Shape selected by input, applied on the next update
	pendingShape geometry.Shape
	hasPending   bool
	nextCycle    float64

	// Rendering (nil when headless)
	camera     *camera.Camera
	particles  *renderer.ParticleRenderer
	background *renderer.BackgroundRenderer
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	showPerf   bool

	screenW, screenH int32

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	statsCallback    func(telemetry.WindowStats)
}

// NewGameWithOptions creates a game. config.Init must have been called.
// Graphical games must be created after the raylib window is open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	g := &Game{
		cfg:     cfg,
		opts:    opts,
		session: opts.Session,
		mode:    cfg.Gesture.Mode,
		screenW: int32(cfg.Screen.Width),
		screenH: int32(cfg.Screen.Height),
	}
	if g.session == "" {
		g.session = uuid.NewString()
	}
	if opts.Mode != "" {
		g.mode = opts.Mode
	}
	g.ctx, g.cancel = context.WithCancel(context.Background())

	shapeName := cfg.Particles.Shape
	if opts.Shape != "" {
		shapeName = opts.Shape
	}
	shape, err := geometry.ParseShape(shapeName)
	if err != nil {
		g.cancel()
		return nil, err
	}

	g.palette, err = palette.Parse(cfg.Particles.Palette)
	if err != nil {
		g.cancel()
		return nil, fmt.Errorf("particles.palette: %w", err)
	}
	g.colorIndex = g.palette.Index(cfg.Particles.Color)
	if g.colorIndex < 0 {
		slog.Warn("initial color not in palette", "color", cfg.Particles.Color)
		g.colorIndex = 0
	}

	g.engine = animation.New(animation.ParamsFromConfig(&cfg.Animation),
		animation.WithSeed(opts.Seed),
		animation.WithColor(g.palette.At(g.colorIndex)),
	)
	if err := g.engine.SetShape(shape, cfg.Particles.Count); err != nil {
		g.Unload()
		return nil, fmt.Errorf("initial formation: %w", err)
	}
	g.frame = g.engine.Frame()
	g.nextCycle = opts.CycleSeconds

	g.mailbox = control.NewMailbox(control.State{})
	if err := g.setupGesture(); err != nil {
		g.Unload()
		return nil, err
	}

	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Telemetry.SampleStride)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)
	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir, g.session)
	if err != nil {
		g.Unload()
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	g.camera = camera.New(
		float32(cfg.Camera.Distance),
		float32(cfg.Camera.MinDistance),
		float32(cfg.Camera.MaxDistance),
		float32(cfg.Camera.FOV),
		float32(cfg.Camera.Damping),
	)

	if !opts.Headless {
		g.particles = renderer.NewParticleRenderer(cfg.Particles.Opacity)
		g.particles.Init()
		g.background = renderer.NewBackgroundRenderer(g.screenW, g.screenH)
		g.background.Init()
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(g.screenW-240, 40)
	} else {
		g.connect()
	}

	slog.Info("game started",
		"session", g.session,
		"seed", opts.Seed,
		"mode", g.mode,
		"shape", shape.String(),
		"count", cfg.Particles.Count,
		"headless", opts.Headless,
	)
	return g, nil
}

// Update handles input and advances one frame of real time.
func (g *Game) Update(frameTime float32) {
	g.perfCollector.StartTick()
	g.perfCollector.StartPhase(telemetry.PhaseControl)
	g.handleInput(frameTime)
	g.camera.Update()

	delta := float64(frameTime)
	if delta > maxFrameDelta {
		delta = maxFrameDelta
	}
	g.advance(delta)
}

// UpdateHeadless advances one fixed tick without touching raylib.
func (g *Game) UpdateHeadless() {
	g.perfCollector.StartTick()
	g.perfCollector.StartPhase(telemetry.PhaseControl)
	g.advance(DT)
	g.perfCollector.EndTick()
}

// advance polls control, applies selections and ticks the engine.
func (g *Game) advance(delta float64) {
	ctl, fresh := g.mailbox.Poll()
	if g.opts.CycleSeconds > 0 && g.engine.Clock() >= g.nextCycle {
		g.selectShape(g.engine.Shape().Next())
		g.nextCycle += g.opts.CycleSeconds
	}

	g.perfCollector.StartPhase(telemetry.PhaseFormation)
	g.applyPending()

	g.perfCollector.StartPhase(telemetry.PhaseAnimate)
	g.engine.Tick(delta, ctl)
	g.frame = g.engine.Frame()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordTick(g.frame, fresh)
	g.flushTelemetry()
}

// selectShape queues a formation change for the next update.
func (g *Game) selectShape(s geometry.Shape) {
	g.pendingShape = s
	g.hasPending = true
}

func (g *Game) applyPending() {
	if !g.hasPending {
		return
	}
	g.hasPending = false
	g.engine.RequestShape(g.pendingShape, g.cfg.Particles.Count)
	slog.Info("formation requested", "shape", g.pendingShape.String(), "count", g.cfg.Particles.Count)
}

// setColor selects palette entry i, wrapping.
func (g *Game) setColor(i int) {
	n := g.palette.Len()
	g.colorIndex = ((i % n) + n) % n
	g.engine.SetColor(g.palette.At(g.colorIndex))
}

// connect opens a gesture session, logging failures.
func (g *Game) connect() {
	if err := g.link.Connect(g.ctx); err != nil {
		slog.Warn("gesture connect failed", "mode", g.mode, "error", err)
	}
}

// toggleConnect flips the session without blocking the frame loop.
func (g *Game) toggleConnect() {
	go func() {
		if err := g.link.Toggle(g.ctx); err != nil {
			slog.Warn("gesture connect failed", "mode", g.mode, "error", err)
		}
	}()
}

// SetStatsCallback registers a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Tick returns the number of animated frames.
func (g *Game) Tick() uint64 { return g.frame.Tick }

// Frame returns the latest animated frame.
func (g *Game) Frame() animation.Frame { return g.frame }

// Session returns the run id.
func (g *Game) Session() string { return g.session }

// Link returns the gesture link.
func (g *Game) Link() *gesture.Link { return g.link }

// Unload stops background work and releases all resources.
func (g *Game) Unload() {
	g.cancel()
	if g.link != nil {
		g.link.Disconnect()
	}
	if g.engine != nil {
		g.engine.Close()
	}
	if err := g.recorder.Close(); err != nil {
		slog.Error("failed to close gesture trace", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if g.particles != nil {
		g.particles.Unload()
	}
	if g.background != nil {
		g.background.Unload()
	}
}
