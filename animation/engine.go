package animation

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/zenparticles/control"
	"github.com/pthm-cable/zenparticles/geometry"
)

// Frame is the renderable state after a tick. Positions is a view of the
// engine's live buffer and is only valid until the next Tick.
type Frame struct {
	Positions []float32 // x0, y0, z0, x1, ...
	Count     int
	PointSize float32
	Color     colorful.Color
	Rotation  float32 // radians about the vertical axis
	Shape     geometry.Shape
	Control   control.State
	Clock     float64
	Tick      uint64
}

// formation is a finished original buffer waiting to be swapped in.
type formation struct {
	shape    geometry.Shape
	original []float32
	seq      uint64
}

// Engine owns a formation's original and live buffers and rewrites the live
// buffer on every tick. Tick, SetShape, SetFormation and Frame belong to the
// render goroutine; RequestShape may be called from anywhere.
type Engine struct {
	params Params
	seed   int64
	rng    *rand.Rand

	shape    geometry.Shape
	original []float32
	live     []float32
	count    int

	control   control.State
	clock     float64
	rotation  float64
	pointSize float32
	color     colorful.Color
	tick      uint64

	// Per-chunk noise sources keep results reproducible for a fixed seed
	// and worker count regardless of scheduling.
	chunkRNGs []*rand.Rand
	pool      *workerPool

	pending    atomic.Pointer[formation]
	requestSeq atomic.Uint64
	adoptedSeq uint64
	inflight   sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed fixes the engine's random source.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithWorkers overrides the worker pool size.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.params.Workers = n }
}

// WithColor sets the initial point color.
func WithColor(c colorful.Color) Option {
	return func(e *Engine) { e.color = c }
}

// New creates an engine with an empty formation.
func New(params Params, opts ...Option) *Engine {
	e := &Engine{
		params: params,
		seed:   1,
		color:  colorful.Color{R: 1, G: 1, B: 1},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = rand.New(rand.NewSource(e.seed))
	e.pool = newWorkerPool(e.params.Workers)
	e.chunkRNGs = make([]*rand.Rand, e.pool.numWorkers)
	for i := range e.chunkRNGs {
		e.chunkRNGs[i] = rand.New(rand.NewSource(e.seed + int64(i+1)*7919))
	}
	e.pointSize = e.params.PointSize(0)
	return e
}

// SetShape regenerates the formation synchronously. A count of zero yields
// an empty formation.
func (e *Engine) SetShape(shape geometry.Shape, count int) error {
	if count < 0 {
		return fmt.Errorf("set shape %v: %w", shape, geometry.ErrInvalidCount)
	}
	var original []float32
	if count > 0 {
		var err error
		original, err = geometry.Generate(shape, count, e.rng)
		if err != nil {
			return fmt.Errorf("set shape %v: %w", shape, err)
		}
	}
	e.install(shape, original, e.requestSeq.Add(1))
	return nil
}

// SetFormation installs caller-provided original positions (copied).
// len(original) must be a multiple of 3.
func (e *Engine) SetFormation(shape geometry.Shape, original []float32) error {
	if len(original)%3 != 0 {
		return fmt.Errorf("set formation: %d floats is not a whole number of points", len(original))
	}
	e.install(shape, append([]float32(nil), original...), e.requestSeq.Add(1))
	return nil
}

// RequestShape generates a new formation off the calling goroutine. The
// result replaces the current formation at the start of the next Tick once
// ready. Later requests supersede earlier ones.
func (e *Engine) RequestShape(shape geometry.Shape, count int) {
	seq := e.requestSeq.Add(1)
	seed := e.seed ^ int64(seq*0x9E3779B97F4A7C15>>1)

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()

		var original []float32
		if count > 0 {
			var err error
			original, err = geometry.Generate(shape, count, rand.New(rand.NewSource(seed)))
			if err != nil {
				slog.Warn("formation generation failed", "shape", shape.String(), "count", count, "error", err)
				return
			}
		}
		f := &formation{shape: shape, original: original, seq: seq}
		for {
			cur := e.pending.Load()
			if cur != nil && cur.seq > f.seq {
				return
			}
			if e.pending.CompareAndSwap(cur, f) {
				return
			}
		}
	}()
}

// WaitPending blocks until all requested formations have been generated.
// They are still only adopted by the next Tick.
func (e *Engine) WaitPending() {
	e.inflight.Wait()
}

// adoptPending swaps in the newest finished formation, if any.
func (e *Engine) adoptPending() {
	f := e.pending.Swap(nil)
	if f == nil || f.seq < e.adoptedSeq {
		return
	}
	e.install(f.shape, f.original, f.seq)
}

func (e *Engine) install(shape geometry.Shape, original []float32, seq uint64) {
	e.shape = shape
	e.original = original
	e.count = len(original) / 3
	e.live = make([]float32, len(original))
	copy(e.live, original)
	e.adoptedSeq = seq
	slog.Debug("formation installed", "shape", shape.String(), "count", e.count)
}

// Tick advances the clock by delta seconds and recomputes every live
// position from the original formation and ctl.
func (e *Engine) Tick(delta float64, ctl control.State) {
	e.adoptPending()

	if delta < 0 || math.IsNaN(delta) {
		delta = 0
	}
	ctl = ctl.Clamp()
	e.control = ctl
	e.clock += delta
	e.tick++

	p := &e.params
	e.rotation = math.Mod(e.rotation+delta*p.SpinRate(ctl.Tension), 2*math.Pi)
	e.pointSize = p.PointSize(ctl.Tension)

	if e.count == 0 {
		return
	}

	k := e.kernelFor(ctl)
	if e.count < p.ParallelThreshold || e.pool.numWorkers == 1 {
		e.animateChunk(0, e.count, e.chunkRNGs[0], &k)
		return
	}
	e.pool.run(e, e.count, &k)
}

// kernel holds the per-tick constants shared by all chunks.
type kernel struct {
	factor       float32
	jitter       float32 // per-axis noise span
	burst        bool
	burstSpan    float32
	clock        float64
	breatheFreq  float64
	breathePhase float64
	breatheAmp   float64
}

func (e *Engine) kernelFor(ctl control.State) kernel {
	p := &e.params
	t := float64(ctl.Tension)
	jitterAmount := t * p.JitterGain
	return kernel{
		factor:       p.ExpansionFactor(ctl.Expansion),
		jitter:       float32(jitterAmount * p.JitterScale),
		burst:        e.shape == geometry.Fireworks && t > p.BurstThreshold,
		burstSpan:    float32(1 + t),
		clock:        e.clock,
		breatheFreq:  p.BreatheFrequency,
		breathePhase: p.BreathePhase,
		breatheAmp:   p.BreatheAmplitude,
	}
}

// animateChunk rewrites live positions for particles [i0, i1).
func (e *Engine) animateChunk(i0, i1 int, rng *rand.Rand, k *kernel) {
	n := (i1 - i0) * 3
	src := blas32.Vector{N: n, Inc: 1, Data: e.original[i0*3 : i1*3]}
	dst := blas32.Vector{N: n, Inc: 1, Data: e.live[i0*3 : i1*3]}
	blas32.Copy(src, dst)
	if k.factor != 1 {
		blas32.Scal(k.factor, dst)
	}

	live := e.live
	for i := i0; i < i1; i++ {
		idx := i * 3
		breathe := float32(math.Sin(k.clock*k.breatheFreq+float64(i)*k.breathePhase) * k.breatheAmp)

		var jx, jy, jz float32
		if k.jitter != 0 {
			jx = (rng.Float32() - 0.5) * k.jitter
			jy = (rng.Float32() - 0.5) * k.jitter
			jz = (rng.Float32() - 0.5) * k.jitter
		}

		if k.burst {
			live[idx] += (rng.Float32() - 0.5) * k.burstSpan
			live[idx+1] += (rng.Float32() - 0.5) * k.burstSpan
			live[idx+2] += (rng.Float32() - 0.5) * k.burstSpan
		}

		live[idx] += jx
		live[idx+1] += jy + breathe
		live[idx+2] += jz
	}
}

// Frame returns the renderable state of the last tick.
func (e *Engine) Frame() Frame {
	return Frame{
		Positions: e.live,
		Count:     e.count,
		PointSize: e.pointSize,
		Color:     e.color,
		Rotation:  float32(e.rotation),
		Shape:     e.shape,
		Control:   e.control,
		Clock:     e.clock,
		Tick:      e.tick,
	}
}

// SetColor changes the point color; it is passed through to frames unchanged.
func (e *Engine) SetColor(c colorful.Color) { e.color = c }

// Shape returns the installed formation's shape.
func (e *Engine) Shape() geometry.Shape { return e.shape }

// Count returns the installed formation's particle count.
func (e *Engine) Count() int { return e.count }

// Clock returns elapsed animation time in seconds.
func (e *Engine) Clock() float64 { return e.clock }

// Params returns the engine's tuning.
func (e *Engine) Params() Params { return e.params }

// Close stops the worker pool.
func (e *Engine) Close() {
	e.inflight.Wait()
	e.pool.stop()
}
