// Package config provides configuration loading and access for the particle viewer.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all application configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Particles ParticlesConfig `yaml:"particles"`
	Animation AnimationConfig `yaml:"animation"`
	Gesture   GestureConfig   `yaml:"gesture"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ParticlesConfig holds formation settings.
type ParticlesConfig struct {
	Count   int      `yaml:"count"`   // Particles per formation
	Shape   string   `yaml:"shape"`   // Initial formation name
	Color   string   `yaml:"color"`   // Initial color (hex)
	Palette []string `yaml:"palette"` // Selectable colors (hex)
	Opacity float64  `yaml:"opacity"` // Point alpha in [0, 1]
}

// AnimationConfig holds the per-tick deformation constants.
type AnimationConfig struct {
	ExpansionGain     float64 `yaml:"expansion_gain"`      // factor = 1 + expansion * this
	BreatheFrequency  float64 `yaml:"breathe_frequency"`   // clock multiplier inside sin
	BreathePhase      float64 `yaml:"breathe_phase"`       // per-particle phase offset
	BreatheAmplitude  float64 `yaml:"breathe_amplitude"`   // vertical amplitude
	JitterGain        float64 `yaml:"jitter_gain"`         // jitterAmount = tension * this
	JitterScale       float64 `yaml:"jitter_scale"`        // per-axis noise = (r-0.5) * jitterAmount * this
	SpinBase          float64 `yaml:"spin_base"`           // rad/s before scale at zero tension
	SpinTension       float64 `yaml:"spin_tension"`        // extra rad/s per unit tension
	SpinScale         float64 `yaml:"spin_scale"`          // overall spin multiplier
	BurstThreshold    float64 `yaml:"burst_threshold"`     // fireworks burst when tension > this
	PointSizeBase     float64 `yaml:"point_size_base"`     // point size at zero tension
	PointSizeTension  float64 `yaml:"point_size_tension"`  // extra point size per unit tension
	ParallelThreshold int     `yaml:"parallel_threshold"`  // particle count below which ticks run single-threaded
	Workers           int     `yaml:"workers"`             // 0 = GOMAXPROCS
}

// GestureConfig holds the gesture signal source settings.
type GestureConfig struct {
	Mode           string  `yaml:"mode"`            // keyboard, synthetic, http, replay
	Endpoint       string  `yaml:"endpoint"`        // Inference service base URL
	Model          string  `yaml:"model"`           // Model name forwarded to the service
	APIKeyEnv      string  `yaml:"api_key_env"`     // Environment variable holding the API key
	FrameInterval  float64 `yaml:"frame_interval"`  // Seconds between frames sent to the service
	FrameWidth     int     `yaml:"frame_width"`     // Encoded frame width
	FrameHeight    int     `yaml:"frame_height"`    // Encoded frame height
	JPEGQuality    int     `yaml:"jpeg_quality"`    // 1-100
	QueueSize      int     `yaml:"queue_size"`      // Pending frames before new ones are dropped
	RequestTimeout float64 `yaml:"request_timeout"` // Seconds per inference request
	FramesDir      string  `yaml:"frames_dir"`      // Directory of JPEG frames to stream
	RecordPath     string  `yaml:"record_path"`     // Write received updates to this CSV (empty = off)
	ReplayPath     string  `yaml:"replay_path"`     // Trace to replay in replay mode
	KeyboardStep   float64 `yaml:"keyboard_step"`   // Control change per second while a key is held

	Synthetic SyntheticConfig `yaml:"synthetic"`
}

// SyntheticConfig holds the oscillator periods for the synthetic source.
type SyntheticConfig struct {
	ExpansionPeriod float64 `yaml:"expansion_period"` // Seconds per expansion cycle
	TensionPeriod   float64 `yaml:"tension_period"`   // Seconds per tension cycle
	Rate            float64 `yaml:"rate"`             // Updates per second
}

// CameraConfig holds the orbit camera settings.
type CameraConfig struct {
	Distance    float64 `yaml:"distance"`
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	FOV         float64 `yaml:"fov"`
	Damping     float64 `yaml:"damping"` // Fraction of pending orbit applied and removed per update (0 = immediate)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	SampleStride        int     `yaml:"sample_stride"` // Every Nth particle is sampled for window stats
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	FrameInterval  time.Duration // Gesture.FrameInterval as a duration
	RequestTimeout time.Duration // Gesture.RequestTimeout as a duration
	ScreenW32      float32       // Screen.Width as float32
	ScreenH32      float32       // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the rest of the program cannot recover from.
func (c *Config) validate() error {
	if c.Particles.Count < 0 {
		return fmt.Errorf("particles.count must be >= 0, got %d", c.Particles.Count)
	}
	if c.Gesture.JPEGQuality < 1 || c.Gesture.JPEGQuality > 100 {
		return fmt.Errorf("gesture.jpeg_quality must be in [1, 100], got %d", c.Gesture.JPEGQuality)
	}
	switch c.Gesture.Mode {
	case "keyboard", "synthetic", "http", "replay":
	default:
		return fmt.Errorf("gesture.mode %q is not one of keyboard, synthetic, http, replay", c.Gesture.Mode)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.FrameInterval = time.Duration(c.Gesture.FrameInterval * float64(time.Second))
	c.Derived.RequestTimeout = time.Duration(c.Gesture.RequestTimeout * float64(time.Second))
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Gesture.QueueSize < 1 {
		c.Gesture.QueueSize = 1
	}
	if c.Telemetry.SampleStride < 1 {
		c.Telemetry.SampleStride = 1
	}
	if len(c.Particles.Palette) == 0 {
		c.Particles.Palette = []string{"#ffffff", "#ff0055", "#00ccff", "#ccff00", "#aa00ff", "#ffaa00"}
	}
	if c.Particles.Color == "" {
		c.Particles.Color = c.Particles.Palette[0]
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
