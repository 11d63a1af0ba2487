package game

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/zenparticles/control"
	"github.com/pthm-cable/zenparticles/gesture"
)

// setupGesture builds the source for the configured mode and binds it to
// the mailbox.
func (g *Game) setupGesture() error {
	cfg := g.cfg.Gesture

	src, err := g.newSource()
	if err != nil {
		return fmt.Errorf("gesture mode %s: %w", g.mode, err)
	}

	g.recorder, err = gesture.NewRecorder(cfg.RecordPath)
	if err != nil {
		return err
	}
	g.link = gesture.NewLink(src, g.mailbox, gesture.WithRecorder(g.recorder))

	if g.mode == "http" && cfg.FramesDir != "" {
		grabber, err := gesture.NewDirectoryGrabber(cfg.FramesDir)
		if err != nil {
			return err
		}
		opts := gesture.EncodeOptions{Width: cfg.FrameWidth, Height: cfg.FrameHeight, Quality: cfg.JPEGQuality}
		g.pump = gesture.NewFramePump(grabber, g.link.SendFrame, g.cfg.Derived.FrameInterval, opts)
		go g.pump.Run(g.ctx)
		slog.Info("streaming frames", "dir", cfg.FramesDir, "frames", grabber.Len(), "interval", g.cfg.Derived.FrameInterval)
	}
	return nil
}

func (g *Game) newSource() (gesture.Source, error) {
	cfg := g.cfg.Gesture

	switch g.mode {
	case "keyboard":
		g.manual = gesture.NewManualSource(control.State{})
		return g.manual, nil
	case "synthetic":
		return gesture.NewSyntheticSource(cfg.Synthetic.ExpansionPeriod, cfg.Synthetic.TensionPeriod, cfg.Synthetic.Rate), nil
	case "http":
		var key string
		if cfg.APIKeyEnv != "" {
			key = os.Getenv(cfg.APIKeyEnv)
		}
		return gesture.NewHTTPSource(gesture.HTTPConfig{
			Endpoint:  cfg.Endpoint,
			Model:     cfg.Model,
			APIKey:    key,
			Timeout:   g.cfg.Derived.RequestTimeout,
			QueueSize: cfg.QueueSize,
		}), nil
	case "replay":
		if cfg.ReplayPath == "" {
			return nil, fmt.Errorf("gesture.replay_path is empty")
		}
		samples, err := gesture.LoadTrace(cfg.ReplayPath)
		if err != nil {
			return nil, err
		}
		return gesture.NewReplaySource(samples, false), nil
	default:
		return nil, fmt.Errorf("unknown mode")
	}
}
