package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Particles.Count != 12000 {
		t.Errorf("particles.count = %d, want 12000", cfg.Particles.Count)
	}
	if cfg.Particles.Shape != "Heart" {
		t.Errorf("particles.shape = %q, want Heart", cfg.Particles.Shape)
	}
	if len(cfg.Particles.Palette) != 6 {
		t.Errorf("palette has %d entries, want 6", len(cfg.Particles.Palette))
	}
	if cfg.Animation.ExpansionGain != 2.5 {
		t.Errorf("animation.expansion_gain = %v, want 2.5", cfg.Animation.ExpansionGain)
	}
	if cfg.Derived.FrameInterval != 200*time.Millisecond {
		t.Errorf("derived frame interval = %v, want 200ms", cfg.Derived.FrameInterval)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := []byte("particles:\n  count: 500\ngesture:\n  mode: synthetic\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Particles.Count != 500 {
		t.Errorf("count = %d, want 500", cfg.Particles.Count)
	}
	if cfg.Gesture.Mode != "synthetic" {
		t.Errorf("mode = %q, want synthetic", cfg.Gesture.Mode)
	}
	// Fields absent from the overlay keep their defaults
	if cfg.Animation.BurstThreshold != 0.5 {
		t.Errorf("burst_threshold = %v, want default 0.5", cfg.Animation.BurstThreshold)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"negative count", "particles:\n  count: -1\n"},
		{"bad mode", "gesture:\n  mode: telepathy\n"},
		{"bad quality", "gesture:\n  jpeg_quality: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Particles.Count = 321

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot error: %v", err)
	}
	if loaded.Particles.Count != 321 {
		t.Errorf("count = %d, want 321", loaded.Particles.Count)
	}
}

func TestCfgAfterInit(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatal(err)
	}
	if Cfg().Screen.TargetFPS != 60 {
		t.Errorf("target fps = %d, want 60", Cfg().Screen.TargetFPS)
	}
}
