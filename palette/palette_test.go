package palette

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestParse(t *testing.T) {
	p, err := Parse([]string{"#ffffff", "#FF0055", "#00ccff"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("Len = %d, want 3", p.Len())
	}
	if got := p.Hex(1); got != "#ff0055" {
		t.Errorf("Hex(1) = %q, want #ff0055", got)
	}
	if got := p.Index("#FF0055"); got != 1 {
		t.Errorf("Index(#FF0055) = %d, want 1", got)
	}
	if got := p.Index("#123456"); got != -1 {
		t.Errorf("Index(unknown) = %d, want -1", got)
	}
	if got := p.Hex(-1); got != "#00ccff" {
		t.Errorf("Hex(-1) = %q, want wrap to last", got)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		hexes []string
	}{
		{"empty", nil},
		{"not hex", []string{"#ffffff", "red"}},
		{"short", []string{"#fff0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.hexes); err == nil {
				t.Errorf("Parse(%v) succeeded, want error", tt.hexes)
			}
		})
	}
}

func TestGaugeEndpoints(t *testing.T) {
	cool, _ := colorful.Hex("#00ccff")
	hot, _ := colorful.Hex("#ff0055")

	if got := Gauge(cool, hot, 0).Hex(); got != cool.Hex() {
		t.Errorf("Gauge(0) = %s, want %s", got, cool.Hex())
	}
	if got := Gauge(cool, hot, 1).Hex(); got != hot.Hex() {
		t.Errorf("Gauge(1) = %s, want %s", got, hot.Hex())
	}
	if got := Gauge(cool, hot, 7).Hex(); got != hot.Hex() {
		t.Errorf("Gauge(7) = %s, want clamp to %s", got, hot.Hex())
	}
}

func TestRGBA8(t *testing.T) {
	c, _ := colorful.Hex("#ff0055")
	r, g, b, a := RGBA8(c, 0.8)
	if r != 0xff || g != 0 || b != 0x55 || a != 204 {
		t.Errorf("RGBA8 = %d,%d,%d,%d, want 255,0,85,204", r, g, b, a)
	}
}
