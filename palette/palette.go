// Package palette resolves the selectable particle colors.
package palette

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered set of selectable colors.
type Palette struct {
	colors []colorful.Color
	hexes  []string
}

// Parse builds a palette from "#rrggbb" strings.
func Parse(hexes []string) (*Palette, error) {
	p := &Palette{}
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette color %q: %w", h, err)
		}
		p.colors = append(p.colors, c)
		p.hexes = append(p.hexes, c.Hex())
	}
	if len(p.colors) == 0 {
		return nil, fmt.Errorf("palette is empty")
	}
	return p, nil
}

// Len returns the number of colors.
func (p *Palette) Len() int { return len(p.colors) }

// At returns the i-th color, wrapping out-of-range indices.
func (p *Palette) At(i int) colorful.Color {
	n := len(p.colors)
	return p.colors[((i%n)+n)%n]
}

// Hex returns the normalized hex string of the i-th color.
func (p *Palette) Hex(i int) string {
	n := len(p.hexes)
	return p.hexes[((i%n)+n)%n]
}

// Index returns the position of the color matching hex, or -1.
func (p *Palette) Index(hex string) int {
	c, err := colorful.Hex(hex)
	if err != nil {
		return -1
	}
	for i, h := range p.hexes {
		if h == c.Hex() {
			return i
		}
	}
	return -1
}

// Gauge returns the gauge fill color for a reading in [0, 1], blended in
// Lab space from cool to hot.
func Gauge(cool, hot colorful.Color, v float32) colorful.Color {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return cool.BlendLab(hot, float64(v)).Clamped()
}

// RGBA8 converts c to 8-bit channels with the given alpha in [0, 1].
func RGBA8(c colorful.Color, alpha float64) (r, g, b, a uint8) {
	r, g, b = c.Clamped().RGB255()
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return r, g, b, uint8(alpha*255 + 0.5)
}
