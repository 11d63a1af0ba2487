// Package geometry generates the point clouds that define each particle formation.
package geometry

import (
	"fmt"
	"strings"
)

// Shape identifies a target formation.
type Shape uint8

const (
	Heart Shape = iota
	Flower
	Saturn
	Buddha
	Fireworks
)

var shapeNames = [...]string{
	Heart:     "Heart",
	Flower:    "Flower",
	Saturn:    "Saturn",
	Buddha:    "Buddha",
	Fireworks: "Fireworks",
}

// Shapes returns every known shape in selector order.
func Shapes() []Shape {
	return []Shape{Heart, Flower, Saturn, Buddha, Fireworks}
}

// String returns the display name. Unknown values render as "Cloud".
func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "Cloud"
}

// Known reports whether s is one of the enumerated shapes.
func (s Shape) Known() bool {
	return int(s) < len(shapeNames)
}

// Next returns the following shape in selector order, wrapping around.
func (s Shape) Next() Shape {
	if !s.Known() {
		return Heart
	}
	return Shape((int(s) + 1) % len(shapeNames))
}

// ParseShape resolves a case-insensitive shape name.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}
