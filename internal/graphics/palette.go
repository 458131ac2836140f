// Package graphics implements the rendering engine: a pixel frame-buffer,
// a sharded inbox draining completed tiles, a raylib window and input
// loop, and the three palettes used to colorize iteration counts.
package graphics

import (
	"github.com/lucasb-eyer/go-colorful"
)

// PaletteKind names one of the three cyclable palettes.
type PaletteKind int

const (
	Classic PaletteKind = iota
	Inverted
	Grayscale
	paletteCount
)

// Next cycles to the following palette, wrapping Grayscale back to
// Classic.
func (k PaletteKind) Next() PaletteKind {
	return (k + 1) % paletteCount
}

// Colorize maps a normalized iteration fraction t in [0,1] to an RGB
// triple for the given palette. NaN is treated as t=0 (a kernel's escape
// hatch against unexpected non-convergent results).
func Colorize(kind PaletteKind, t float64) (uint8, uint8, uint8) {
	if t != t { // NaN check without importing math for one comparison
		t = 0
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	switch kind {
	case Inverted:
		r, g, b := classicRGB(t)
		return 255 - r, 255 - g, 255 - b
	case Grayscale:
		g := uint8(t * 255)
		return g, g, g
	default:
		return classicRGB(t)
	}
}

// classicRGB implements the Classic palette: a cubic Bernstein-style
// polynomial mapping of t to RGB, expressed through go-colorful so the
// result is clamped to a valid sRGB triple the same way the teacher's
// HSV-based coloring clamps its output.
func classicRGB(t float64) (uint8, uint8, uint8) {
	r := bernstein3(t, 0, 0.2, 0.8, 1.0)
	g := bernstein3(t, 0, 0.6, 0.4, 0.9)
	b := bernstein3(t, 0.2, 0.9, 0.9, 0.1)
	c := colorful.Color{R: r, G: g, B: b}.Clamped()
	return c.RGB255()
}

// bernstein3 evaluates the cubic Bernstein polynomial with the four given
// control points at parameter t.
func bernstein3(t, p0, p1, p2, p3 float64) float64 {
	u := 1 - t
	return u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
}
