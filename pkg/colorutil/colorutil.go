// Package colorutil provides shared color utilities for the puzzle matcher.
package colorutil

import (
	"image/color"
	"math/rand"
)

// Common overlay colors used by the debug renderers.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// Color holds up to three 8-bit channels (RGB order). Gray images use channel 0 only.
type Color [3]uint8

// RGBA converts to a color.RGBA; a gray value is replicated when channels == 1.
func (c Color) RGBA(channels int) color.RGBA {
	if channels == 1 {
		return color.RGBA{R: c[0], G: c[0], B: c[0], A: 255}
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
}

// AbsDiff returns the sum of absolute per-channel differences over the first channels.
func AbsDiff(a, b Color, channels int) float64 {
	d := 0
	for c := 0; c < channels; c++ {
		v := int(a[c]) - int(b[c])
		if v < 0 {
			v = -v
		}
		d += v
	}
	return float64(d)
}

// Palette hands out reproducible random colors for debug visualizations.
type Palette struct {
	rnd *rand.Rand
}

// NewPalette creates a palette seeded with seed.
func NewPalette(seed int64) *Palette {
	return &Palette{rnd: rand.New(rand.NewSource(seed))}
}

// Next returns the next random opaque color.
func (p *Palette) Next() color.RGBA {
	return color.RGBA{
		R: uint8(p.rnd.Intn(256)),
		G: uint8(p.rnd.Intn(256)),
		B: uint8(p.rnd.Intn(256)),
		A: 255,
	}
}

// Jitter returns a random offset in [-r, r].
func (p *Palette) Jitter(r int) int {
	return p.rnd.Intn(2*r+1) - r
}
