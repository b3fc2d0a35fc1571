// Package raster provides the 8-bit pixel buffer shared by the segmentation
// and matching stages.
package raster

import (
	"fmt"
	"image"
	"image/color"

	"puzzle-matcher/pkg/colorutil"
	"puzzle-matcher/pkg/geometry"
)

// Image is a row-major 8-bit image with 1 (gray/mask) or 3 (RGB) interleaved channels.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// New allocates a zero-filled image. It panics on a channel count other than 1 or 3
// or on negative dimensions, like the standard image constructors do on bad rectangles.
func New(width, height, channels int) *Image {
	if channels != 1 && channels != 3 {
		panic(fmt.Sprintf("raster: unsupported channel count %d", channels))
	}
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("raster: negative size %dx%d", width, height))
	}
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// NewMask allocates an all-background single-channel mask.
func NewMask(width, height int) *Image {
	return New(width, height, 1)
}

func (m *Image) offset(y, x int) int {
	return (y*m.Width + x) * m.Channels
}

// At returns the first channel of the pixel at row y, column x.
func (m *Image) At(y, x int) uint8 {
	return m.Pix[m.offset(y, x)]
}

// Set writes v into the first channel of the pixel at row y, column x.
func (m *Image) Set(y, x int, v uint8) {
	m.Pix[m.offset(y, x)] = v
}

// AtC returns channel c of the pixel at row y, column x.
func (m *Image) AtC(y, x, c int) uint8 {
	return m.Pix[m.offset(y, x)+c]
}

// SetC writes channel c of the pixel at row y, column x.
func (m *Image) SetC(y, x, c int, v uint8) {
	m.Pix[m.offset(y, x)+c] = v
}

// Color returns all channels of a pixel. Unused channels are zero.
func (m *Image) Color(y, x int) colorutil.Color {
	var col colorutil.Color
	copy(col[:], m.Pix[m.offset(y, x):m.offset(y, x)+m.Channels])
	return col
}

// SetColor writes the first Channels components of col.
func (m *Image) SetColor(y, x int, col colorutil.Color) {
	copy(m.Pix[m.offset(y, x):m.offset(y, x)+m.Channels], col[:m.Channels])
}

// InBounds reports whether (x, y) addresses a pixel of the image.
func (m *Image) InBounds(p geometry.PointInt) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

// SameSize reports whether both images have identical width and height.
func (m *Image) SameSize(other *Image) bool {
	return m.Width == other.Width && m.Height == other.Height
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := &Image{Width: m.Width, Height: m.Height, Channels: m.Channels, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Fill sets every channel of every pixel to v.
func (m *Image) Fill(v uint8) {
	for i := range m.Pix {
		m.Pix[i] = v
	}
}

// FillRect sets the inclusive rectangle (x0,y0)-(x1,y1) of the first channel to v.
func (m *Image) FillRect(x0, y0, x1, y1 int, v uint8) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			m.Set(y, x, v)
		}
	}
}

// Count returns how many pixels have v in the first channel.
func (m *Image) Count(v uint8) int {
	n := 0
	for i := 0; i < len(m.Pix); i += m.Channels {
		if m.Pix[i] == v {
			n++
		}
	}
	return n
}

// Equal reports whether both images have the same shape and pixels.
func (m *Image) Equal(other *Image) bool {
	if m.Width != other.Width || m.Height != other.Height || m.Channels != other.Channels {
		return false
	}
	for i := range m.Pix {
		if m.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

// Crop copies the inclusive box out of the image.
func (m *Image) Crop(box geometry.BBox) *Image {
	out := New(box.Width(), box.Height(), m.Channels)
	rowLen := box.Width() * m.Channels
	for yy := 0; yy < box.Height(); yy++ {
		src := m.offset(box.Min.Y+yy, box.Min.X)
		copy(out.Pix[yy*rowLen:(yy+1)*rowLen], m.Pix[src:src+rowLen])
	}
	return out
}

// FromImage converts any image.Image into a 3-channel RGB raster.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	out := New(b.Dx(), b.Dy(), 3)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := out.offset(y, x)
			out.Pix[off+0] = uint8(r >> 8)
			out.Pix[off+1] = uint8(g >> 8)
			out.Pix[off+2] = uint8(bl >> 8)
		}
	}
	return out
}

// ToImage converts to *image.Gray for 1 channel and *image.RGBA for 3 channels.
func (m *Image) ToImage() image.Image {
	rect := image.Rect(0, 0, m.Width, m.Height)
	if m.Channels == 1 {
		g := image.NewGray(rect)
		for y := 0; y < m.Height; y++ {
			copy(g.Pix[y*g.Stride:y*g.Stride+m.Width], m.Pix[y*m.Width:(y+1)*m.Width])
		}
		return g
	}
	rgba := image.NewRGBA(rect)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			off := m.offset(y, x)
			rgba.SetRGBA(x, y, color.RGBA{R: m.Pix[off], G: m.Pix[off+1], B: m.Pix[off+2], A: 255})
		}
	}
	return rgba
}
