// Package morphology implements binary erosion and dilation with a square
// structuring element over {0,255} masks.
package morphology

import (
	"github.com/pkg/errors"

	"puzzle-matcher/internal/raster"
)

// ErrPrecondition marks masks or arguments the operations refuse to process.
var ErrPrecondition = errors.New("morphology precondition violated")

const (
	off = 0
	on  = 255
)

func checkBinary(src *raster.Image) error {
	if src.Channels != 1 {
		return errors.Wrapf(ErrPrecondition, "expected 1-channel mask, got %d channels", src.Channels)
	}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if v := src.At(y, x); v != off && v != on {
				return errors.Wrapf(ErrPrecondition, "non-binary pixel %d at row %d column %d", v, y, x)
			}
		}
	}
	return nil
}

// Erode returns a mask where a pixel is 255 only if its whole
// (2*strength+1)^2 neighborhood lies inside the image and is 255.
// Pixels closer than strength to the border are always 0 (zero padding).
func Erode(src *raster.Image, strength int, parallel bool) (*raster.Image, error) {
	if strength < 0 {
		return nil, errors.Wrapf(ErrPrecondition, "erode: negative strength %d", strength)
	}
	if err := checkBinary(src); err != nil {
		return nil, errors.Wrap(err, "erode")
	}
	if strength == 0 {
		return src.Clone(), nil
	}

	w, h := src.Width, src.Height
	dst := raster.NewMask(w, h)
	forRows(h, parallel, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				if y-strength < 0 || y+strength >= h || x-strength < 0 || x+strength >= w {
					continue
				}
				if allOn(src, x-strength, y-strength, x+strength, y+strength) {
					dst.Set(y, x, on)
				}
			}
		}
	})
	return dst, nil
}

// Dilate returns a mask where a pixel is 255 if any pixel of its
// neighborhood, clipped to the image, is 255.
func Dilate(src *raster.Image, strength int, parallel bool) (*raster.Image, error) {
	if strength < 0 {
		return nil, errors.Wrapf(ErrPrecondition, "dilate: negative strength %d", strength)
	}
	if err := checkBinary(src); err != nil {
		return nil, errors.Wrap(err, "dilate")
	}
	if strength == 0 {
		return src.Clone(), nil
	}

	w, h := src.Width, src.Height
	dst := raster.NewMask(w, h)
	forRows(h, parallel, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				if anyOn(src, max(0, x-strength), max(0, y-strength), min(w-1, x+strength), min(h-1, y+strength)) {
					dst.Set(y, x, on)
				}
			}
		}
	})
	return dst, nil
}

func allOn(src *raster.Image, x0, y0, x1, y1 int) bool {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if src.At(y, x) == off {
				return false
			}
		}
	}
	return true
}

func anyOn(src *raster.Image, x0, y0, x1, y1 int) bool {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if src.At(y, x) == on {
				return true
			}
		}
	}
	return false
}

// forRows runs fn over [0,h) either inline or on row stripes, one per CPU.
// Each stripe writes only its own output rows.
func forRows(h int, parallel bool, fn func(y0, y1 int)) {
	if !parallel || h < 2 {
		fn(0, h)
		return
	}
	raster.ForStripes(h, fn)
}
