// Package cvutil converts between raster images and OpenCV matrices.
package cvutil

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"puzzle-matcher/internal/raster"
)

// ToMat converts a raster to a Mat: CV8U for masks, CV8UC3 in BGR order for color.
// The caller owns the returned Mat and must Close it.
func ToMat(img *raster.Image) gocv.Mat {
	if img.Channels == 1 {
		mat, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8U, img.Pix)
		if err == nil {
			// NewMatFromBytes shares memory with Pix; detach it.
			owned := mat.Clone()
			mat.Close()
			return owned
		}
	}

	mat := gocv.NewMatWithSize(img.Height, img.Width, matType(img.Channels))
	raster.ForStripes(img.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < img.Width; x++ {
				if img.Channels == 1 {
					mat.SetUCharAt(y, x, img.At(y, x))
					continue
				}
				// OpenCV uses BGR format
				mat.SetUCharAt(y, x*3+0, img.AtC(y, x, 2))
				mat.SetUCharAt(y, x*3+1, img.AtC(y, x, 1))
				mat.SetUCharAt(y, x*3+2, img.AtC(y, x, 0))
			}
		}
	})
	return mat
}

// FromMat converts a CV8U or CV8UC3 (BGR) Mat into a raster.
func FromMat(mat gocv.Mat) (*raster.Image, error) {
	var channels int
	switch mat.Type() {
	case gocv.MatTypeCV8U:
		channels = 1
	case gocv.MatTypeCV8UC3:
		channels = 3
	default:
		return nil, errors.Errorf("cvutil: unsupported mat type %v", mat.Type())
	}

	h, w := mat.Rows(), mat.Cols()
	img := raster.New(w, h, channels)
	raster.ForStripes(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				if channels == 1 {
					img.Set(y, x, mat.GetUCharAt(y, x))
					continue
				}
				img.SetC(y, x, 0, mat.GetUCharAt(y, x*3+2)) // R
				img.SetC(y, x, 1, mat.GetUCharAt(y, x*3+1)) // G
				img.SetC(y, x, 2, mat.GetUCharAt(y, x*3+0)) // B
			}
		}
	})
	return img, nil
}

func matType(channels int) gocv.MatType {
	if channels == 1 {
		return gocv.MatTypeCV8U
	}
	return gocv.MatTypeCV8UC3
}
