// Package threshold separates pieces from the background by comparing
// grayscale intensity with a cutoff derived from the photo border.
package threshold

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"puzzle-matcher/internal/cvutil"
	"puzzle-matcher/internal/raster"
	"puzzle-matcher/internal/stats"
)

// Params configures the background cutoff.
type Params struct {
	// BorderPercentile of the border intensities is taken as "typical background".
	BorderPercentile float64
	// Factor scales that percentile into the cutoff.
	Factor float64
}

// DefaultParams returns the cutoff used for pieces on a dark background:
// 1.5 times the 90th percentile of the border intensities.
func DefaultParams() Params {
	return Params{
		BorderPercentile: 90,
		Factor:           1.5,
	}
}

// Result holds the intermediate data of Foreground.
type Result struct {
	Gray      *raster.Image // 1-channel grayscale photo, rounded to 8 bits for dumps
	Border    []float32     // grayscale intensities of the outermost pixel ring
	Threshold float64
	Mask      *raster.Image // 255 where the grayscale intensity > Threshold
}

// Foreground converts img to floating point grayscale and thresholds it
// against a cutoff estimated from the border ring, which is assumed to show
// only background.
func Foreground(img *raster.Image, params Params) (*Result, error) {
	if img.Width == 0 || img.Height == 0 {
		return nil, errors.New("threshold: empty image")
	}

	src := cvutil.ToMat(img)
	defer src.Close()

	srcF := gocv.NewMat()
	defer srcF.Close()
	src.ConvertTo(&srcF, matTypeFloat(img.Channels))

	gray := gocv.NewMat()
	defer gray.Close()
	if img.Channels == 3 {
		// cvutil stores color as BGR
		gocv.CvtColor(srcF, &gray, gocv.ColorBGRToGray)
	} else {
		srcF.CopyTo(&gray)
	}

	values, err := gray.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "threshold: grayscale data")
	}
	border := BorderValues(values, img.Width, img.Height)
	p, err := stats.Percentile(border, params.BorderPercentile)
	if err != nil {
		return nil, errors.Wrap(err, "threshold: border percentile")
	}
	cutoff := params.Factor * p

	maskF := gocv.NewMat()
	defer maskF.Close()
	gocv.Threshold(gray, &maskF, float32(cutoff), 255, gocv.ThresholdBinary)

	maskImg, err := toRaster(maskF)
	if err != nil {
		return nil, errors.Wrap(err, "threshold: mask")
	}
	grayImg, err := toRaster(gray)
	if err != nil {
		return nil, errors.Wrap(err, "threshold: grayscale")
	}

	return &Result{
		Gray:      grayImg,
		Border:    border,
		Threshold: cutoff,
		Mask:      maskImg,
	}, nil
}

func matTypeFloat(channels int) gocv.MatType {
	if channels == 1 {
		return gocv.MatTypeCV32F
	}
	return gocv.MatTypeCV32FC3
}

// toRaster rounds a CV32F Mat to 8 bits.
func toRaster(m gocv.Mat) (*raster.Image, error) {
	u := gocv.NewMat()
	defer u.Close()
	m.ConvertTo(&u, gocv.MatTypeCV8U)
	return cvutil.FromMat(u)
}

// BorderValues returns every value on the outermost ring of a row-major
// width x height grid, each position exactly once (2w+2h-4 values for grids
// at least 2x2).
func BorderValues[T any](pix []T, width, height int) []T {
	out := make([]T, 0, 2*width+2*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x != 0 && x != width-1 && y != 0 && y != height-1 {
				continue
			}
			out = append(out, pix[y*width+x])
		}
	}
	return out
}
