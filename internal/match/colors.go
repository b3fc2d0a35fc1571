package match

import (
	"math"

	"github.com/pkg/errors"

	"puzzle-matcher/internal/raster"
	"puzzle-matcher/pkg/colorutil"
	"puzzle-matcher/pkg/geometry"
)

// ExtractColors samples img at every pixel of side, in order.
func ExtractColors(img *raster.Image, side []geometry.PointInt) ([]colorutil.Color, error) {
	colors := make([]colorutil.Color, len(side))
	for i, p := range side {
		if !img.InBounds(p) {
			return nil, errors.Errorf("side pixel (%d,%d) outside %dx%d image", p.X, p.Y, img.Width, img.Height)
		}
		colors[i] = img.Color(p.Y, p.X)
	}
	return colors, nil
}

// Blur applies a 1D Gaussian with the given sigma to every channel.
// Samples beyond either end repeat the end value. sigma <= 0 returns a copy.
func Blur(colors []colorutil.Color, channels int, sigma float64) []colorutil.Color {
	out := make([]colorutil.Color, len(colors))
	if sigma <= 0 || len(colors) == 0 {
		copy(out, colors)
		return out
	}

	radius := int(math.Ceil(3 * sigma))
	weights := make([]float64, 2*radius+1)
	var total float64
	for d := -radius; d <= radius; d++ {
		w := math.Exp(-float64(d*d) / (2 * sigma * sigma))
		weights[d+radius] = w
		total += w
	}
	for i := range weights {
		weights[i] /= total
	}

	last := len(colors) - 1
	for i := range colors {
		for c := 0; c < channels; c++ {
			var acc float64
			for d := -radius; d <= radius; d++ {
				j := min(max(i+d, 0), last)
				acc += weights[d+radius] * float64(colors[j][c])
			}
			out[i][c] = clampByte(acc)
		}
	}
	return out
}

// Downsample shrinks colors to n samples by averaging n consecutive,
// near-equal bins. n >= len(colors) returns a copy.
func Downsample(colors []colorutil.Color, channels, n int) []colorutil.Color {
	size := len(colors)
	if n >= size {
		out := make([]colorutil.Color, size)
		copy(out, colors)
		return out
	}
	if n <= 0 {
		return []colorutil.Color{}
	}

	out := make([]colorutil.Color, n)
	for i := 0; i < n; i++ {
		from := i * size / n
		to := (i + 1) * size / n
		for c := 0; c < channels; c++ {
			sum := 0
			for j := from; j < to; j++ {
				sum += int(colors[j][c])
			}
			out[i][c] = clampByte(float64(sum) / float64(to-from))
		}
	}
	return out
}

// Differences returns the per-position sum of absolute channel differences.
// Both sequences must have the same length.
func Differences(a, b []colorutil.Color, channels int) []float64 {
	diffs := make([]float64, len(a))
	for i := range a {
		diffs[i] = colorutil.AbsDiff(a[i], b[i], channels)
	}
	return diffs
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
