package boundary

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"puzzle-matcher/internal/raster"
	"puzzle-matcher/pkg/geometry"
)

// rectContour walks the border of the inclusive rectangle clockwise on screen,
// starting at the top-left corner.
func rectContour(x0, y0, x1, y1 int) []geometry.PointInt {
	var pts []geometry.PointInt
	for x := x0; x < x1; x++ {
		pts = append(pts, geometry.Pt(x, y0))
	}
	for y := y0; y < y1; y++ {
		pts = append(pts, geometry.Pt(x1, y))
	}
	for x := x1; x > x0; x-- {
		pts = append(pts, geometry.Pt(x, y1))
	}
	for y := y1; y > y0; y-- {
		pts = append(pts, geometry.Pt(x0, y))
	}
	return pts
}

func TestSplitByCorners_Rectangle(t *testing.T) {
	contour := rectContour(0, 0, 5, 3)
	corners := []geometry.PointInt{{5, 3}, {0, 0}, {0, 3}, {5, 0}}

	sides, err := CornerSplitter{}.SplitByCorners(contour, corners)
	require.NoError(t, err)
	require.Len(t, sides, 4)

	assert.Len(t, sides[0], 6)
	assert.Equal(t, geometry.Pt(0, 0), sides[0][0])
	assert.Equal(t, geometry.Pt(5, 0), sides[0][5])

	assert.Len(t, sides[1], 4)
	assert.Equal(t, geometry.Pt(5, 0), sides[1][0])
	assert.Equal(t, geometry.Pt(5, 3), sides[1][3])

	assert.Equal(t, geometry.Pt(5, 3), sides[2][0])
	assert.Equal(t, geometry.Pt(0, 3), sides[2][5])

	// last side wraps back to the start
	assert.Len(t, sides[3], 4)
	assert.Equal(t, geometry.Pt(0, 3), sides[3][0])
	assert.Equal(t, geometry.Pt(0, 0), sides[3][3])
}

func TestSplitByCorners_StartInsideSide(t *testing.T) {
	contour := rectContour(0, 0, 4, 4)
	// rotate so the contour starts in the middle of the top side
	contour = append(contour[2:], contour[:2]...)
	corners := ExtremeCorners(contour)

	sides, err := CornerSplitter{}.SplitByCorners(contour, corners)
	require.NoError(t, err)
	require.Len(t, sides, 4)

	total := 0
	for _, s := range sides {
		assert.Len(t, s, 5)
		total += len(s) - 1
	}
	assert.Equal(t, len(contour), total, "sides share only their corners")

	// the side crossing the contour start runs from top-left to top-right
	assert.Equal(t, geometry.Pt(0, 0), sides[3][0])
	assert.Equal(t, geometry.Pt(4, 0), sides[3][4])
}

func TestSplitByCorners_Errors(t *testing.T) {
	contour := rectContour(0, 0, 4, 4)

	_, err := CornerSplitter{}.SplitByCorners(contour, []geometry.PointInt{{0, 0}, {2, 2}, {4, 4}, {0, 4}})
	assert.Error(t, err, "corner off the contour")

	_, err = CornerSplitter{}.SplitByCorners(contour, []geometry.PointInt{{0, 0}, {0, 0}, {4, 4}, {0, 4}})
	assert.Error(t, err, "duplicate corner")

	_, err = CornerSplitter{}.SplitByCorners(contour, []geometry.PointInt{{0, 0}})
	assert.Error(t, err)
}

func TestOrientClockwise(t *testing.T) {
	cw := rectContour(2, 2, 6, 5)
	ccw := geometry.Reversed(cw)
	start := ccw[0]

	OrientClockwise(ccw)
	assert.Equal(t, start, ccw[0])
	assert.Greater(t, geometry.SignedArea(ccw), 0.0)

	before := append([]geometry.PointInt(nil), cw...)
	OrientClockwise(cw)
	assert.Equal(t, before, cw, "clockwise input is left alone")
}

func TestExtremeCorners(t *testing.T) {
	corners := ExtremeCorners(rectContour(1, 2, 7, 9))
	assert.Equal(t, []geometry.PointInt{{1, 2}, {7, 2}, {7, 9}, {1, 9}}, corners)
	assert.Nil(t, ExtremeCorners(nil))
}

func TestContourMask(t *testing.T) {
	mask := raster.NewMask(10, 8)
	mask.FillRect(2, 1, 7, 6, 255)

	c := ContourMask(mask)
	assert.Equal(t, 2*6+2*6-4, c.Count(255))
	assert.Equal(t, uint8(255), c.At(1, 2))
	assert.Equal(t, uint8(0), c.At(3, 4))

	full := raster.NewMask(3, 3)
	full.Fill(255)
	assert.Equal(t, 8, ContourMask(full).Count(255), "image edge counts as background")
}

type fakeDecomposer struct {
	CornerSplitter
	contour   []geometry.PointInt
	corners   []geometry.PointInt
	traceErr  error
	cornerErr error
}

func (f fakeDecomposer) Trace(*raster.Image) ([]geometry.PointInt, error) {
	return f.contour, f.traceErr
}

func (f fakeDecomposer) FindCorners([]geometry.PointInt, int) ([]geometry.PointInt, error) {
	return f.corners, f.cornerErr
}

func TestDecompose(t *testing.T) {
	contour := rectContour(0, 0, 3, 3)
	d := fakeDecomposer{contour: contour, corners: ExtremeCorners(contour)}

	piece, err := Decompose(d, raster.NewMask(4, 4))
	require.NoError(t, err)
	assert.Len(t, piece.Sides, SidesPerPiece)
	assert.Equal(t, contour, piece.Contour)

	boom := errors.New("boom")
	_, err = Decompose(fakeDecomposer{traceErr: boom}, raster.NewMask(4, 4))
	assert.True(t, errors.Is(err, boom))

	_, err = Decompose(fakeDecomposer{contour: contour, corners: contour[:3]}, raster.NewMask(4, 4))
	assert.Error(t, err)
}
