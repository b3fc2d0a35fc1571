package boundary

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"puzzle-matcher/internal/cvutil"
	"puzzle-matcher/internal/raster"
	"puzzle-matcher/pkg/geometry"
)

// OpenCV implements Decomposer with FindContours and ApproxPolyDP.
type OpenCV struct {
	CornerSplitter

	// SearchSteps bounds the epsilon bisection of FindCorners.
	SearchSteps int
}

// NewOpenCV returns an OpenCV decomposer with default settings.
func NewOpenCV() *OpenCV {
	return &OpenCV{SearchSteps: 40}
}

var _ Decomposer = (*OpenCV)(nil)

// Trace returns the largest external contour of mask with every boundary
// pixel (no chain approximation), oriented clockwise.
func (o *OpenCV) Trace(mask *raster.Image) ([]geometry.PointInt, error) {
	if mask.Channels != 1 {
		return nil, errors.Errorf("trace: expected 1-channel mask, got %d", mask.Channels)
	}
	mat := cvutil.ToMat(mask)
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	if contours.Size() == 0 {
		return nil, errors.New("trace: mask has no contour")
	}

	best, bestArea := -1, -1.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			best, bestArea = i, area
		}
	}

	pts := contours.At(best).ToPoints()
	contour := make([]geometry.PointInt, len(pts))
	for i, p := range pts {
		contour[i] = geometry.Pt(p.X, p.Y)
	}
	OrientClockwise(contour)
	return contour, nil
}

// FindCorners bisects the ApproxPolyDP epsilon until the polygon has exactly k
// vertices. For k == 4 it falls back to ExtremeCorners when no epsilon fits.
// Returned corners are contour points.
func (o *OpenCV) FindCorners(contour []geometry.PointInt, k int) ([]geometry.PointInt, error) {
	if len(contour) < k {
		return nil, errors.Errorf("find corners: contour has %d points, need %d", len(contour), k)
	}

	pts := make([]image.Point, len(contour))
	for i, p := range contour {
		pts[i] = image.Pt(p.X, p.Y)
	}
	curve := gocv.NewPointVectorFromPoints(pts)
	defer curve.Close()

	lo, hi := 0.0, gocv.ArcLength(curve, true)/2
	steps := o.SearchSteps
	if steps <= 0 {
		steps = 40
	}
	for i := 0; i < steps; i++ {
		eps := (lo + hi) / 2
		approx := gocv.ApproxPolyDP(curve, eps, true)
		n := approx.Size()
		if n == k {
			corners := make([]geometry.PointInt, 0, k)
			for _, p := range approx.ToPoints() {
				corners = append(corners, geometry.Pt(p.X, p.Y))
			}
			approx.Close()
			return corners, nil
		}
		approx.Close()
		if n > k {
			lo = eps
		} else {
			hi = eps
		}
	}

	if k == SidesPerPiece {
		return ExtremeCorners(contour), nil
	}
	return nil, errors.Errorf("find corners: no polygon with %d vertices", k)
}
