// Package boundary reduces a piece mask to its contour, four corners and the
// four clockwise sides between them.
package boundary

import (
	"sort"

	"github.com/pkg/errors"

	"puzzle-matcher/internal/raster"
	"puzzle-matcher/pkg/geometry"
)

// SidesPerPiece is the number of sides every piece is split into.
const SidesPerPiece = 4

// Tracer turns a piece mask into an ordered, clockwise boundary.
type Tracer interface {
	Trace(mask *raster.Image) ([]geometry.PointInt, error)
}

// CornerFinder picks k corner points out of a boundary.
type CornerFinder interface {
	FindCorners(contour []geometry.PointInt, k int) ([]geometry.PointInt, error)
}

// SideSplitter cuts a boundary into one side per pair of consecutive corners.
type SideSplitter interface {
	SplitByCorners(contour, corners []geometry.PointInt) ([][]geometry.PointInt, error)
}

// Decomposer bundles the three steps.
type Decomposer interface {
	Tracer
	CornerFinder
	SideSplitter
}

// Piece is the decomposed boundary of one piece, in crop coordinates.
type Piece struct {
	Contour []geometry.PointInt
	Corners []geometry.PointInt
	Sides   [][]geometry.PointInt
}

// Decompose traces mask, finds four corners and splits the contour into sides.
func Decompose(d Decomposer, mask *raster.Image) (*Piece, error) {
	contour, err := d.Trace(mask)
	if err != nil {
		return nil, errors.Wrap(err, "trace contour")
	}
	corners, err := d.FindCorners(contour, SidesPerPiece)
	if err != nil {
		return nil, errors.Wrap(err, "find corners")
	}
	if len(corners) != SidesPerPiece {
		return nil, errors.Errorf("expected %d corners, got %d", SidesPerPiece, len(corners))
	}
	sides, err := d.SplitByCorners(contour, corners)
	if err != nil {
		return nil, errors.Wrap(err, "split by corners")
	}
	if len(sides) != SidesPerPiece {
		return nil, errors.Errorf("expected %d sides, got %d", SidesPerPiece, len(sides))
	}
	return &Piece{Contour: contour, Corners: corners, Sides: sides}, nil
}

// CornerSplitter is the pure Go SideSplitter.
type CornerSplitter struct{}

// SplitByCorners returns, for corners sorted by their position along contour,
// the contour runs from corner i to corner i+1 with both ends included.
// The last side wraps around the contour start.
func (CornerSplitter) SplitByCorners(contour, corners []geometry.PointInt) ([][]geometry.PointInt, error) {
	if len(corners) < 2 {
		return nil, errors.Errorf("need at least 2 corners, got %d", len(corners))
	}

	firstIndex := make(map[geometry.PointInt]int, len(contour))
	for i, p := range contour {
		if _, ok := firstIndex[p]; !ok {
			firstIndex[p] = i
		}
	}

	idx := make([]int, len(corners))
	for i, c := range corners {
		j, ok := firstIndex[c]
		if !ok {
			return nil, errors.Errorf("corner (%d,%d) is not on the contour", c.X, c.Y)
		}
		idx[i] = j
	}
	sort.Ints(idx)
	for i := 1; i < len(idx); i++ {
		if idx[i] == idx[i-1] {
			return nil, errors.Errorf("duplicate corner at contour index %d", idx[i])
		}
	}

	n := len(contour)
	sides := make([][]geometry.PointInt, len(idx))
	for i := range idx {
		from, to := idx[i], idx[(i+1)%len(idx)]
		if to <= from {
			to += n
		}
		side := make([]geometry.PointInt, 0, to-from+1)
		for j := from; j <= to; j++ {
			side = append(side, contour[j%n])
		}
		sides[i] = side
	}
	return sides, nil
}

// OrientClockwise reverses contour in place when it runs counter-clockwise on
// screen (y down). The starting point is kept.
func OrientClockwise(contour []geometry.PointInt) {
	if geometry.SignedArea(contour) < 0 && len(contour) > 2 {
		geometry.Reverse(contour[1:])
	}
}

// ExtremeCorners picks the top-left, top-right, bottom-right and bottom-left
// contour points by minimizing x+y, maximizing x-y, maximizing x+y and
// maximizing y-x. Ties keep the earliest contour point.
func ExtremeCorners(contour []geometry.PointInt) []geometry.PointInt {
	if len(contour) == 0 {
		return nil
	}
	tl, tr, br, bl := contour[0], contour[0], contour[0], contour[0]
	for _, p := range contour[1:] {
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X-p.Y > tr.X-tr.Y {
			tr = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.Y-p.X > bl.Y-bl.X {
			bl = p
		}
	}
	return []geometry.PointInt{tl, tr, br, bl}
}

// ContourMask keeps the foreground pixels that touch the background through
// an edge or lie on the image border.
func ContourMask(mask *raster.Image) *raster.Image {
	w, h := mask.Width, mask.Height
	out := raster.NewMask(w, h)
	fg := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && mask.At(y, x) == 255
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fg(x, y) {
				continue
			}
			if !fg(x-1, y) || !fg(x+1, y) || !fg(x, y-1) || !fg(x, y+1) {
				out.Set(y, x, 255)
			}
		}
	}
	return out
}
