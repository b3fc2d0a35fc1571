// Package render draws debug overlays: colorized components, piece sides
// and the segments joining matched sides.
package render

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"puzzle-matcher/internal/cvutil"
	"puzzle-matcher/internal/match"
	"puzzle-matcher/internal/raster"
	"puzzle-matcher/internal/segment"
	"puzzle-matcher/pkg/colorutil"
	"puzzle-matcher/pkg/geometry"
)

// PaletteSeed keeps overlay colors stable between runs.
const PaletteSeed = 2391

const segmentThickness = 5

// PlacedPiece is a piece's sides together with its crop offset in the photo.
type PlacedPiece struct {
	Offset geometry.PointInt
	Sides  [][]geometry.PointInt
}

// Labels paints every component in its own random color on black.
func Labels(labels segment.Labels) *raster.Image {
	out := raster.New(labels.Width, labels.Height, 3)
	palette := colorutil.NewPalette(PaletteSeed)
	colors := map[int32]colorutil.Color{}
	for y := 0; y < labels.Height; y++ {
		for x := 0; x < labels.Width; x++ {
			l := labels.At(y, x)
			if l == 0 {
				continue
			}
			c, ok := colors[l]
			if !ok {
				rgba := palette.Next()
				c = colorutil.Color{rgba.R, rgba.G, rgba.B}
				colors[l] = c
			}
			out.SetColor(y, x, c)
		}
	}
	return out
}

// Sides paints every side of a piece crop in its own color.
func Sides(width, height int, sides [][]geometry.PointInt) *raster.Image {
	out := raster.New(width, height, 3)
	palette := colorutil.NewPalette(PaletteSeed)
	for _, side := range sides {
		rgba := palette.Next()
		c := colorutil.Color{rgba.R, rgba.G, rgba.B}
		for _, p := range side {
			if out.InBounds(p) {
				out.SetColor(p.Y, p.X, c)
			}
		}
	}
	return out
}

// Corners draws the detected corners as circles over a mask.
func Corners(mask *raster.Image, corners []geometry.PointInt) (*raster.Image, error) {
	base := raster.New(mask.Width, mask.Height, 3)
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			v := mask.At(y, x)
			base.SetColor(y, x, colorutil.Color{v, v, v})
		}
	}

	mat := cvutil.ToMat(base)
	defer mat.Close()
	for _, c := range corners {
		gocv.Circle(&mat, image.Pt(c.X, c.Y), 10, colorutil.Red, 2)
	}
	out, err := cvutil.FromMat(mat)
	return out, errors.Wrap(err, "render corners")
}

// MatchedSides draws, for every side that found a best match, a dot at the
// side midpoint and a segment towards the matched side's midpoint. All segments
// of a piece share a color and a random shift, so the two directions of a
// mutual match do not cover each other.
func MatchedSides(img *raster.Image, pieces []PlacedPiece, res *match.Result) (*raster.Image, error) {
	if len(res.Candidates) != len(pieces) {
		return nil, errors.Errorf("render: %d pieces but %d candidate rows", len(pieces), len(res.Candidates))
	}

	mat := cvutil.ToMat(img)
	defer mat.Close()

	palette := colorutil.NewPalette(PaletteSeed)
	for i := range pieces {
		col := palette.Next()
		shift := geometry.Pt(palette.Jitter(segmentThickness), palette.Jitter(segmentThickness))
		for s, cand := range res.Candidates[i] {
			best, ok := cand.Best()
			if !ok {
				continue
			}
			from, err := midpoint(pieces, i, s)
			if err != nil {
				return nil, err
			}
			to, err := midpoint(pieces, best.Piece, best.Side)
			if err != nil {
				return nil, err
			}
			from, to = from.Add(shift), to.Add(shift)

			gocv.Circle(&mat, image.Pt(from.X, from.Y), 2*segmentThickness, col, -1)
			gocv.Line(&mat, image.Pt(from.X, from.Y), image.Pt(to.X, to.Y), col, segmentThickness)
		}
	}

	out, err := cvutil.FromMat(mat)
	return out, errors.Wrap(err, "render matched sides")
}

func midpoint(pieces []PlacedPiece, piece, side int) (geometry.PointInt, error) {
	if piece < 0 || piece >= len(pieces) || side < 0 || side >= len(pieces[piece].Sides) {
		return geometry.PointInt{}, errors.Errorf("render: no side obj%d-side%d", piece, side)
	}
	pts := pieces[piece].Sides[side]
	if len(pts) == 0 {
		return geometry.PointInt{}, errors.Errorf("render: empty side obj%d-side%d", piece, side)
	}
	return pts[len(pts)/2].Add(pieces[piece].Offset), nil
}
