// Package match finds, for every side of every piece, the side of another
// piece whose color pattern along the edge fits best.
package match

import (
	"context"
	"math"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"puzzle-matcher/internal/logger"
	"puzzle-matcher/internal/raster"
	"puzzle-matcher/internal/stats"
	"puzzle-matcher/pkg/colorutil"
	"puzzle-matcher/pkg/geometry"
)

// Piece is the matcher input for one piece: its crop and its clockwise sides
// in crop coordinates.
type Piece struct {
	Image *raster.Image
	Sides [][]geometry.PointInt
}

// Params configures the matcher.
type Params struct {
	BlurStrength float64 // Gaussian sigma applied to each color sequence
	Parallel     bool    // evaluate target sides concurrently
}

// DefaultParams returns the matcher defaults.
func DefaultParams() Params {
	return Params{
		BlurStrength: 2,
		Parallel:     true,
	}
}

// WithBlur returns a copy of params with a different blur sigma.
func (p Params) WithBlur(sigma float64) Params {
	p.BlurStrength = sigma
	return p
}

// Result holds one Candidate per side and the full difference table.
type Result struct {
	// Candidates[piece][side]
	Candidates [][]Candidate
	// Differences[i][j] is the score of side j as counterpart of side i, using
	// the flat numbering of Index. Same-piece pairs are NaN. Nil without sides.
	Differences *mat.Dense

	offsets []int
}

// Index maps a side to its row/column in Differences.
func (r *Result) Index(ref SideRef) int {
	return r.offsets[ref.Piece] + ref.Side
}

// Difference returns the score of b as counterpart of a.
func (r *Result) Difference(a, b SideRef) float64 {
	return r.Differences.At(r.Index(a), r.Index(b))
}

// Matcher compares piece sides.
type Matcher struct {
	params Params
}

// NewMatcher creates a Matcher.
func NewMatcher(params Params) *Matcher {
	return &Matcher{params: params}
}

// sideColors caches the blurred colors of a side in both directions.
type sideColors struct {
	forward  []colorutil.Color
	reversed []colorutil.Color
}

// Match evaluates every (pieceA, sideA) against every side of every other piece.
func (m *Matcher) Match(ctx context.Context, pieces []Piece) (*Result, error) {
	log := logger.Entry(ctx)

	channels := 0
	offsets := make([]int, len(pieces))
	total := 0
	for i, p := range pieces {
		if i == 0 {
			channels = p.Image.Channels
		} else if p.Image.Channels != channels {
			return nil, errors.Errorf("piece %d has %d channels, piece 0 has %d", i, p.Image.Channels, channels)
		}
		offsets[i] = total
		total += len(p.Sides)
	}

	colors := make([][]sideColors, len(pieces))
	for i, p := range pieces {
		colors[i] = make([]sideColors, len(p.Sides))
		for s, side := range p.Sides {
			if len(side) == 0 {
				return nil, errors.Errorf("piece %d side %d is empty", i, s)
			}
			fwd, err := ExtractColors(p.Image, side)
			if err != nil {
				return nil, errors.Wrapf(err, "piece %d side %d", i, s)
			}
			rev, err := ExtractColors(p.Image, geometry.Reversed(side))
			if err != nil {
				return nil, errors.Wrapf(err, "piece %d side %d", i, s)
			}
			colors[i][s] = sideColors{
				forward:  Blur(fwd, channels, m.params.BlurStrength),
				reversed: Blur(rev, channels, m.params.BlurStrength),
			}
		}
	}

	res := &Result{
		Candidates: make([][]Candidate, len(pieces)),
		offsets:    offsets,
	}
	for i, p := range pieces {
		res.Candidates[i] = make([]Candidate, len(p.Sides))
	}
	if total > 0 {
		res.Differences = mat.NewDense(total, total, nil)
	}

	// Each task owns Candidates[a][s] and row offsets[a]+s of Differences.
	compareTarget := func(a, s int) error {
		for b := range pieces {
			if b == a {
				for t := range pieces[b].Sides {
					res.Differences.Set(offsets[a]+s, offsets[b]+t, math.NaN())
				}
				continue
			}
			for t := range pieces[b].Sides {
				diff, err := compare(colors[a][s].forward, colors[b][t].reversed, channels)
				if err != nil {
					return errors.Wrapf(err, "obj%d-side%d vs obj%d-side%d", a, s, b, t)
				}
				res.Differences.Set(offsets[a]+s, offsets[b]+t, diff)
				res.Candidates[a][s].Offer(Match{SideRef: SideRef{Piece: b, Side: t}, Difference: diff})
				log.Tracef("obj%d-side%d vs obj%d-side%d: difference=%.2f", a, s, b, t, diff)
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if m.params.Parallel {
		g.SetLimit(runtime.GOMAXPROCS(0))
	} else {
		g.SetLimit(1)
	}
	for a := range pieces {
		for s := range pieces[a].Sides {
			a, s := a, s
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return compareTarget(a, s)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// compare resamples both blurred sequences to the shorter length and returns
// the median per-position difference.
func compare(a, b []colorutil.Color, channels int) (float64, error) {
	n := min(len(a), len(b))
	da := Downsample(a, channels, n)
	db := Downsample(b, channels, n)
	return stats.Median(Differences(da, db, channels))
}

// SideDifference scores side sideB of pieceB as counterpart of side sideA of
// pieceA, the same way Match does for a single pair.
func SideDifference(pieceA Piece, sideA int, pieceB Piece, sideB int, blur float64) (float64, error) {
	if pieceA.Image.Channels != pieceB.Image.Channels {
		return 0, errors.New("pieces differ in channel count")
	}
	channels := pieceA.Image.Channels
	ca, err := ExtractColors(pieceA.Image, pieceA.Sides[sideA])
	if err != nil {
		return 0, err
	}
	cb, err := ExtractColors(pieceB.Image, geometry.Reversed(pieceB.Sides[sideB]))
	if err != nil {
		return 0, err
	}
	return compare(Blur(ca, channels, blur), Blur(cb, channels, blur), channels)
}
