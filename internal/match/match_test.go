package match

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"puzzle-matcher/internal/raster"
	"puzzle-matcher/pkg/colorutil"
	"puzzle-matcher/pkg/geometry"
)

// borderSides returns the four clockwise sides of a size x size crop:
// top, right, bottom, left, each including both corners.
func borderSides(size int) [][]geometry.PointInt {
	last := size - 1
	sides := make([][]geometry.PointInt, 4)
	for i := 0; i <= last; i++ {
		sides[0] = append(sides[0], geometry.Pt(i, 0))
		sides[1] = append(sides[1], geometry.Pt(last, i))
		sides[2] = append(sides[2], geometry.Pt(last-i, last))
		sides[3] = append(sides[3], geometry.Pt(0, last-i))
	}
	return sides
}

func gradient(x int) colorutil.Color {
	return colorutil.Color{uint8(x * 20), 100, uint8(200 - x*10)}
}

// twoFittingPieces builds piece 0 with a gradient on its top edge and piece 1
// with the same gradient on its bottom edge.
func twoFittingPieces() []Piece {
	const size = 10
	a := raster.New(size, size, 3)
	b := raster.New(size, size, 3)
	b.Fill(255)
	for x := 0; x < size; x++ {
		a.SetColor(0, x, gradient(x))
		b.SetColor(size-1, x, gradient(x))
	}
	return []Piece{
		{Image: a, Sides: borderSides(size)},
		{Image: b, Sides: borderSides(size)},
	}
}

func TestCandidate_Offer(t *testing.T) {
	var c Candidate
	assert.False(t, c.Matched())
	best, second := c.Scores()
	assert.Equal(t, -1.0, best)
	assert.Equal(t, -1.0, second)

	m := func(p, s int, d float64) Match { return Match{SideRef: SideRef{Piece: p, Side: s}, Difference: d} }

	assert.True(t, c.Offer(m(1, 0, 5)))
	_, ok := c.SecondBest()
	assert.False(t, ok)

	assert.False(t, c.Offer(m(1, 1, 7)), "worse candidate is dropped")

	assert.True(t, c.Offer(m(2, 0, 5)), "ties replace the best")
	b, _ := c.Best()
	assert.Equal(t, SideRef{Piece: 2, Side: 0}, b.SideRef)
	s, ok := c.SecondBest()
	require.True(t, ok)
	assert.Equal(t, SideRef{Piece: 1, Side: 0}, s.SideRef)

	assert.True(t, c.Offer(m(3, 2, 1)))
	best, second = c.Scores()
	assert.Equal(t, 1.0, best)
	assert.Equal(t, 5.0, second)
	s, _ = c.SecondBest()
	assert.Equal(t, SideRef{Piece: 2, Side: 0}, s.SideRef)
}

func TestBlur(t *testing.T) {
	step := make([]colorutil.Color, 8)
	for i := 4; i < 8; i++ {
		step[i] = colorutil.Color{255, 255, 255}
	}

	out := Blur(step, 3, 1)
	require.Len(t, out, 8)
	assert.Equal(t, uint8(0), out[0][0])
	assert.Equal(t, uint8(255), out[7][0])
	for i := 1; i < 8; i++ {
		assert.GreaterOrEqual(t, out[i][0], out[i-1][0])
	}
	assert.Greater(t, out[4][0], uint8(0))
	assert.Less(t, out[3][0], uint8(255))

	flat := []colorutil.Color{{7, 8, 9}, {7, 8, 9}, {7, 8, 9}}
	assert.Equal(t, flat, Blur(flat, 3, 2))

	same := Blur(step, 3, 0)
	assert.Equal(t, step, same)
	same[5][0] = 1
	assert.Equal(t, uint8(255), step[5][0], "copy, not alias")
}

func TestDownsample(t *testing.T) {
	in := []colorutil.Color{{10}, {20}, {30}, {40}, {50}}
	assert.Equal(t, []colorutil.Color{{15}, {40}}, Downsample(in, 1, 2))
	assert.Equal(t, in, Downsample(in, 1, 5))
	assert.Equal(t, in, Downsample(in, 1, 9))
	assert.Equal(t, []colorutil.Color{{30}}, Downsample(in, 1, 1))
}

func TestDifferences(t *testing.T) {
	a := []colorutil.Color{{10, 20, 30}, {0, 0, 0}}
	b := []colorutil.Color{{13, 10, 30}, {255, 0, 1}}
	assert.Equal(t, []float64{13, 256}, Differences(a, b, 3))
	assert.Equal(t, []float64{3, 255}, Differences(a, b, 1))
}

func TestMatch_MutualBestOnIdenticalEdges(t *testing.T) {
	pieces := twoFittingPieces()
	res, err := NewMatcher(DefaultParams()).Match(context.Background(), pieces)
	require.NoError(t, err)

	topOfA, ok := res.Candidates[0][0].Best()
	require.True(t, ok)
	assert.Equal(t, SideRef{Piece: 1, Side: 2}, topOfA.SideRef)
	assert.Equal(t, 0.0, topOfA.Difference)

	bottomOfB, ok := res.Candidates[1][2].Best()
	require.True(t, ok)
	assert.Equal(t, SideRef{Piece: 0, Side: 0}, bottomOfB.SideRef)
	assert.Equal(t, 0.0, bottomOfB.Difference)

	for p := range pieces {
		for s := range pieces[p].Sides {
			best, ok := res.Candidates[p][s].Best()
			require.True(t, ok)
			assert.NotEqual(t, p, best.Piece, "self comparison is skipped")
		}
	}

	assert.Equal(t, 0.0, res.Difference(SideRef{0, 0}, SideRef{1, 2}))
	assert.True(t, math.IsNaN(res.Difference(SideRef{0, 0}, SideRef{0, 1})))
	assert.Greater(t, res.Difference(SideRef{0, 0}, SideRef{1, 0}), 0.0)

	d, err := SideDifference(pieces[0], 0, pieces[1], 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestMatch_SinglePieceIsUnmatched(t *testing.T) {
	pieces := twoFittingPieces()[:1]
	res, err := NewMatcher(DefaultParams()).Match(context.Background(), pieces)
	require.NoError(t, err)
	require.Len(t, res.Candidates[0], 4)
	for _, c := range res.Candidates[0] {
		assert.False(t, c.Matched())
		best, second := c.Scores()
		assert.Equal(t, -1.0, best)
		assert.Equal(t, -1.0, second)
	}
}

func TestMatch_NoPieces(t *testing.T) {
	res, err := NewMatcher(DefaultParams()).Match(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
	assert.Nil(t, res.Differences)
}

func TestMatch_ParallelEqualsSequential(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	var pieces []Piece
	for p := 0; p < 5; p++ {
		size := 8 + rnd.Intn(10)
		img := raster.New(size, size, 3)
		for i := range img.Pix {
			img.Pix[i] = uint8(rnd.Intn(256))
		}
		pieces = append(pieces, Piece{Image: img, Sides: borderSides(size)})
	}

	par, err := NewMatcher(DefaultParams().WithBlur(1.5)).Match(context.Background(), pieces)
	require.NoError(t, err)
	params := DefaultParams().WithBlur(1.5)
	params.Parallel = false
	seq, err := NewMatcher(params).Match(context.Background(), pieces)
	require.NoError(t, err)

	assert.Equal(t, seq.Candidates, par.Candidates)
	for i := range pieces {
		for s := range pieces[i].Sides {
			best, _ := seq.Candidates[i][s].Best()
			ref := SideRef{Piece: i, Side: s}
			assert.Equal(t, seq.Difference(ref, best.SideRef), best.Difference)
		}
	}
}

func TestMatch_Errors(t *testing.T) {
	pieces := twoFittingPieces()
	pieces[1].Image = raster.New(10, 10, 1)
	_, err := NewMatcher(DefaultParams()).Match(context.Background(), pieces)
	assert.Error(t, err, "channel mismatch")

	pieces = twoFittingPieces()
	pieces[0].Sides[1] = append(pieces[0].Sides[1], geometry.Pt(10, 10))
	_, err = NewMatcher(DefaultParams()).Match(context.Background(), pieces)
	assert.Error(t, err, "pixel outside the crop")

	pieces = twoFittingPieces()
	pieces[1].Sides[3] = nil
	_, err = NewMatcher(DefaultParams()).Match(context.Background(), pieces)
	assert.Error(t, err, "empty side")
}

func TestMatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMatcher(DefaultParams()).Match(ctx, twoFittingPieces())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKnownAnswers_Symmetric(t *testing.T) {
	answers, ok := KnownAnswers("00_photo_six_parts_downscaled_x4")
	require.True(t, ok)
	assert.Len(t, answers, 14)
	for from, to := range answers {
		assert.Equal(t, from, answers[to], "%v -> %v", from, to)
	}

	_, ok = KnownAnswers("missing")
	assert.False(t, ok)
}

func TestEvaluate(t *testing.T) {
	res := &Result{Candidates: make([][]Candidate, 2)}
	res.Candidates[0] = make([]Candidate, 2)
	res.Candidates[1] = make([]Candidate, 2)
	res.Candidates[0][0].Offer(Match{SideRef: SideRef{1, 1}, Difference: 3})
	res.Candidates[1][1].Offer(Match{SideRef: SideRef{0, 1}, Difference: 4})

	answers := Answers{
		{0, 0}: {1, 1},
		{1, 1}: {0, 0},
		{0, 1}: {1, 0},
	}
	ev := Evaluate(res, answers)
	assert.Equal(t, 2, ev.Correct, "obj0-side0 and the unmatched border side obj1-side0")
	assert.Equal(t, 2, ev.Incorrect)
	assert.Equal(t, 1, ev.Unlabeled)
	require.Len(t, ev.Mismatches, 2)
	assert.Equal(t, SideRef{0, 1}, ev.Mismatches[0].Side)
	assert.True(t, ev.Mismatches[0].Labeled)
	assert.False(t, ev.Mismatches[0].Found.Matched())
	assert.Equal(t, SideRef{1, 1}, ev.Mismatches[1].Side)
}

func TestEvaluate_MatchedBorderSideIsIncorrect(t *testing.T) {
	res := &Result{Candidates: [][]Candidate{make([]Candidate, 1), make([]Candidate, 1)}}
	res.Candidates[0][0].Offer(Match{SideRef: SideRef{1, 0}, Difference: 1})
	res.Candidates[1][0].Offer(Match{SideRef: SideRef{0, 0}, Difference: 1})

	ev := Evaluate(res, Answers{{0, 0}: {1, 0}})
	assert.Equal(t, 1, ev.Correct)
	assert.Equal(t, 1, ev.Incorrect)
	assert.Equal(t, 1, ev.Unlabeled)
	require.Len(t, ev.Mismatches, 1)
	assert.Equal(t, SideRef{1, 0}, ev.Mismatches[0].Side)
	assert.False(t, ev.Mismatches[0].Labeled)
}
