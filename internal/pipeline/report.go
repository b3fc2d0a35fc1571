package pipeline

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"

	"puzzle-matcher/internal/match"
)

// WriteReport prints one line per matched side:
//
//	obj0-side1 -> obj3-side3 with difference=12.5 (second best: 40)
//
// followed by the evaluation counts when ev is not nil. Unmatched sides are skipped.
func WriteReport(w io.Writer, res *match.Result, ev *match.Evaluation) error {
	for p, sides := range res.Candidates {
		for s, c := range sides {
			best, ok := c.Best()
			if !ok {
				continue
			}
			_, second := c.Scores()
			ref := match.SideRef{Piece: p, Side: s}
			if _, err := fmt.Fprintf(w, "%s -> %s with difference=%g (second best: %g)\n",
				ref, best.SideRef, best.Difference, second); err != nil {
				return err
			}
		}
	}
	if ev == nil {
		return nil
	}
	for _, m := range ev.Mismatches {
		best, second := m.Found.Scores()
		expected := "none"
		if m.Labeled {
			expected = m.Expected.String()
		}
		found := "none"
		if b, ok := m.Found.Best(); ok {
			found = b.SideRef.String()
		}
		if _, err := fmt.Fprintf(w, "EXPECTED: %s -> %s, found %s with difference=%g (second best: %g)\n",
			m.Side, expected, found, best, second); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "correct matches: %d\nincorrect matches: %d\n", ev.Correct, ev.Incorrect)
	return err
}

// WriteScores prints the full difference table, rows are target sides and
// columns candidate sides in obj/side order.
func WriteScores(w io.Writer, res *match.Result) error {
	if res.Differences == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "%.1f\n", mat.Formatted(res.Differences, mat.Squeeze()))
	return err
}
