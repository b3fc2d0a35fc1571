package match

import "fmt"

// SideRef addresses one side of one piece.
type SideRef struct {
	Piece int `json:"piece"`
	Side  int `json:"side"`
}

func (r SideRef) String() string {
	return fmt.Sprintf("obj%d-side%d", r.Piece, r.Side)
}

// Match is a counterpart side and its aggregated color difference.
type Match struct {
	SideRef
	Difference float64 `json:"difference"`
}

// Candidate tracks the best and second best match of one side while
// candidates stream in. The zero value is unmatched.
type Candidate struct {
	best   Match
	second Match
	seen   int // 0 unmatched, 1 best only, 2 best and second best
}

// Offer considers m. It becomes the best match when there is none yet or when
// its difference is <= the current best; the previous best is then demoted to
// second best. Worse candidates are dropped. Offer reports whether m was taken.
func (c *Candidate) Offer(m Match) bool {
	if c.seen > 0 && m.Difference > c.best.Difference {
		return false
	}
	if c.seen > 0 {
		c.second = c.best
		c.seen = 2
	} else {
		c.seen = 1
	}
	c.best = m
	return true
}

// Best returns the best match, if any.
func (c Candidate) Best() (Match, bool) {
	return c.best, c.seen > 0
}

// SecondBest returns the match that was best before the current one, if any.
func (c Candidate) SecondBest() (Match, bool) {
	return c.second, c.seen > 1
}

// Matched reports whether any candidate was taken.
func (c Candidate) Matched() bool {
	return c.seen > 0
}

// Scores returns the best and second best differences with -1 standing for
// "none", the convention used in the text report.
func (c Candidate) Scores() (best, second float64) {
	best, second = -1, -1
	if m, ok := c.Best(); ok {
		best = m.Difference
	}
	if m, ok := c.SecondBest(); ok {
		second = m.Difference
	}
	return best, second
}
