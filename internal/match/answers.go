package match

// Answers maps a side to the side it is known to touch in the assembled puzzle.
// Sides on the puzzle's outer border have no entry.
type Answers map[SideRef]SideRef

// knownAnswers holds hand-labeled neighbors for the bundled sample photos.
var knownAnswers = map[string]Answers{
	"00_photo_six_parts_downscaled_x4": {
		{0, 0}: {1, 2},
		{0, 1}: {3, 3},
		{1, 0}: {2, 3},
		{1, 1}: {5, 3},
		{1, 2}: {0, 0},
		{2, 2}: {4, 3},
		{2, 3}: {1, 0},
		{3, 0}: {5, 2},
		{3, 3}: {0, 1},
		{4, 2}: {5, 0},
		{4, 3}: {2, 2},
		{5, 0}: {4, 2},
		{5, 2}: {3, 0},
		{5, 3}: {1, 1},
	},
}

// KnownAnswers returns the labeled neighbors for a sample photo name
// (file name without extension).
func KnownAnswers(name string) (Answers, bool) {
	a, ok := knownAnswers[name]
	return a, ok
}

// Mismatch describes a side whose best match disagrees with the answers.
type Mismatch struct {
	Side     SideRef
	Expected SideRef // meaningful only when Labeled
	Labeled  bool    // false for outer border sides, which should stay unmatched
	Found    Candidate
}

// Evaluation summarizes a Result against Answers.
type Evaluation struct {
	Correct    int
	Incorrect  int
	Unlabeled  int // sides without an expected neighbor, included in the counts above
	Mismatches []Mismatch
}

// Evaluate scores every side. A labeled side is correct when its best match is
// exactly the expected side. A side missing from the answers lies on the
// puzzle's outer border and is correct only when it found no match at all.
func Evaluate(res *Result, answers Answers) Evaluation {
	var ev Evaluation
	for p, sides := range res.Candidates {
		for s, c := range sides {
			ref := SideRef{Piece: p, Side: s}
			expected, labeled := answers[ref]
			if !labeled {
				ev.Unlabeled++
			}
			best, matched := c.Best()
			if (labeled && matched && best.SideRef == expected) || (!labeled && !matched) {
				ev.Correct++
				continue
			}
			ev.Incorrect++
			ev.Mismatches = append(ev.Mismatches, Mismatch{Side: ref, Expected: expected, Labeled: labeled, Found: c})
		}
	}
	return ev
}
