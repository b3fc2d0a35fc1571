// Package pipeline runs the whole photo-to-matches chain: thresholding,
// mask cleanup, segmentation, boundary decomposition and side matching.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"puzzle-matcher/internal/boundary"
	"puzzle-matcher/internal/debugio"
	"puzzle-matcher/internal/logger"
	"puzzle-matcher/internal/match"
	"puzzle-matcher/internal/morphology"
	"puzzle-matcher/internal/raster"
	"puzzle-matcher/internal/render"
	"puzzle-matcher/internal/segment"
	"puzzle-matcher/internal/stats"
	"puzzle-matcher/internal/threshold"
)

// ErrPieceCount is returned when the photo does not contain an allowed number of pieces.
var ErrPieceCount = errors.New("unexpected number of pieces")

// Params configures a run.
type Params struct {
	Threshold threshold.Params
	Cleanup   morphology.CleanupParams
	Match     match.Params

	// AllowedPieceCounts lists the accepted component counts; empty accepts any.
	AllowedPieceCounts []int
	// Name identifies the photo; it selects the known answers used for evaluation.
	Name string
}

// DefaultParams returns the settings used by the CLI.
func DefaultParams() Params {
	return Params{
		Threshold:          threshold.DefaultParams(),
		Cleanup:            morphology.DefaultCleanupParams(),
		Match:              match.DefaultParams(),
		AllowedPieceCounts: []int{6, 8},
	}
}

// WithName returns a copy of params for the named photo.
func (p Params) WithName(name string) Params {
	p.Name = name
	return p
}

// WithAllowedPieceCounts returns a copy of params accepting only the given counts.
func (p Params) WithAllowedPieceCounts(counts ...int) Params {
	p.AllowedPieceCounts = counts
	return p
}

// Result is everything a run produced.
type Result struct {
	Foreground *threshold.Result // nil when the run started from a mask
	Mask       *raster.Image     // cleaned foreground mask
	Components []segment.Component
	Pieces     []*boundary.Piece // Pieces[i] belongs to Components[i]
	Matches    *match.Result
	Evaluation *match.Evaluation // nil without known answers for Params.Name
}

// Pipeline runs the processing chain with a fixed decomposer and debug sink.
type Pipeline struct {
	params     Params
	decomposer boundary.Decomposer
	dump       *debugio.Dumper
}

// New creates a Pipeline. dump may be nil.
func New(params Params, decomposer boundary.Decomposer, dump *debugio.Dumper) *Pipeline {
	return &Pipeline{params: params, decomposer: decomposer, dump: dump}
}

// Run processes a photo of pieces on a dark background.
func (p *Pipeline) Run(ctx context.Context, img *raster.Image) (*Result, error) {
	log := logger.Entry(ctx)
	start := time.Now()

	if err := p.dump.Raster("00_input.jpg", img); err != nil {
		return nil, err
	}

	fg, err := threshold.Foreground(img, p.params.Threshold)
	if err != nil {
		return nil, err
	}
	background := fg.Mask.Count(0)
	log.WithField("elapsed", time.Since(start)).Infof("border intensities: %s", stats.SummaryStatsFloat(fg.Border, 1))
	log.Infof("background threshold: %.1f, background: %s",
		fg.Threshold, stats.ToPercent(background, fg.Mask.Width*fg.Mask.Height))

	if err := p.dump.Raster("01_grayscale.jpg", fg.Gray); err != nil {
		return nil, err
	}
	if err := p.dump.Raster("02_foreground_mask.png", fg.Mask); err != nil {
		return nil, err
	}

	res, err := p.FromMask(ctx, img, fg.Mask)
	if err != nil {
		return nil, err
	}
	res.Foreground = fg
	log.WithField("elapsed", time.Since(start)).Info("photo processed")
	return res, nil
}

// FromMask runs every stage after thresholding on an existing foreground mask.
func (p *Pipeline) FromMask(ctx context.Context, img, mask *raster.Image) (*Result, error) {
	log := logger.Entry(ctx)

	start := time.Now()
	cleaned, stages, err := morphology.Clean(mask, p.params.Cleanup)
	if err != nil {
		return nil, errors.Wrap(err, "clean mask")
	}
	log.WithField("elapsed", time.Since(start)).Debug("mask cleaned")
	for i, st := range stages {
		if err := p.dump.Raster(fmt.Sprintf("03_%d_%s.png", i, st.Name), st.Mask); err != nil {
			return nil, err
		}
	}

	start = time.Now()
	comps, err := segment.SplitObjects(img, cleaned)
	if err != nil {
		return nil, errors.Wrap(err, "split objects")
	}
	log.WithField("elapsed", time.Since(start)).Infof("found %d objects", len(comps))
	if err := p.checkCount(len(comps)); err != nil {
		return nil, err
	}
	if err := p.dump.Raster("04_objects.jpg", render.Labels(segment.LabelMap(img.Width, img.Height, comps))); err != nil {
		return nil, err
	}

	start = time.Now()
	pieces, err := p.decompose(ctx, comps)
	if err != nil {
		return nil, err
	}
	log.WithField("elapsed", time.Since(start)).Debug("boundaries decomposed")

	start = time.Now()
	inputs := make([]match.Piece, len(comps))
	for i, c := range comps {
		inputs[i] = match.Piece{Image: c.Image, Sides: pieces[i].Sides}
	}
	matches, err := match.NewMatcher(p.params.Match).Match(ctx, inputs)
	if err != nil {
		return nil, errors.Wrap(err, "match sides")
	}
	log.WithField("elapsed", time.Since(start)).Info("sides matched")

	res := &Result{
		Mask:       cleaned,
		Components: comps,
		Pieces:     pieces,
		Matches:    matches,
	}
	if answers, ok := match.KnownAnswers(p.params.Name); ok {
		ev := match.Evaluate(matches, answers)
		res.Evaluation = &ev
		log.Infof("correct matches: %d, incorrect matches: %d", ev.Correct, ev.Incorrect)
	}

	if err := p.dumpMatches(img, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) checkCount(n int) error {
	if len(p.params.AllowedPieceCounts) == 0 {
		return nil
	}
	for _, c := range p.params.AllowedPieceCounts {
		if c == n {
			return nil
		}
	}
	return errors.Wrapf(ErrPieceCount, "found %d, want one of %v", n, p.params.AllowedPieceCounts)
}

// decompose splits every component boundary into sides, one goroutine per CPU.
func (p *Pipeline) decompose(ctx context.Context, comps []segment.Component) ([]*boundary.Piece, error) {
	pieces := make([]*boundary.Piece, len(comps))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range comps {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			piece, err := boundary.Decompose(p.decomposer, c.Mask)
			if err != nil {
				return errors.Wrapf(err, "object %d", i)
			}
			pieces[i] = piece
			return p.dumpPiece(i, c, piece)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pieces, nil
}

func (p *Pipeline) dumpPiece(i int, c segment.Component, piece *boundary.Piece) error {
	if !p.dump.Enabled() {
		return nil
	}
	d := p.dump.Sub(fmt.Sprintf("objects/object%d", i))
	if err := d.Raster("01_image.jpg", c.Image); err != nil {
		return err
	}
	if err := d.Raster("02_mask.png", c.Mask); err != nil {
		return err
	}
	if err := d.Raster("03_contour.png", boundary.ContourMask(c.Mask)); err != nil {
		return err
	}
	corners, err := render.Corners(c.Mask, piece.Corners)
	if err != nil {
		return err
	}
	if err := d.Raster("04_corners.png", corners); err != nil {
		return err
	}
	return d.Raster("05_sides.png", render.Sides(c.Mask.Width, c.Mask.Height, piece.Sides))
}

func (p *Pipeline) dumpMatches(img *raster.Image, res *Result) error {
	if !p.dump.Enabled() {
		return nil
	}
	placed := make([]render.PlacedPiece, len(res.Components))
	for i, c := range res.Components {
		placed[i] = render.PlacedPiece{Offset: c.Offset, Sides: res.Pieces[i].Sides}
	}
	out, err := render.MatchedSides(img, placed, res.Matches)
	if err != nil {
		return err
	}
	return p.dump.Raster("05_matched_sides.jpg", out)
}
