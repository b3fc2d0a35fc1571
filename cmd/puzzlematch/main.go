// Command puzzlematch finds matching sides of jigsaw pieces photographed on a
// dark background and prints, for every side, its best counterpart.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"puzzle-matcher/internal/boundary"
	"puzzle-matcher/internal/debugio"
	"puzzle-matcher/internal/logger"
	"puzzle-matcher/internal/pipeline"
	"puzzle-matcher/internal/raster"
	"puzzle-matcher/internal/version"
)

type options struct {
	imagePath   string
	debugDir    string
	strength    int
	finish      int
	blur        float64
	answers     string
	verbose     bool
	scores      bool
	showVersion bool
}

// parseFlags reads the command line; tuning flags default to the pipeline defaults.
func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	defaults := pipeline.DefaultParams()
	o := &options{}
	fs.StringVar(&o.imagePath, "image", "", "Path to the photo (JPEG, PNG, TIFF or BMP)")
	fs.StringVar(&o.debugDir, "debug", os.Getenv("PUZZLEMATCH_DEBUG_DIR"), "Directory for intermediate images, empty disables dumps")
	fs.IntVar(&o.strength, "strength", defaults.Cleanup.Strength, "Morphology radius for mask cleanup")
	fs.IntVar(&o.finish, "finish-strength", defaults.Cleanup.FinishStrength, "Final erosion radius, 0 disables it")
	fs.Float64Var(&o.blur, "blur", defaults.Match.BlurStrength, "Gaussian sigma applied to side colors")
	fs.StringVar(&o.answers, "answers", "", "Known answer table to evaluate against (defaults to the image name)")
	fs.BoolVar(&o.verbose, "verbose", false, "Log per-stage details")
	fs.BoolVar(&o.scores, "scores", false, "Print the full side difference table")
	fs.BoolVar(&o.showVersion, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// name is the answer table key and debug subdirectory: -answers, or the file
// name without extension.
func (o *options) name() string {
	if o.answers != "" {
		return o.answers
	}
	return strings.TrimSuffix(filepath.Base(o.imagePath), filepath.Ext(o.imagePath))
}

func (o *options) params() pipeline.Params {
	params := pipeline.DefaultParams().WithName(o.name())
	params.Cleanup = params.Cleanup.WithStrength(o.strength, o.finish)
	params.Match = params.Match.WithBlur(o.blur)
	return params
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	if opts.showVersion {
		fmt.Println(version.String())
		return
	}

	if opts.imagePath == "" {
		fmt.Println("Usage: puzzlematch -image <path> [-debug dir] [-strength 6] [-finish-strength 2] [-blur 2] [-answers name] [-verbose] [-scores]")
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logLevel(opts.verbose))

	var dump *debugio.Dumper
	if opts.debugDir != "" {
		dump = debugio.NewDumper(afero.NewOsFs(), filepath.Join(opts.debugDir, opts.name()))
	}

	if err := run(log, opts.imagePath, opts.params(), dump, opts.scores); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func logLevel(verbose bool) logrus.Level {
	if verbose {
		return logrus.DebugLevel
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("PUZZLEMATCH_LOG_LEVEL")); err == nil {
		return lvl
	}
	return logrus.InfoLevel
}

func run(log *logrus.Logger, path string, params pipeline.Params, dump *debugio.Dumper, scores bool) error {
	ctx, entry := logger.WithRun(context.Background(), log)

	img, format, err := loadImage(path)
	if err != nil {
		return err
	}
	entry.WithField("image", path).Infof("loaded %s photo %dx%d", format, img.Width, img.Height)

	if err := dump.Reset(); err != nil {
		return err
	}

	res, err := pipeline.New(params, boundary.NewOpenCV(), dump).Run(ctx, img)
	if err != nil {
		return err
	}

	if err := pipeline.WriteReport(os.Stdout, res.Matches, res.Evaluation); err != nil {
		return err
	}
	if scores {
		return pipeline.WriteScores(os.Stdout, res.Matches)
	}
	return nil
}

func loadImage(path string) (*raster.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "open image")
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", errors.Wrapf(err, "decode image %q", path)
	}
	return raster.FromImage(img), format, nil
}
