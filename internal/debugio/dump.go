// Package debugio writes intermediate images of a run for visual inspection.
package debugio

import (
	"image"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"puzzle-matcher/internal/raster"
)

// Dumper writes images below a root directory. A nil *Dumper discards everything.
type Dumper struct {
	fs   afero.Fs
	root string
}

// NewDumper returns a Dumper rooted at dir on fs, or nil when dir is empty.
func NewDumper(fs afero.Fs, dir string) *Dumper {
	if dir == "" {
		return nil
	}
	return &Dumper{fs: fs, root: dir}
}

// Enabled reports whether dumps are written.
func (d *Dumper) Enabled() bool {
	return d != nil
}

// Sub returns a Dumper rooted at a subdirectory.
func (d *Dumper) Sub(dir string) *Dumper {
	if d == nil {
		return nil
	}
	return &Dumper{fs: d.fs, root: path.Join(d.root, dir)}
}

// Reset removes everything below the root.
func (d *Dumper) Reset() error {
	if d == nil {
		return nil
	}
	return errors.Wrap(d.fs.RemoveAll(d.root), "reset debug dir")
}

// Raster writes img; the extension of name (.png, .jpg) selects the encoder.
func (d *Dumper) Raster(name string, img *raster.Image) error {
	if d == nil {
		return nil
	}
	return d.Image(name, img.ToImage())
}

// Image writes an image.Image; the extension of name selects the encoder.
func (d *Dumper) Image(name string, img image.Image) error {
	if d == nil {
		return nil
	}
	p := path.Join(d.root, name)
	if err := d.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return errors.Wrapf(err, "mkdir for %s", p)
	}
	f, err := d.fs.Create(p)
	if err != nil {
		return errors.Wrapf(err, "create %s", p)
	}
	defer f.Close()

	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case ".png":
		err = png.Encode(f, img)
	default:
		err = errors.Errorf("unsupported extension %q", ext)
	}
	return errors.Wrapf(err, "encode %s", p)
}
