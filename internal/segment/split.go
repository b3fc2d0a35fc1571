// Package segment splits a foreground mask into 8-connected pieces and crops
// every piece out of the source photo.
package segment

import (
	"sort"

	"github.com/pkg/errors"

	"puzzle-matcher/internal/raster"
	"puzzle-matcher/pkg/geometry"
)

// ErrPrecondition marks inputs SplitObjects refuses to process.
var ErrPrecondition = errors.New("segmentation precondition violated")

const object = 255

// Component is one connected foreground region.
type Component struct {
	Offset     geometry.PointInt // top-left of Box in the source image
	Box        geometry.BBox     // inclusive bounds in source coordinates
	Image      *raster.Image     // source pixels inside Box
	Mask       *raster.Image     // 255 exactly where the pixel belongs to this component
	PixelCount int

	root int
}

// SplitObjects labels the 255 pixels of mask with 8-connectivity and returns
// the components ordered by the top-left corner of their bounding box, row first.
// A mask with no foreground yields an empty slice.
func SplitObjects(img, mask *raster.Image) ([]Component, error) {
	if !img.SameSize(mask) {
		return nil, errors.Wrapf(ErrPrecondition, "image %dx%d and mask %dx%d differ in size",
			img.Width, img.Height, mask.Width, mask.Height)
	}
	if mask.Channels != 1 {
		return nil, errors.Wrapf(ErrPrecondition, "mask has %d channels", mask.Channels)
	}

	w, h := mask.Width, mask.Height
	n := w * h
	ds := newDisjointSet(n)
	isObject := func(x, y int) bool { return mask.At(y, x) == object }

	// Every object pixel is united with its already-visited neighbours in raster
	// order (left, up-left, up, up-right); transitivity covers the other four.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !isObject(x, y) {
				continue
			}
			id := y*w + x
			if x > 0 && isObject(x-1, y) {
				ds.union(id, id-1)
			}
			if y > 0 && isObject(x, y-1) {
				ds.union(id, id-w)
			}
			if x > 0 && y > 0 && isObject(x-1, y-1) {
				ds.union(id, id-w-1)
			}
			if x+1 < w && y > 0 && isObject(x+1, y-1) {
				ds.union(id, id-w+1)
			}
		}
	}

	boxes := make(map[int]*geometry.BBox)
	counts := make(map[int]int)
	rootOf := make([]int, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			id := y*w + x
			rootOf[id] = -1
			if !isObject(x, y) {
				continue
			}
			r := ds.find(id)
			rootOf[id] = r
			box, ok := boxes[r]
			if !ok {
				box = &geometry.BBox{}
				boxes[r] = box
			}
			box.IncludePixel(x, y)
			counts[r]++
		}
	}

	roots := make([]int, 0, len(boxes))
	for r := range boxes {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool {
		a, b := boxes[roots[i]], boxes[roots[j]]
		if a.Min.Y != b.Min.Y {
			return a.Min.Y < b.Min.Y
		}
		if a.Min.X != b.Min.X {
			return a.Min.X < b.Min.X
		}
		return roots[i] < roots[j]
	})

	components := make([]Component, 0, len(roots))
	for _, r := range roots {
		box := *boxes[r]
		partMask := raster.NewMask(box.Width(), box.Height())
		for yy := 0; yy < box.Height(); yy++ {
			for xx := 0; xx < box.Width(); xx++ {
				if rootOf[(box.Min.Y+yy)*w+box.Min.X+xx] == r {
					partMask.Set(yy, xx, object)
				}
			}
		}
		components = append(components, Component{
			Offset:     box.Min,
			Box:        box,
			Image:      img.Crop(box),
			Mask:       partMask,
			PixelCount: counts[r],
			root:       r,
		})
	}
	return components, nil
}

// Labels is a per-pixel component index map, 0 for background and i+1 for
// components[i].
type Labels struct {
	Width  int
	Height int
	Values []int32
}

// At returns the label at row y, column x.
func (l Labels) At(y, x int) int32 {
	return l.Values[y*l.Width+x]
}

// LabelMap paints every component mask back into source coordinates.
func LabelMap(width, height int, components []Component) Labels {
	l := Labels{Width: width, Height: height, Values: make([]int32, width*height)}
	for i, c := range components {
		for yy := 0; yy < c.Mask.Height; yy++ {
			for xx := 0; xx < c.Mask.Width; xx++ {
				if c.Mask.At(yy, xx) == object {
					l.Values[(c.Offset.Y+yy)*width+c.Offset.X+xx] = int32(i + 1)
				}
			}
		}
	}
	return l
}
