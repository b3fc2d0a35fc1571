// Package geometry provides basic geometric types used throughout the application.
package geometry

// PointInt represents a 2D point with integer pixel coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for PointInt{X: x, Y: y}.
func Pt(x, y int) PointInt {
	return PointInt{X: x, Y: y}
}

// Add returns the sum of two points.
func (p PointInt) Add(other PointInt) PointInt {
	return PointInt{X: p.X + other.X, Y: p.Y + other.Y}
}

// BBox is an inclusive integer rectangle over pixel coordinates.
// The zero value is empty: it contains no pixel until IncludePixel is called.
type BBox struct {
	Min PointInt `json:"min"`
	Max PointInt `json:"max"`

	filled bool
}

// EmptyBBox returns a box that contains no pixel yet.
func EmptyBBox() BBox {
	return BBox{}
}

// IsEmpty reports whether no pixel has been included.
func (b BBox) IsEmpty() bool {
	return !b.filled
}

// IncludePixel grows the box so that it contains (x, y).
func (b *BBox) IncludePixel(x, y int) {
	if !b.filled {
		b.Min = PointInt{X: x, Y: y}
		b.Max = PointInt{X: x, Y: y}
		b.filled = true
		return
	}
	b.Min.X = min(b.Min.X, x)
	b.Min.Y = min(b.Min.Y, y)
	b.Max.X = max(b.Max.X, x)
	b.Max.Y = max(b.Max.Y, y)
}

// Width returns the number of columns covered, 0 when empty.
func (b BBox) Width() int {
	if !b.filled {
		return 0
	}
	return b.Max.X - b.Min.X + 1
}

// Height returns the number of rows covered, 0 when empty.
func (b BBox) Height() int {
	if !b.filled {
		return 0
	}
	return b.Max.Y - b.Min.Y + 1
}

// SignedArea returns the shoelace area of a closed polygon.
// With y pointing down, a clockwise traversal on screen gives a positive value.
func SignedArea(points []PointInt) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return float64(sum) / 2
}

// Reverse reverses a point sequence in place.
func Reverse(points []PointInt) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

// Reversed returns a reversed copy of a point sequence.
func Reversed(points []PointInt) []PointInt {
	out := make([]PointInt, len(points))
	copy(out, points)
	Reverse(out)
	return out
}
