package state

import "fmt"

// Point is a standalone timed sample. It owns its values and stays valid
// after the stroke it came from is released.
type Point struct {
	X int   `json:"x"`
	Y int   `json:"y"`
	T int64 `json:"t"` // microseconds since the unix epoch
	I int   `json:"i"` // index within the owning stroke
}

// Pos returns the (x, y) coordinates of the point.
func (p Point) Pos() (int, int) { return p.X, p.Y }

func (p Point) String() string {
	return fmt.Sprintf("Point(%d, %d, %d, %d)", p.X, p.Y, p.T, p.I)
}

// Sample is the (x, y, t) triple yielded when iterating a stroke.
type Sample struct {
	X, Y int
	T    int64
}

// PointRef is a view into a stroke's point storage. It does not own the
// point and must not outlive the stroke; once the stroke is released Load
// returns ErrReleased.
type PointRef struct {
	s *Stroke
	i int
}

// Index returns the index of the referenced point within its stroke.
func (r PointRef) Index() int { return r.i }

// Load copies the referenced point into a standalone Point.
func (r PointRef) Load() (Point, error) {
	if r.s == nil || r.s.released {
		return Point{}, ErrReleased
	}
	return r.s.points[r.i], nil
}

// BBox is the tight bounding box of a stroke's points. The zero-point box
// holds sentinel extremes so that the first Extend sets it exactly.
type BBox struct {
	MinX, MinY, MaxX, MaxY int
}

// Empty reports whether no point has been folded into the box.
func (b BBox) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Extend grows the box to contain (x, y).
func (b *BBox) Extend(x, y int) {
	b.MinX = min(b.MinX, x)
	b.MinY = min(b.MinY, y)
	b.MaxX = max(b.MaxX, x)
	b.MaxY = max(b.MaxY, y)
}

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	return BBox{
		MinX: min(b.MinX, o.MinX),
		MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// Width and Height are zero for an empty box.
func (b BBox) Width() int {
	if b.Empty() {
		return 0
	}
	return b.MaxX - b.MinX
}

func (b BBox) Height() int {
	if b.Empty() {
		return 0
	}
	return b.MaxY - b.MinY
}

func (b BBox) String() string {
	if b.Empty() {
		return "(empty)"
	}
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}
