package state

import (
	"iter"
	"math"
)

// Omit marks an absent Slice bound, the way an empty slot in a[::2] would.
const Omit = math.MinInt

// initialPoints is the starting capacity of a stroke's storage.
const initialPoints = 40

// Stroke is an append-only sequence of timed points produced by one pen
// gesture. It exclusively owns its point storage.
type Stroke struct {
	points   []Point
	bbox     BBox
	owner    *Canvas
	released bool
}

func emptyBBox() BBox {
	return BBox{MinX: math.MaxInt, MinY: math.MaxInt, MaxX: math.MinInt, MaxY: math.MinInt}
}

// NewStroke creates an empty stroke with a sentinel bounding box.
func NewStroke() *Stroke {
	return &Stroke{
		points: make([]Point, 0, initialPoints),
		bbox:   emptyBBox(),
	}
}

// newStrokeFromSamples builds a fully formed stroke, scanning the samples
// once for the bounding box.
func newStrokeFromSamples(samples []Sample) *Stroke {
	s := &Stroke{
		points: make([]Point, 0, max(len(samples), initialPoints)),
		bbox:   emptyBBox(),
	}
	for _, smp := range samples {
		s.push(smp.X, smp.Y, smp.T)
	}
	return s
}

// Append adds a point stamped with the current time.
func (s *Stroke) Append(x, y int) {
	s.AppendTimed(x, y, now())
}

// AppendTimed adds a point with an explicit timestamp. Its index is the
// current length of the stroke. The owning canvas, if any, becomes dirty.
// Appending to a released stroke does nothing.
func (s *Stroke) AppendTimed(x, y int, t int64) {
	if s.released {
		return
	}
	s.push(x, y, t)
	if s.owner != nil {
		s.owner.dirty = true
	}
}

func (s *Stroke) push(x, y int, t int64) {
	s.points = append(s.points, Point{X: x, Y: y, T: t, I: len(s.points)})
	s.bbox.Extend(x, y)
}

// Len returns the number of points in the stroke.
func (s *Stroke) Len() int { return len(s.points) }

// BBox returns the tight bounding box of all points appended so far.
func (s *Stroke) BBox() BBox { return s.bbox }

func (s *Stroke) index(i int) (int, error) {
	n := len(s.points)
	k := i
	if k < 0 {
		k += n
	}
	if k < 0 || k >= n {
		return 0, &IndexError{Index: i, Len: n}
	}
	return k, nil
}

// Get returns a standalone copy of the i-th point. Negative indices count
// from the end.
func (s *Stroke) Get(i int) (Point, error) {
	k, err := s.index(i)
	if err != nil {
		return Point{}, err
	}
	return s.points[k], nil
}

// At returns a view of the i-th point without copying it out of the
// stroke's storage.
func (s *Stroke) At(i int) (PointRef, error) {
	k, err := s.index(i)
	if err != nil {
		return PointRef{}, err
	}
	return PointRef{s: s, i: k}, nil
}

// Points iterates (index, point) pairs. Each call returns a fresh sequence.
func (s *Stroke) Points() iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		for i := 0; i < len(s.points); i++ {
			if !yield(i, s.points[i]) {
				return
			}
		}
	}
}

// Samples iterates the (x, y, t) triples in append order.
func (s *Stroke) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for i := 0; i < len(s.points); i++ {
			p := s.points[i]
			if !yield(Sample{X: p.X, Y: p.Y, T: p.T}) {
				return
			}
		}
	}
}

// Slice selects points with half-open start:stop:step semantics, negative
// indices counting from the end. Pass Omit for an absent start or stop.
func (s *Stroke) Slice(start, stop, step int) (iter.Seq[Point], error) {
	if step == 0 {
		return nil, ErrStep
	}
	lo, hi := sliceIndices(len(s.points), start, stop, step)
	return func(yield func(Point) bool) {
		if step > 0 {
			for i := lo; i < hi && i < len(s.points); i += step {
				if !yield(s.points[i]) {
					return
				}
			}
			return
		}
		for i := lo; i > hi && i < len(s.points); i += step {
			if !yield(s.points[i]) {
				return
			}
		}
	}, nil
}

// sliceIndices clamps start and stop to n the way a slice object does.
func sliceIndices(n, start, stop, step int) (int, int) {
	clamp := func(v, dflt, lower, upper int) int {
		if v == Omit {
			return dflt
		}
		if v < 0 {
			v += n
			if v < lower {
				v = lower
			}
			return v
		}
		return min(v, upper)
	}
	if step > 0 {
		return clamp(start, 0, 0, n), clamp(stop, n, 0, n)
	}
	return clamp(start, n-1, -1, n-1), clamp(stop, -1, -1, n-1)
}

// Release drops the point storage. Every PointRef taken from the stroke
// becomes invalid.
func (s *Stroke) Release() {
	s.points = nil
	s.bbox = emptyBBox()
	s.owner = nil
	s.released = true
}

// Released reports whether Release has been called.
func (s *Stroke) Released() bool { return s.released }
