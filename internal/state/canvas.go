package state

// Canvas is an ordered collection of strokes plus unsaved-changes tracking.
// It exclusively owns its strokes.
type Canvas struct {
	strokes []*Stroke
	dirty   bool
}

// NewCanvas creates an empty, clean canvas.
func NewCanvas() *Canvas {
	return &Canvas{strokes: make([]*Stroke, 0)}
}

// Add appends a stroke and marks the canvas dirty. Later appends to the
// stroke also mark this canvas dirty. A stroke owned by another canvas is
// moved, not shared.
func (c *Canvas) Add(s *Stroke) {
	if prev := s.owner; prev != nil && prev != c {
		prev.detach(s)
	}
	s.owner = c
	c.strokes = append(c.strokes, s)
	c.dirty = true
}

func (c *Canvas) detach(s *Stroke) {
	for j, o := range c.strokes {
		if o == s {
			c.strokes = append(c.strokes[:j:j], c.strokes[j+1:]...)
			c.dirty = true
			return
		}
	}
}

// Begin starts a new stroke at (x, y), the way a pen-down does, and adds it
// to the canvas.
func (c *Canvas) Begin(x, y int) *Stroke {
	s := NewStroke()
	s.push(x, y, now())
	c.Add(s)
	return s
}

// Remove deletes and releases the j-th stroke.
func (c *Canvas) Remove(j int) error {
	if j < 0 || j >= len(c.strokes) {
		return &IndexError{Index: j, Len: len(c.strokes)}
	}
	s := c.strokes[j]
	c.strokes = append(c.strokes[:j], c.strokes[j+1:]...)
	s.Release()
	c.dirty = true
	return nil
}

// Clear releases every stroke. It never resets the dirty flag.
func (c *Canvas) Clear() {
	if len(c.strokes) == 0 {
		return
	}
	for _, s := range c.strokes {
		s.Release()
	}
	c.strokes = make([]*Stroke, 0)
	c.dirty = true
}

// Strokes returns the strokes in order. The slice is a copy; the strokes
// are still owned by the canvas.
func (c *Canvas) Strokes() []*Stroke {
	out := make([]*Stroke, len(c.strokes))
	copy(out, c.strokes)
	return out
}

// Stroke returns the j-th stroke.
func (c *Canvas) Stroke(j int) (*Stroke, error) {
	if j < 0 || j >= len(c.strokes) {
		return nil, &IndexError{Index: j, Len: len(c.strokes)}
	}
	return c.strokes[j], nil
}

// Last returns the most recently added stroke, or nil.
func (c *Canvas) Last() *Stroke {
	if len(c.strokes) == 0 {
		return nil
	}
	return c.strokes[len(c.strokes)-1]
}

// Len returns the number of strokes.
func (c *Canvas) Len() int { return len(c.strokes) }

// SetStrokes replaces the content with strokes and marks the canvas clean:
// this is the entry point for content that was just loaded from storage.
func (c *Canvas) SetStrokes(strokes []*Stroke) {
	keep := make(map[*Stroke]struct{}, len(strokes))
	for _, s := range strokes {
		keep[s] = struct{}{}
	}
	old := c.strokes
	c.strokes = make([]*Stroke, 0, len(strokes))
	for _, s := range old {
		if _, ok := keep[s]; !ok {
			s.Release()
		}
	}
	for _, s := range strokes {
		c.Add(s)
	}
	c.dirty = false
}

// IsDirty reports whether the canvas has changes not yet saved.
func (c *Canvas) IsDirty() bool { return c.dirty }

// MarkClean records that the current content is in durable storage.
func (c *Canvas) MarkClean() { c.dirty = false }

// BBox returns the union of the bounding boxes of all strokes.
func (c *Canvas) BBox() BBox {
	b := emptyBBox()
	for _, s := range c.strokes {
		b = b.Union(s.bbox)
	}
	return b
}

// Release releases all strokes without marking the canvas dirty. It is
// used when the whole canvas is being discarded.
func (c *Canvas) Release() {
	for _, s := range c.strokes {
		s.Release()
	}
	c.strokes = nil
}
