// Package collector holds the session being edited: an ordered set of
// canvases that is saved to and loaded from a stroke archive as a whole.
package collector

import (
	"StrokeCollector/internal/state"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is the ordered collection of canvases being edited together.
// It is not safe for concurrent use: input handling must serialize appends
// and nothing may mutate the session while Save runs.
type Session struct {
	id       string
	canvases []*state.Canvas
	log      *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New creates a session holding one empty canvas.
func New(opts ...Option) *Session {
	s := &Session{
		id:  uuid.NewString(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.canvases = []*state.Canvas{state.NewCanvas()}
	return s
}

// ID identifies the session in logs and archive comments. Loading an
// archive adopts the ID stored in it.
func (s *Session) ID() string { return s.id }

// Canvases returns the canvases in order.
func (s *Session) Canvases() []*state.Canvas {
	out := make([]*state.Canvas, len(s.canvases))
	copy(out, s.canvases)
	return out
}

// Canvas returns the i-th canvas.
func (s *Session) Canvas(i int) (*state.Canvas, error) {
	if i < 0 || i >= len(s.canvases) {
		return nil, &state.IndexError{Index: i, Len: len(s.canvases)}
	}
	return s.canvases[i], nil
}

// AddCanvas appends an empty canvas and returns it.
func (s *Session) AddCanvas() *state.Canvas {
	c := state.NewCanvas()
	s.canvases = append(s.canvases, c)
	return c
}

// Len returns the number of canvases.
func (s *Session) Len() int { return len(s.canvases) }

// IsDirty reports whether any canvas has unsaved changes.
func (s *Session) IsDirty() bool {
	for _, c := range s.canvases {
		if c.IsDirty() {
			return true
		}
	}
	return false
}

// Reset discards every canvas and starts over with one empty canvas and a
// new ID.
func (s *Session) Reset() {
	s.release()
	s.id = uuid.NewString()
	s.canvases = []*state.Canvas{state.NewCanvas()}
	s.log.Info("session reset", zap.String("session", s.id))
}

// Strokes returns the strokes of every canvas, canvas by canvas.
func (s *Session) Strokes() []*state.Stroke {
	var out []*state.Stroke
	for _, c := range s.canvases {
		out = append(out, c.Strokes()...)
	}
	return out
}

// SetStrokes replaces the session content with a single canvas holding
// strokes. The result is clean.
func (s *Session) SetStrokes(strokes []*state.Stroke) {
	c := state.NewCanvas()
	c.SetStrokes(strokes)
	s.release()
	s.canvases = []*state.Canvas{c}
}

// Counts returns the number of strokes on each canvas.
func (s *Session) Counts() []int {
	out := make([]int, len(s.canvases))
	for i, c := range s.canvases {
		out[i] = c.Len()
	}
	return out
}

func (s *Session) release() {
	for _, c := range s.canvases {
		c.Release()
	}
	s.canvases = nil
}

// replace swaps in a freshly loaded canvas set, releasing the old one.
func (s *Session) replace(canvases []*state.Canvas) {
	s.release()
	for _, c := range canvases {
		c.MarkClean()
	}
	s.canvases = canvases
}
