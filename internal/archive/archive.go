// Package archive maps a session's strokes to a flat set of named stroke
// files inside a single container, either a zip file or a directory, and
// back again.
package archive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"StrokeCollector/internal/state"

	"go.uber.org/zap"
)

// Format selects the container kind.
type Format int

const (
	// Zip stores members in a single deflated .srz file.
	Zip Format = iota
	// Dir stores members as plain files in a directory.
	Dir
)

func (f Format) String() string {
	switch f {
	case Zip:
		return "zip"
	case Dir:
		return "dir"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFor picks the container kind for a destination path: paths ending
// in .srz are zipped, anything else is a directory.
func FormatFor(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ArchiveExt) {
		return Zip
	}
	return Dir
}

var (
	// ErrNotExist is returned when the archive path does not exist.
	ErrNotExist = errors.New("archive does not exist")
	// ErrNotArchive is returned for a path that is neither a directory nor
	// a zip file.
	ErrNotArchive = fmt.Errorf("%w: not a stroke archive", state.ErrFormat)
	// ErrEmpty is returned for a valid container with no members.
	ErrEmpty = fmt.Errorf("%w: archive is empty", state.ErrFormat)
	// ErrNoStrokes is returned when no member name parses as a stroke file.
	ErrNoStrokes = fmt.Errorf("%w: no strokes found", state.ErrFormat)
	// ErrStageClosed is returned when a committed or aborted stage is reused.
	ErrStageClosed = errors.New("archive stage closed")
)

// Option configures Create and Open.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Meta is what a zip comment records about the saved session: its ID and
// how many canvases it had, so trailing empty canvases survive a round trip.
type Meta struct {
	Session  string
	Canvases int
}

// String formats m as a zip comment.
func (m Meta) String() string {
	return fmt.Sprintf("session=%s canvases=%d", m.Session, m.Canvases)
}

// ParseMeta reads a comment written by Meta.String. Unknown or malformed
// fields are ignored.
func ParseMeta(comment string) Meta {
	var m Meta
	for _, field := range strings.Fields(comment) {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch k {
		case "session":
			m.Session = v
		case "canvases":
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				m.Canvases = n
			}
		}
	}
	return m
}
