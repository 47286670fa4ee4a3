package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"StrokeCollector/internal/archive"
	"StrokeCollector/internal/state"

	"go.uber.org/zap"
)

// maxCanvases bounds how many canvases a single archive may expand into,
// so a stray member name cannot make Load allocate without limit.
const maxCanvases = 1 << 16

// ErrEmptySession is returned when saving a session that holds no strokes.
// Such an archive could not be loaded back.
var ErrEmptySession = errors.New("session has no strokes")

// Save writes every stroke of every canvas to a zip archive at path,
// appending .srz when missing, and returns the path written. Dirty flags
// are cleared only when the whole archive has been committed.
func (s *Session) Save(ctx context.Context, path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), archive.ArchiveExt) {
		path += archive.ArchiveExt
	}
	return path, s.save(ctx, path, archive.Zip)
}

// SaveDir writes the session as a directory of stroke files.
func (s *Session) SaveDir(ctx context.Context, dir string) error {
	return s.save(ctx, dir, archive.Dir)
}

// SaveAs picks the container from the destination: .srz paths are zipped,
// anything else becomes a directory.
func (s *Session) SaveAs(ctx context.Context, path string) error {
	return s.save(ctx, path, archive.FormatFor(path))
}

func (s *Session) save(ctx context.Context, dest string, format archive.Format) error {
	log := s.log.With(zap.String("session", s.id), zap.String("path", dest), zap.Stringer("format", format))
	log.Info("saving session", zap.Int("canvases", len(s.canvases)))
	if len(s.Strokes()) == 0 {
		log.Warn("refusing to save a session without strokes")
		return fmt.Errorf("save %s: %w", dest, ErrEmptySession)
	}

	st, err := archive.Create(dest, format, archive.WithLogger(s.log))
	if err != nil {
		log.Error("save failed", zap.Error(err))
		return fmt.Errorf("save %s: %w", dest, err)
	}
	// no-op once committed
	defer st.Abort()

	if err := st.SetComment(archive.Meta{Session: s.id, Canvases: len(s.canvases)}.String()); err != nil {
		return fmt.Errorf("save %s: %w", dest, err)
	}

	total := 0
	for i, c := range s.canvases {
		for j, stroke := range c.Strokes() {
			if err := ctx.Err(); err != nil {
				log.Warn("save cancelled", zap.Error(err))
				return err
			}
			if err := writeMember(st, i, j, stroke); err != nil {
				log.Error("save failed", zap.Error(err))
				return fmt.Errorf("save %s: %w", dest, err)
			}
			total++
		}
	}
	if err := st.Commit(); err != nil {
		log.Error("save failed", zap.Error(err))
		return fmt.Errorf("save %s: %w", dest, err)
	}
	for _, c := range s.canvases {
		c.MarkClean()
	}
	log.Info("session saved", zap.Int("strokes", total))
	return nil
}

func writeMember(st *archive.Stage, i, j int, stroke *state.Stroke) error {
	name := archive.Name(i, j)
	w, err := st.Create(name)
	if err != nil {
		return fmt.Errorf("canvas %d stroke %d: %w", i, j, err)
	}
	if err := state.EncodeStroke(w, stroke); err != nil {
		if errors.Is(err, state.ErrReleased) {
			return fmt.Errorf("canvas %d stroke %d: %w", i, j, err)
		}
		return fmt.Errorf("canvas %d stroke %d: %w: %v", i, j, state.ErrIO, err)
	}
	return nil
}

// Load replaces the session with the content of the archive at path, zip
// or directory. On any error the session is left exactly as it was.
func (s *Session) Load(ctx context.Context, path string) error {
	log := s.log.With(zap.String("path", path))
	log.Info("loading session")

	canvases, meta, err := readArchive(ctx, path, s.log)
	if err != nil {
		log.Error("load failed", zap.Error(err))
		return fmt.Errorf("load %s: %w", path, err)
	}

	s.replace(canvases)
	if meta.Session != "" {
		s.id = meta.Session
	}
	log.Info("session loaded", zap.String("session", s.id), zap.Ints("strokes", s.Counts()))
	return nil
}

// ReadArchive loads an archive into a new session without touching any
// existing one.
func ReadArchive(ctx context.Context, path string, opts ...Option) (*Session, error) {
	s := New(opts...)
	if err := s.Load(ctx, path); err != nil {
		return nil, err
	}
	return s, nil
}

func readArchive(ctx context.Context, path string, log *zap.Logger) (canvases []*state.Canvas, meta archive.Meta, err error) {
	r, err := archive.Open(path, archive.WithLogger(log))
	if err != nil {
		return nil, meta, err
	}
	defer r.Close()

	entries := r.Entries()
	if len(entries) == 0 {
		return nil, meta, archive.ErrNoStrokes
	}
	meta = archive.ParseMeta(r.Comment())

	defer func() {
		if err != nil {
			for _, c := range canvases {
				c.Release()
			}
			canvases = nil
		}
	}()

	var prev *archive.Key
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return canvases, meta, err
		}
		if e.Canvas >= maxCanvases {
			return canvases, meta, fmt.Errorf("%w: %s: canvas index %d exceeds %d", state.ErrFormat, e.Name, e.Canvas, maxCanvases-1)
		}
		if prev != nil && prev.Compare(e.Key) == 0 {
			log.Warn("duplicate stroke key in archive", zap.String("member", e.Name), zap.Stringer("key", e.Key))
		}
		prev = &e.Key

		for len(canvases) <= e.Canvas {
			canvases = append(canvases, state.NewCanvas())
		}
		stroke, err := readMember(r, e)
		if err != nil {
			return canvases, meta, err
		}
		canvases[e.Canvas].Add(stroke)
	}
	for len(canvases) < min(meta.Canvases, maxCanvases) {
		canvases = append(canvases, state.NewCanvas())
	}
	return canvases, meta, nil
}

func readMember(r *archive.Reader, e archive.Entry) (*state.Stroke, error) {
	rc, err := r.Open(e.Name)
	if err != nil {
		return nil, fmt.Errorf("%s (%v): %w", e.Name, e.Key, err)
	}
	defer rc.Close()

	stroke, err := state.DecodeStroke(rc)
	if err != nil {
		return nil, fmt.Errorf("%s (%v): %w", e.Name, e.Key, err)
	}
	// drain so zip checksums are verified
	if _, err := io.Copy(io.Discard, rc); err != nil {
		stroke.Release()
		return nil, fmt.Errorf("%s (%v): %w: %v", e.Name, e.Key, state.ErrFormat, err)
	}
	return stroke, nil
}
