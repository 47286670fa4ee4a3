package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"StrokeCollector/internal/state"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// Entry is a member whose name parsed as a stroke file.
type Entry struct {
	Key
	Name string
}

// Reader enumerates and opens the members of an existing archive.
type Reader struct {
	format  Format
	root    string
	log     *zap.Logger
	zr      *zip.ReadCloser
	files   map[string]*zip.File
	names   []string
	comment string
}

// Open inspects path and opens it as a zip or directory archive. A missing
// path, a path that is no container, and an empty container are distinct
// errors: ErrNotExist, ErrNotArchive and ErrEmpty.
func Open(path string, opts ...Option) (*Reader, error) {
	o := newOptions(opts)
	root := filepath.Clean(path)

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", state.ErrIO, path, err)
	}

	r := &Reader{root: root, log: o.logger}
	if info.IsDir() {
		err = r.openDir()
	} else {
		err = r.openZip()
	}
	if err != nil {
		return nil, err
	}
	if len(r.names) == 0 {
		_ = r.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return r, nil
}

// openDir lists the regular files of the directory. Names carry the
// directory as prefix.
func (r *Reader) openDir() error {
	r.format = Dir
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", state.ErrIO, r.root, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		r.names = append(r.names, filepath.Join(r.root, e.Name()))
	}
	return nil
}

func (r *Reader) openZip() error {
	r.format = Zip
	zr, err := zip.OpenReader(r.root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotArchive, r.root, err)
	}
	r.zr = zr
	r.comment = zr.Comment
	r.files = make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		r.files[f.Name] = f
		r.names = append(r.names, f.Name)
	}
	return nil
}

// Format reports the container kind.
func (r *Reader) Format() Format { return r.format }

// Comment returns the zip comment, empty for directories.
func (r *Reader) Comment() string { return r.comment }

// Names lists every member in container order.
func (r *Reader) Names() []string {
	return slices.Clone(r.names)
}

// Entries parses every member name and returns the stroke files sorted by
// (canvas, stroke). Members that do not parse are skipped without error.
func (r *Reader) Entries() []Entry {
	out := make([]Entry, 0, len(r.names))
	for _, name := range r.names {
		k, ok := Parse(name)
		if !ok {
			r.log.Debug("skipping non-stroke member", zap.String("member", name))
			continue
		}
		out = append(out, Entry{Key: k, Name: name})
	}
	slices.SortStableFunc(out, func(a, b Entry) int { return a.Key.Compare(b.Key) })
	return out
}

// Open opens a member by the name reported by Names or Entries.
func (r *Reader) Open(name string) (io.ReadCloser, error) {
	if r.format == Dir {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", state.ErrIO, name, err)
		}
		return f, nil
	}
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: no member %s in %s", state.ErrIO, name, r.root)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: member %s: %v", state.ErrFormat, name, err)
	}
	return rc, nil
}

// Close releases the underlying zip file, if any.
func (r *Reader) Close() error {
	if r.zr == nil {
		return nil
	}
	err := r.zr.Close()
	r.zr = nil
	return err
}
