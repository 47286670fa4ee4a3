package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"StrokeCollector/internal/state"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// Stage collects members in a temporary location next to the destination.
// Nothing at the destination changes until Commit, so a failure part way
// through leaves any previously committed archive intact.
type Stage struct {
	format Format
	dest   string
	tmp    string
	log    *zap.Logger

	file *os.File
	zw   *zip.Writer

	member *os.File
	buf    *bufio.Writer

	names  map[string]struct{}
	closed bool
}

// Create opens a stage that will become dest on Commit.
func Create(dest string, format Format, opts ...Option) (*Stage, error) {
	o := newOptions(opts)
	dest = filepath.Clean(dest)
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", state.ErrIO, parent, err)
	}

	st := &Stage{
		format: format,
		dest:   dest,
		log:    o.logger,
		names:  make(map[string]struct{}),
	}
	pattern := "." + filepath.Base(dest) + ".tmp-*"
	switch format {
	case Zip:
		f, err := os.CreateTemp(parent, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: stage %s: %v", state.ErrIO, dest, err)
		}
		st.file = f
		st.tmp = f.Name()
		st.zw = zip.NewWriter(f)
	case Dir:
		tmp, err := os.MkdirTemp(parent, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: stage %s: %v", state.ErrIO, dest, err)
		}
		st.tmp = tmp
	default:
		return nil, fmt.Errorf("unknown archive format %v", format)
	}
	st.log.Debug("archive staged", zap.String("dest", dest), zap.String("tmp", st.tmp), zap.Stringer("format", format))
	return st, nil
}

// SetComment stores c as the zip comment. Directories have no comment and
// ignore it.
func (st *Stage) SetComment(c string) error {
	if st.closed {
		return ErrStageClosed
	}
	if st.zw == nil {
		return nil
	}
	return st.zw.SetComment(c)
}

// Create starts a new member. The returned writer is valid until the next
// call to Create, Commit or Abort.
func (st *Stage) Create(name string) (io.Writer, error) {
	if st.closed {
		return nil, ErrStageClosed
	}
	if _, dup := st.names[name]; dup {
		return nil, fmt.Errorf("%w: duplicate member %s", state.ErrIO, name)
	}
	if err := st.closeMember(); err != nil {
		return nil, err
	}
	st.names[name] = struct{}{}

	if st.zw != nil {
		w, err := st.zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: member %s: %v", state.ErrIO, name, err)
		}
		return w, nil
	}

	f, err := os.OpenFile(filepath.Join(st.tmp, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: member %s: %v", state.ErrIO, name, err)
	}
	st.member = f
	st.buf = bufio.NewWriter(f)
	return st.buf, nil
}

func (st *Stage) closeMember() error {
	if st.member == nil {
		return nil
	}
	f, bw := st.member, st.buf
	st.member, st.buf = nil, nil
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %s: %v", state.ErrIO, f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", state.ErrIO, f.Name(), err)
	}
	return nil
}

// Commit finalizes the stage and moves it over dest. On error the staging
// area is removed and dest is left as it was.
func (st *Stage) Commit() error {
	if st.closed {
		return ErrStageClosed
	}
	st.closed = true

	var err error
	if st.zw != nil {
		err = st.commitZip()
	} else {
		err = st.commitDir()
	}
	if err != nil {
		st.cleanup()
		return err
	}
	st.log.Debug("archive committed", zap.String("dest", st.dest), zap.Int("members", len(st.names)))
	return nil
}

func (st *Stage) commitZip() error {
	if err := st.zw.Close(); err != nil {
		return fmt.Errorf("%w: finish %s: %v", state.ErrIO, st.dest, err)
	}
	if err := st.file.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %v", state.ErrIO, st.dest, err)
	}
	if err := st.file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", state.ErrIO, st.dest, err)
	}
	st.file = nil
	_ = os.Chmod(st.tmp, 0o644)
	if err := osReplace(st.tmp, st.dest); err != nil {
		return fmt.Errorf("%w: replace %s: %v", state.ErrIO, st.dest, err)
	}
	_ = syncDir(filepath.Dir(st.dest))
	return nil
}

// commitDir swaps the staged directory in. A directory cannot be renamed
// over a non-empty one, so an existing archive is first moved aside and
// restored if the swap fails. Files in the existing directory that are not
// stroke members are carried over into the new one; a destination that is
// not a directory is refused.
func (st *Stage) commitDir() error {
	if err := st.closeMember(); err != nil {
		return err
	}

	info, err := os.Lstat(st.dest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.Rename(st.tmp, st.dest); err != nil {
			return fmt.Errorf("%w: replace %s: %v", state.ErrIO, st.dest, err)
		}
		_ = syncDir(filepath.Dir(st.dest))
		return nil
	case err != nil:
		return fmt.Errorf("%w: stat %s: %v", state.ErrIO, st.dest, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s exists and is not a directory", state.ErrIO, st.dest)
	}

	carried, err := st.carryForeign()
	if err != nil {
		st.returnForeign(carried)
		return err
	}

	backup := st.tmp + ".old"
	if err := os.Rename(st.dest, backup); err != nil {
		st.returnForeign(carried)
		return fmt.Errorf("%w: move aside %s: %v", state.ErrIO, st.dest, err)
	}
	if err := os.Rename(st.tmp, st.dest); err != nil {
		if rerr := os.Rename(backup, st.dest); rerr == nil {
			st.returnForeign(carried)
		} else {
			// keep the staging area, it holds the carried files
			st.log.Error("failed to restore previous archive",
				zap.String("path", st.dest), zap.String("backup", backup), zap.String("tmp", st.tmp), zap.Error(rerr))
			st.tmp = ""
		}
		return fmt.Errorf("%w: replace %s: %v", state.ErrIO, st.dest, err)
	}
	if err := os.RemoveAll(backup); err != nil {
		st.log.Warn("failed to remove previous archive", zap.String("path", backup), zap.Error(err))
	}
	_ = syncDir(filepath.Dir(st.dest))
	return nil
}

// carryForeign moves every entry of dest that is not a stroke member into
// the staging directory and returns the moved names.
func (st *Stage) carryForeign() ([]string, error) {
	entries, err := os.ReadDir(st.dest)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", state.ErrIO, st.dest, err)
	}
	var carried []string
	for _, e := range entries {
		if _, ok := Parse(e.Name()); ok && e.Type().IsRegular() {
			continue
		}
		if _, staged := st.names[e.Name()]; staged {
			return carried, fmt.Errorf("%w: %s in %s clashes with a stroke member", state.ErrIO, e.Name(), st.dest)
		}
		if err := os.Rename(filepath.Join(st.dest, e.Name()), filepath.Join(st.tmp, e.Name())); err != nil {
			return carried, fmt.Errorf("%w: keep %s: %v", state.ErrIO, e.Name(), err)
		}
		carried = append(carried, e.Name())
	}
	if len(carried) > 0 {
		st.log.Debug("keeping non-stroke files", zap.String("dest", st.dest), zap.Strings("names", carried))
	}
	return carried, nil
}

// returnForeign moves carried entries back into dest after a failed commit.
// If any cannot be moved the staging area is kept so nothing is lost.
func (st *Stage) returnForeign(names []string) {
	keep := false
	for _, name := range names {
		if err := os.Rename(filepath.Join(st.tmp, name), filepath.Join(st.dest, name)); err != nil {
			st.log.Error("failed to return file to archive directory",
				zap.String("name", name), zap.String("tmp", st.tmp), zap.Error(err))
			keep = true
		}
	}
	if keep {
		st.tmp = ""
	}
}

// Abort discards everything staged. It is safe to call after Commit.
func (st *Stage) Abort() error {
	if st.closed {
		return nil
	}
	st.closed = true
	st.cleanup()
	st.log.Debug("archive stage aborted", zap.String("dest", st.dest))
	return nil
}

func (st *Stage) cleanup() {
	if st.member != nil {
		_ = st.member.Close()
		st.member, st.buf = nil, nil
	}
	if st.file != nil {
		_ = st.file.Close()
		st.file = nil
	}
	if st.tmp != "" {
		_ = os.RemoveAll(st.tmp)
	}
}
