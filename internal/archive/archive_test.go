package archive

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"StrokeCollector/internal/state"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stage(t *testing.T, dest string, format Format, members map[string]string) {
	t.Helper()
	st, err := Create(dest, format)
	require.NoError(t, err)
	for name, body := range members {
		w, err := st.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, st.Commit())
}

func readMember(t *testing.T, r *Reader, name string) string {
	t.Helper()
	rc, err := r.Open(name)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestStage_ZipRoundTrip(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "s.srz")
	st, err := Create(dest, Zip)
	require.NoError(t, err)
	require.NoError(t, st.SetComment("session-1"))
	for _, name := range []string{Name(1, 0), Name(0, 1), Name(0, 0)} {
		w, err := st.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, name)
		require.NoError(t, err)
	}
	require.NoError(t, st.Commit())

	r, err := Open(dest)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, Zip, r.Format())
	assert.Equal(t, "session-1", r.Comment())
	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Key{0, 0}, entries[0].Key)
	assert.Equal(t, Key{0, 1}, entries[1].Key)
	assert.Equal(t, Key{1, 0}, entries[2].Key)
	assert.Equal(t, Name(0, 1), readMember(t, r, entries[1].Name))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dest), ".*tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStage_DirRoundTripWithTrailingSeparator(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "my-session")
	stage(t, dest, Dir, map[string]string{Name(0, 0): "a", Name(2, 1): "b", "notes.txt": "x"})

	r, err := Open(dest + string(filepath.Separator))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, Dir, r.Format())
	assert.Len(t, r.Names(), 3)
	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Key{2, 1}, entries[1].Key)
	assert.Equal(t, filepath.Join(dest, Name(2, 1)), entries[1].Name)
	assert.Equal(t, "b", readMember(t, r, entries[1].Name))
}

func TestStage_DirReplacesPrevious(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "session")
	stage(t, dest, Dir, map[string]string{Name(0, 0): "old", Name(0, 1): "old"})
	stage(t, dest, Dir, map[string]string{Name(0, 0): "new"})

	r, err := Open(dest)
	require.NoError(t, err)
	defer r.Close()
	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "new", readMember(t, r, entries[0].Name))

	siblings, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, siblings, 1)
}

func TestStage_AbortKeepsPreviousArchive(t *testing.T) {
	for _, format := range []Format{Zip, Dir} {
		t.Run(format.String(), func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "s.srz")
			stage(t, dest, format, map[string]string{Name(0, 0): "committed"})

			st, err := Create(dest, format)
			require.NoError(t, err)
			w, err := st.Create(Name(0, 0))
			require.NoError(t, err)
			_, err = io.WriteString(w, "half written")
			require.NoError(t, err)
			require.NoError(t, st.Abort())

			_, err = st.Create(Name(0, 1))
			assert.ErrorIs(t, err, ErrStageClosed)
			assert.ErrorIs(t, st.Commit(), ErrStageClosed)

			r, err := Open(dest)
			require.NoError(t, err)
			defer r.Close()
			entries := r.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, "committed", readMember(t, r, entries[0].Name))

			siblings, err := os.ReadDir(filepath.Dir(dest))
			require.NoError(t, err)
			assert.Len(t, siblings, 1, "staging area removed")
		})
	}
}

func TestStage_DuplicateMember(t *testing.T) {
	st, err := Create(filepath.Join(t.TempDir(), "s.srz"), Zip)
	require.NoError(t, err)
	defer st.Abort()

	_, err = st.Create(Name(0, 0))
	require.NoError(t, err)
	_, err = st.Create(Name(0, 0))
	assert.ErrorIs(t, err, state.ErrIO)
}

func TestOpen_Rejections(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.srz"))
	assert.ErrorIs(t, err, ErrNotExist)

	notZip := filepath.Join(dir, "plain.srz")
	require.NoError(t, os.WriteFile(notZip, []byte("hello"), 0o644))
	_, err = Open(notZip)
	assert.ErrorIs(t, err, ErrNotArchive)
	assert.ErrorIs(t, err, state.ErrFormat)

	emptyZip := filepath.Join(dir, "empty.srz")
	f, err := os.Create(emptyZip)
	require.NoError(t, err)
	require.NoError(t, zip.NewWriter(f).Close())
	require.NoError(t, f.Close())
	_, err = Open(emptyZip)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.ErrorIs(t, err, state.ErrFormat)

	emptyDir := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(emptyDir, 0o755))
	_, err = Open(emptyDir)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestReader_OpenUnknownMember(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "s.srz")
	stage(t, dest, Zip, map[string]string{Name(0, 0): "a"})
	r, err := Open(dest)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Open("nope")
	assert.ErrorIs(t, err, state.ErrIO)
}

func TestStage_DirKeepsNonStrokeFiles(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "notes")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "drafts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "README.txt"), []byte("readme"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "thesis.docx"), []byte("thesis"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "drafts", "a.txt"), []byte("draft"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dest, Name(5, 0)), []byte("stale"), 0o644))

	stage(t, dest, Dir, map[string]string{Name(0, 0): "new"})

	want := map[string]string{
		"README.txt":  "readme",
		"thesis.docx": "thesis",
		Name(0, 0):    "new",
	}
	want[filepath.Join("drafts", "a.txt")] = "draft"
	for name, body := range want {
		b, err := os.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err, name)
		assert.Equal(t, body, string(b), name)
	}
	assert.NoFileExists(t, filepath.Join(dest, Name(5, 0)))

	r, err := Open(dest)
	require.NoError(t, err)
	defer r.Close()
	require.Len(t, r.Entries(), 1)

	siblings, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, siblings, 1, "staging area removed")
}

func TestStage_DirRefusesFileDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(dest, []byte("%PDF-1.4"), 0o644))

	st, err := Create(dest, Dir)
	require.NoError(t, err)
	w, err := st.Create(Name(0, 0))
	require.NoError(t, err)
	_, err = io.WriteString(w, "stroke")
	require.NoError(t, err)

	err = st.Commit()
	require.Error(t, err)
	assert.ErrorIs(t, err, state.ErrIO)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(b))

	siblings, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, siblings, 1, "staging area removed")
}
