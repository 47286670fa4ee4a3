package state

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	fileFormat  = "sr"
	fileVersion = 1
)

// strokeFile is the on-disk form of a single stroke. Only the ordered
// (x, y, t) samples are stored; indices and the bounding box are rebuilt
// on decode.
type strokeFile struct {
	Format  string     `json:"format"`
	Version int        `json:"version"`
	Points  [][3]int64 `json:"points"`
}

// EncodeStroke writes s to w in the .sr format.
func EncodeStroke(w io.Writer, s *Stroke) error {
	if s.released {
		return ErrReleased
	}
	f := strokeFile{
		Format:  fileFormat,
		Version: fileVersion,
		Points:  make([][3]int64, 0, len(s.points)),
	}
	for _, p := range s.points {
		f.Points = append(f.Points, [3]int64{int64(p.X), int64(p.Y), p.T})
	}
	return json.NewEncoder(w).Encode(f)
}

// DecodeStroke reads one .sr document from r. Anything that is not a valid
// encoding yields an error wrapping ErrFormat.
func DecodeStroke(r io.Reader) (*Stroke, error) {
	var f strokeFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if f.Format != fileFormat {
		return nil, fmt.Errorf("%w: unexpected format %q", ErrFormat, f.Format)
	}
	if f.Version != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, f.Version)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after stroke document", ErrFormat)
	}
	samples := make([]Sample, 0, len(f.Points))
	for _, p := range f.Points {
		samples = append(samples, Sample{X: int(p[0]), Y: int(p[1]), T: p[2]})
	}
	return newStrokeFromSamples(samples), nil
}

// Save writes the stroke to path.
func (s *Stroke) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: save stroke %s: %v", ErrIO, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %v", ErrIO, path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := EncodeStroke(bw, s); err != nil {
		if errors.Is(err, ErrReleased) {
			return err
		}
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	return nil
}

// LoadStroke reads a stroke previously written by Save.
func LoadStroke(path string) (*Stroke, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load stroke %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	s, err := DecodeStroke(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("load stroke %s: %w", path, err)
	}
	return s, nil
}
