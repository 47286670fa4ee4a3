package archive

import (
	"cmp"
	"fmt"
	"path"
	"strconv"
	"strings"
)

const (
	// MemberExt is the extension of each stroke file.
	MemberExt = ".sr"
	// ArchiveExt is the extension of a zipped archive.
	ArchiveExt = ".srz"

	memberPrefix = "stroke"
	delimiter    = "-"
)

// Key locates a stroke: the canvas it belongs to and its order there.
type Key struct {
	Canvas int
	Stroke int
}

// Compare orders keys by canvas, then stroke.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.Canvas, o.Canvas); c != 0 {
		return c
	}
	return cmp.Compare(k.Stroke, o.Stroke)
}

func (k Key) String() string {
	return fmt.Sprintf("canvas %d stroke %d", k.Canvas, k.Stroke)
}

// Name returns the member name of stroke j on canvas i. Fields are zero
// padded to 2 and 3 digits so that names sort in (i, j) order; larger
// indices widen the field rather than overflow, and still parse.
func Name(i, j int) string {
	return fmt.Sprintf("%s%s%02d%s%03d%s", memberPrefix, delimiter, i, delimiter, j, MemberExt)
}

// Parse recovers the key from a member name. Only the base name is
// considered, so directory prefixes and trailing separators are tolerated.
// Names that do not have exactly three dash-separated components with
// numeric second and third parts are not stroke files and report false.
func Parse(name string) (Key, bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimRight(name, "/")
	if name == "" {
		return Key{}, false
	}
	parts := strings.Split(path.Base(name), delimiter)
	if len(parts) != 3 {
		return Key{}, false
	}
	i, ok := parseIndex(parts[1])
	if !ok {
		return Key{}, false
	}
	third := parts[2]
	if dot := strings.IndexByte(third, '.'); dot >= 0 {
		third = third[:dot]
	}
	j, ok := parseIndex(third)
	if !ok {
		return Key{}, false
	}
	return Key{Canvas: i, Stroke: j}, true
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
