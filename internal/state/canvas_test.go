package state

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestCanvas_AddMarksDirty(t *testing.T) {
	c := NewCanvas()
	assert.False(t, c.IsDirty())

	c.Add(strokeOf(1, 2))
	assert.True(t, c.IsDirty())
	assert.Equal(t, 1, c.Len())
}

func TestCanvas_AppendToContainedStrokeMarksDirty(t *testing.T) {
	c := NewCanvas()
	s := c.Begin(3, 4)
	c.MarkClean()

	s.AppendTimed(5, 6, 7)
	assert.True(t, c.IsDirty())
	assert.Equal(t, 2, s.Len())
	assert.Same(t, s, c.Last())
}

func TestCanvas_SetStrokesIsClean(t *testing.T) {
	c := NewCanvas()
	c.Add(strokeOf(1))
	old := c.Strokes()[0]

	a, b := strokeOf(1, 2), strokeOf(3)
	c.SetStrokes([]*Stroke{a, b})

	assert.False(t, c.IsDirty())
	assert.Equal(t, []*Stroke{a, b}, c.Strokes())
	assert.True(t, old.Released())
}

func TestCanvas_ClearKeepsDirty(t *testing.T) {
	c := NewCanvas()
	c.SetStrokes([]*Stroke{strokeOf(1), strokeOf(2)})
	require.False(t, c.IsDirty())

	strokes := c.Strokes()
	c.Clear()
	assert.True(t, c.IsDirty())
	assert.Equal(t, 0, c.Len())
	for _, s := range strokes {
		assert.True(t, s.Released())
	}
}

func TestCanvas_Remove(t *testing.T) {
	c := NewCanvas()
	a, b, d := strokeOf(1), strokeOf(2), strokeOf(3)
	c.SetStrokes([]*Stroke{a, b, d})

	require.NoError(t, c.Remove(1))
	assert.True(t, c.IsDirty())
	assert.Equal(t, []*Stroke{a, d}, c.Strokes())
	assert.True(t, b.Released())

	err := c.Remove(5)
	assert.ErrorIs(t, err, ErrIndex)
	_, err = c.Stroke(-1)
	assert.ErrorIs(t, err, ErrIndex)
}

func TestCanvas_StrokesIsACopy(t *testing.T) {
	c := NewCanvas()
	c.Add(strokeOf(1))
	got := c.Strokes()
	got[0] = nil
	s, err := c.Stroke(0)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestCanvas_BBox(t *testing.T) {
	c := NewCanvas()
	assert.True(t, c.BBox().Empty())

	c.Add(strokeOf(1, 5))  // x 1..5, y -5..-1
	c.Add(strokeOf(-2, 3)) // x -2..3, y -3..2
	assert.Equal(t, BBox{MinX: -2, MinY: -5, MaxX: 5, MaxY: 2}, c.BBox())
}
