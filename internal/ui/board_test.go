package ui

import (
	"image/color"
	"testing"

	"StrokeCollector/internal/collector"
	"StrokeCollector/internal/config"
	"StrokeCollector/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mouse(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func drag(x, y float32) *fyne.DragEvent {
	return &fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}}
}

func TestBoard_CollectsStroke(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	c := state.NewCanvas()
	b := NewBoard(c, Pen{Color: color.Black, Width: 2})
	var changes int
	b.OnChanged = func() { changes++ }

	b.MouseDown(mouse(10.4, 20.6))
	assert.True(t, b.Drawing())
	b.Dragged(drag(11, 21))
	b.MouseMoved(mouse(12.5, 22))
	b.MouseUp(mouse(13, 23))
	assert.False(t, b.Drawing())
	assert.Equal(t, 2, changes)

	require.Equal(t, 1, c.Len())
	assert.True(t, c.IsDirty())
	s, err := c.Stroke(0)
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())

	first, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 10, first.X)
	assert.Equal(t, 21, first.Y)
	last, err := s.Get(-1)
	require.NoError(t, err)
	assert.Equal(t, 3, last.I)
	assert.Equal(t, state.BBox{MinX: 10, MinY: 21, MaxX: 13, MaxY: 23}, s.BBox())
}

func TestBoard_IgnoresMovesWithoutButton(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	c := state.NewCanvas()
	b := NewBoard(c, Pen{Color: color.Black, Width: 2})
	b.MouseMoved(mouse(1, 1))
	b.Dragged(drag(2, 2))
	b.MouseUp(mouse(3, 3))
	assert.Zero(t, c.Len())
	assert.False(t, c.IsDirty())

	secondary := mouse(4, 4)
	secondary.Button = desktop.MouseButtonSecondary
	b.MouseDown(secondary)
	assert.Zero(t, c.Len())
}

func TestBoard_RendersSegmentsAndDots(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	c := state.NewCanvas()
	s := c.Begin(0, 0)
	s.Append(5, 5)
	s.Append(10, 0)
	c.Begin(20, 20)

	b := NewBoard(c, Pen{Color: color.Black, Width: 3})
	objects := test.WidgetRenderer(b).Objects()
	// background, two segments, one dot
	assert.Len(t, objects, 4)

	require.NoError(t, c.Remove(0))
	b.Reload()
	assert.Len(t, test.WidgetRenderer(b).Objects(), 2)
}

func TestWindow_CanvasActions(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	s := collector.New()
	w := NewWindow(a, config.Default(), s, nil)
	require.Len(t, w.boards, 1)

	w.newCanvas()
	assert.Equal(t, 2, s.Len())
	assert.Len(t, w.tabs.Items, 2)
	assert.Equal(t, 1, w.tabs.SelectedIndex())

	b := w.current()
	b.MouseDown(mouse(1, 1))
	b.MouseUp(mouse(2, 2))
	b.MouseDown(mouse(3, 3))
	b.MouseUp(mouse(4, 4))
	assert.Equal(t, []int{0, 2}, s.Counts())
	assert.True(t, s.IsDirty())

	w.undoStroke()
	assert.Equal(t, []int{0, 1}, s.Counts())
	w.clearCanvas()
	assert.Equal(t, []int{0, 0}, s.Counts())

	red := color.NRGBA{R: 255, A: 255}
	w.setColor(red)
	w.setWidth(7)
	for _, b := range w.boards {
		assert.Equal(t, Pen{Color: red, Width: 7}, b.pen)
	}
}

func TestWindow_OpenReplacesTabs(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	src := collector.New()
	src.Canvases()[0].Begin(1, 1)
	src.AddCanvas().Begin(2, 2)
	src.AddCanvas()
	path, err := src.Save(t.Context(), t.TempDir()+"/src")
	require.NoError(t, err)

	w := NewWindow(a, config.Default(), collector.New(), nil)
	w.open(path)
	assert.Len(t, w.tabs.Items, 3)
	assert.Equal(t, path, w.path)
	assert.False(t, w.session.IsDirty())

	w.open(t.TempDir() + "/missing.srz")
	assert.Len(t, w.tabs.Items, 3)
	assert.Equal(t, path, w.path)
}
