package ui

import (
	"image/color"
	"math"

	"StrokeCollector/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// Pen is how a stroke is drawn on screen. It is not saved with the stroke.
type Pen struct {
	Color color.Color
	Width float32
}

// Board collects strokes into one canvas from the mouse and draws them.
type Board struct {
	widget.BaseWidget
	canvas  *state.Canvas
	pens    map[*state.Stroke]Pen
	pen     Pen
	current *state.Stroke

	// OnChanged is called after a stroke is started or finished.
	OnChanged func()
}

var _ fyne.Widget = (*Board)(nil)
var _ fyne.Draggable = (*Board)(nil)
var _ desktop.Mouseable = (*Board)(nil)
var _ desktop.Hoverable = (*Board)(nil)

// NewBoard shows c, drawing new strokes with pen.
func NewBoard(c *state.Canvas, pen Pen) *Board {
	b := &Board{
		canvas: c,
		pens:   make(map[*state.Stroke]Pen),
		pen:    pen,
	}
	b.ExtendBaseWidget(b)
	return b
}

// Canvas is the canvas strokes are collected into.
func (b *Board) Canvas() *state.Canvas { return b.canvas }

// Drawing reports whether a stroke is in progress.
func (b *Board) Drawing() bool { return b.current != nil }

func (b *Board) SetColor(c color.Color) { b.pen.Color = c }

func (b *Board) SetWidth(w float32) { b.pen.Width = w }

func (b *Board) penFor(s *state.Stroke) Pen {
	if p, ok := b.pens[s]; ok {
		return p
	}
	return b.pen
}

func round(p fyne.Position) (int, int) {
	return int(math.Round(float64(p.X))), int(math.Round(float64(p.Y)))
}

func (b *Board) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	x, y := round(e.Position)
	b.current = b.canvas.Begin(x, y)
	b.pens[b.current] = b.pen
	b.Refresh()
	b.changed()
}

func (b *Board) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || b.current == nil {
		return
	}
	b.current.Append(round(e.Position))
	b.current = nil
	b.Refresh()
	b.changed()
}

func (b *Board) Dragged(e *fyne.DragEvent) {
	b.extend(e.Position)
}

func (b *Board) MouseMoved(e *desktop.MouseEvent) {
	b.extend(e.Position)
}

func (b *Board) extend(pos fyne.Position) {
	if b.current == nil {
		return
	}
	b.current.Append(round(pos))
	b.Refresh()
}

func (b *Board) DragEnd()                    {}
func (b *Board) MouseIn(*desktop.MouseEvent) {}
func (b *Board) MouseOut()                   {}

// Reload redraws after the canvas was changed outside the board.
func (b *Board) Reload() {
	for s := range b.pens {
		if s.Released() {
			delete(b.pens, s)
		}
	}
	if b.current != nil && b.current.Released() {
		b.current = nil
	}
	b.Refresh()
}

func (b *Board) changed() {
	if b.OnChanged != nil {
		b.OnChanged()
	}
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	return &boardRenderer{
		board:      b,
		background: canvas.NewRectangle(color.White),
	}
}

type boardRenderer struct {
	board      *Board
	background *canvas.Rectangle
}

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	objects := []fyne.CanvasObject{r.background}
	for _, s := range r.board.canvas.Strokes() {
		objects = append(objects, strokeObjects(s, r.board.penFor(s))...)
	}
	return objects
}

// strokeObjects draws s as line segments, or a dot when it has one point.
func strokeObjects(s *state.Stroke, pen Pen) []fyne.CanvasObject {
	var objects []fyne.CanvasObject
	var prev fyne.Position
	for i, p := range s.Points() {
		pos := fyne.NewPos(float32(p.X), float32(p.Y))
		if i > 0 {
			line := canvas.NewLine(pen.Color)
			line.StrokeWidth = pen.Width
			line.Position1 = prev
			line.Position2 = pos
			objects = append(objects, line)
		}
		prev = pos
	}
	if s.Len() == 1 {
		dot := canvas.NewCircle(pen.Color)
		d := max(pen.Width, 1)
		dot.Resize(fyne.NewSize(d, d))
		dot.Move(prev.SubtractXY(d/2, d/2))
		objects = append(objects, dot)
	}
	return objects
}

func (r *boardRenderer) Refresh() {
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardRenderer) Destroy() {}
