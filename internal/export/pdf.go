// Package export renders a session's canvases to printable documents.
package export

import (
	"fmt"
	"io"
	"os"

	"StrokeCollector/internal/state"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry in millimetres, A4 landscape.
const (
	pageW  = 297.0
	pageH  = 210.0
	margin = 10.0
	header = 8.0
	dotR   = 0.4
)

// PDFFile writes one page per canvas to path.
func PDFFile(path string, canvases []*state.Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := PDF(f, canvases); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// PDF writes one page per canvas to w. Each canvas is fitted to its page
// by the union of its strokes' bounding boxes, preserving aspect ratio.
func PDF(w io.Writer, canvases []*state.Canvas) error {
	doc := render(canvases)
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func render(canvases []*state.Canvas) *gofpdf.Fpdf {
	doc := gofpdf.New("L", "mm", "A4", "")
	doc.SetTitle("Stroke collection", true)
	doc.SetFont("Helvetica", "", 10)
	doc.SetDrawColor(0, 0, 0)
	doc.SetFillColor(0, 0, 0)
	doc.SetLineWidth(0.3)
	doc.SetLineCapStyle("round")
	doc.SetLineJoinStyle("round")

	for i, c := range canvases {
		doc.AddPage()
		doc.Text(margin, margin, fmt.Sprintf("Canvas %d - %d strokes", i, c.Len()))
		drawCanvas(doc, c)
	}
	return doc
}

func drawCanvas(doc *gofpdf.Fpdf, c *state.Canvas) {
	box := c.BBox()
	if box.Empty() {
		return
	}
	areaW := pageW - 2*margin
	areaH := pageH - 2*margin - header
	scale := min(areaW/float64(max(box.Width(), 1)), areaH/float64(max(box.Height(), 1)))
	originX := margin
	originY := margin + header

	at := func(p state.Point) (float64, float64) {
		return originX + float64(p.X-box.MinX)*scale, originY + float64(p.Y-box.MinY)*scale
	}

	for _, st := range c.Strokes() {
		if st.Len() == 1 {
			p, _ := st.Get(0)
			x, y := at(p)
			doc.Circle(x, y, dotR, "F")
			continue
		}
		first := true
		for _, p := range st.Points() {
			x, y := at(p)
			if first {
				doc.MoveTo(x, y)
				first = false
				continue
			}
			doc.LineTo(x, y)
		}
		if !first {
			doc.DrawPath("D")
		}
	}
}
