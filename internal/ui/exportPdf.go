package ui

import (
	"StrokeCollector/internal/export"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"go.uber.org/zap"
)

// exportDialog asks for a destination and writes every canvas as a page.
func (w *Window) exportDialog() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			w.showError("export dialog failed", err)
			return
		}
		if wc == nil {
			return
		}
		path := wc.URI().Path()
		wc.Close()
		if err := export.PDFFile(path, w.session.Canvases()); err != nil {
			w.showError("export failed", err)
			return
		}
		w.log.Info("exported PDF", zap.String("path", path), zap.Int("pages", w.session.Len()))
		w.status.SetText("Exported " + path)
	}, w.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	d.SetFileName("session.pdf")
	d.Show()
}
