// Package ui is the collector window: one tab per canvas, a pen toolbar
// and a File menu for saving and loading sessions.
package ui

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"StrokeCollector/internal/archive"
	"StrokeCollector/internal/collector"
	"StrokeCollector/internal/config"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const appID = "io.github.srcollect"

// Window shows a session and routes mouse input into its current canvas.
type Window struct {
	window  fyne.Window
	session *collector.Session
	cfg     *config.Config
	log     *zap.Logger

	tabs   *container.AppTabs
	boards []*Board
	status *widget.Label
	pen    Pen

	// path is where Save writes without asking.
	path string
}

// Run opens the collector, loading archivePath first when it is set, and
// blocks until the window is closed.
func Run(cfg *config.Config, log *zap.Logger, archivePath string) error {
	s := collector.New(collector.WithLogger(log))
	if archivePath != "" {
		if err := s.Load(context.Background(), archivePath); err != nil {
			return err
		}
	}
	w := NewWindow(app.NewWithID(appID), cfg, s, log)
	w.path = archivePath
	w.updateTitle()
	w.window.ShowAndRun()
	return nil
}

// NewWindow builds the collector window for s inside a.
func NewWindow(a fyne.App, cfg *config.Config, s *collector.Session, log *zap.Logger) *Window {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Window{
		window:  a.NewWindow("Stroke Collector"),
		session: s,
		cfg:     cfg,
		log:     log,
		status:  widget.NewLabel("Ready"),
		pen:     Pen{Color: cfg.Pen.RGBA(), Width: cfg.Pen.Width},
	}
	w.window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))

	w.tabs = container.NewAppTabs()
	w.tabs.OnSelected = func(*container.TabItem) { w.updateStatus() }
	w.rebuild()

	w.window.SetMainMenu(w.menu())
	w.window.SetContent(container.NewBorder(newToolbar(w), w.status, nil, nil, w.tabs))
	w.window.SetCloseIntercept(w.quit)
	w.updateTitle()
	return w
}

func (w *Window) menu() *fyne.MainMenu {
	quit := fyne.NewMenuItem("Quit", w.quit)
	quit.IsQuit = true
	return fyne.NewMainMenu(fyne.NewMenu("File",
		fyne.NewMenuItem("New", w.newSession),
		fyne.NewMenuItem("Open...", w.openDialog),
		fyne.NewMenuItem("Open Folder...", w.openFolderDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", func() { w.save(nil) }),
		fyne.NewMenuItem("Save As...", func() { w.saveAs(nil) }),
		fyne.NewMenuItem("Export PDF...", w.exportDialog),
		fyne.NewMenuItemSeparator(),
		quit,
	))
}

// rebuild makes one tab per canvas of the session.
func (w *Window) rebuild() {
	canvases := w.session.Canvases()
	w.boards = w.boards[:0]
	items := make([]*container.TabItem, 0, len(canvases))
	for i, c := range canvases {
		b := NewBoard(c, w.pen)
		b.OnChanged = w.changed
		w.boards = append(w.boards, b)
		items = append(items, container.NewTabItem(fmt.Sprintf("Canvas %d", i+1), b))
	}
	w.tabs.Items = items
	w.tabs.Refresh()
	w.tabs.SelectIndex(0)
	w.updateStatus()
}

func (w *Window) current() *Board {
	i := w.tabs.SelectedIndex()
	if i < 0 || i >= len(w.boards) {
		return nil
	}
	return w.boards[i]
}

func (w *Window) changed() {
	w.updateTitle()
	w.updateStatus()
}

func (w *Window) updateTitle() {
	name := "untitled"
	if w.path != "" {
		name = filepath.Base(w.path)
	}
	if w.session.IsDirty() {
		name += " *"
	}
	w.window.SetTitle("Stroke Collector - " + name)
}

func (w *Window) updateStatus() {
	b := w.current()
	if b == nil {
		return
	}
	w.status.SetText(fmt.Sprintf("%d strokes on this canvas, %d canvases", b.Canvas().Len(), w.session.Len()))
}

func (w *Window) showError(msg string, err error) {
	w.log.Error(msg, zap.Error(err))
	dialog.ShowError(err, w.window)
}

func (w *Window) setColor(c color.Color) {
	w.pen.Color = c
	for _, b := range w.boards {
		b.SetColor(c)
	}
}

func (w *Window) setWidth(width float32) {
	w.pen.Width = width
	for _, b := range w.boards {
		b.SetWidth(width)
	}
}

func (w *Window) newCanvas() {
	c := w.session.AddCanvas()
	b := NewBoard(c, w.pen)
	b.OnChanged = w.changed
	w.boards = append(w.boards, b)
	w.tabs.Append(container.NewTabItem(fmt.Sprintf("Canvas %d", len(w.boards)), b))
	w.tabs.SelectIndex(len(w.boards) - 1)
	w.changed()
}

func (w *Window) undoStroke() {
	b := w.current()
	if b == nil || b.Drawing() || b.Canvas().Len() == 0 {
		return
	}
	if err := b.Canvas().Remove(b.Canvas().Len() - 1); err != nil {
		w.showError("undo failed", err)
		return
	}
	b.Reload()
	w.changed()
}

func (w *Window) clearCanvas() {
	b := w.current()
	if b == nil || b.Canvas().Len() == 0 {
		return
	}
	b.Canvas().Clear()
	b.Reload()
	w.changed()
}

// confirmDiscard runs then once unsaved strokes are saved or the user
// agrees to drop them.
func (w *Window) confirmDiscard(then func()) {
	if !w.session.IsDirty() {
		then()
		return
	}
	d := dialog.NewCustomWithoutButtons("Unsaved strokes",
		widget.NewLabel("The session has unsaved strokes. Save them first?"), w.window)
	d.SetButtons([]fyne.CanvasObject{
		widget.NewButton("Save", func() { d.Hide(); w.save(then) }),
		widget.NewButton("Discard", func() { d.Hide(); then() }),
		widget.NewButton("Cancel", d.Hide),
	})
	d.Show()
}

func (w *Window) newSession() {
	w.confirmDiscard(func() {
		w.session.Reset()
		w.path = ""
		w.rebuild()
		w.updateTitle()
		w.log.Info("new session", zap.String("session", w.session.ID()))
	})
}

func (w *Window) quit() {
	w.confirmDiscard(w.window.Close)
}

// save writes to the current path, asking for one first if there is none.
// then runs only after a successful save.
func (w *Window) save(then func()) {
	if w.path == "" {
		w.saveAs(then)
		return
	}
	if err := w.session.SaveAs(context.Background(), w.path); err != nil {
		w.showError("save failed", err)
		return
	}
	w.saved(w.path, then)
}

func (w *Window) saveAs(then func()) {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			w.showError("save dialog failed", err)
			return
		}
		if wc == nil {
			return
		}
		chosen := wc.URI().Path()
		wc.Close()
		if !strings.HasSuffix(strings.ToLower(chosen), archive.ArchiveExt) {
			// the dialog already created the file without the extension
			os.Remove(chosen)
		}
		path, err := w.session.Save(context.Background(), chosen)
		if err != nil {
			w.showError("save failed", err)
			return
		}
		w.saved(path, then)
	}, w.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{archive.ArchiveExt}))
	d.SetFileName("session" + archive.ArchiveExt)
	w.startIn(d)
	d.Show()
}

// startIn opens d in the configured archive directory when it exists.
func (w *Window) startIn(d *dialog.FileDialog) {
	if w.cfg.ArchiveDir == "" {
		return
	}
	dir, err := storage.ListerForURI(storage.NewFileURI(w.cfg.ArchiveDir))
	if err != nil {
		w.log.Debug("archive dir unavailable", zap.String("dir", w.cfg.ArchiveDir), zap.Error(err))
		return
	}
	d.SetLocation(dir)
}

func (w *Window) saved(path string, then func()) {
	w.path = path
	w.updateTitle()
	w.status.SetText("Saved " + filepath.Base(path))
	if then != nil {
		then()
	}
}

func (w *Window) openDialog() {
	w.confirmDiscard(func() {
		d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				w.showError("open dialog failed", err)
				return
			}
			if rc == nil {
				return
			}
			path := rc.URI().Path()
			rc.Close()
			w.open(path)
		}, w.window)
		d.SetFilter(storage.NewExtensionFileFilter([]string{archive.ArchiveExt}))
		w.startIn(d)
		d.Show()
	})
}

func (w *Window) openFolderDialog() {
	w.confirmDiscard(func() {
		dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
			if err != nil {
				w.showError("open dialog failed", err)
				return
			}
			if dir == nil {
				return
			}
			w.open(dir.Path())
		}, w.window)
	})
}

// open loads path into the session. A failed load leaves the window as it
// was.
func (w *Window) open(path string) {
	if err := w.session.Load(context.Background(), path); err != nil {
		w.showError("load failed", err)
		return
	}
	w.path = path
	w.rebuild()
	w.updateTitle()
}
