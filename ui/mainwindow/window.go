// Package mainwindow provides the main application window.
package mainwindow

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"signflow/internal/annotation"
	"signflow/internal/app"
	"signflow/internal/compose"
	"signflow/internal/interact"
	"signflow/internal/sigimage"
	"signflow/internal/version"
	"signflow/ui/canvas"
	"signflow/ui/panels"
	"signflow/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	_ "golang.org/x/image/tiff"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.PageCanvas
	inspector *panels.Inspector
	statusBar *widget.Label
	pageLabel *widget.Label

	currentPage   int
	editPrompt    bool
	lastSelection string
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("SignFlow")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewPageCanvas(mw.state.Model, mw.state.Controller, mw.state.Rasterizer())
	mw.canvas.SetZoom(mw.prefs.Float(prefs.KeyZoom, 1.0))

	mw.inspector = panels.NewInspector(mw.state, mw.canvas)
	mw.inspector.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")
	mw.pageLabel = widget.NewLabel("No document")

	mw.canvas.OnChanged(func() {
		mw.inspector.Refresh()
		mw.maybePromptEdit()
		if id := mw.state.Controller.SelectedID(); id != mw.lastSelection {
			mw.lastSelection = id
			mw.state.Emit(app.EventSelectionChanged, id)
		}
	})
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.prefs.SetFloat(prefs.KeyZoom, zoom)
		mw.updateStatus(fmt.Sprintf("Zoom: %.0f%%", zoom*100))
	})

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		mw.canvas.Container(),
	)

	split := container.NewHSplit(
		canvasArea,
		mw.inspector.Container(),
	)
	split.SetOffset(0.75)

	content := container.NewBorder(
		nil,
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.pageLabel, mw.statusBar)),
		nil,
		nil,
		split,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
}

// createToolbar creates the toolbar with placement, edit, zoom and
// page controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	textBtn := widget.NewButton("Text", func() {
		mw.beginTextPlacement(annotation.KindPlainText)
	})
	styledBtn := widget.NewButton("Styled", func() {
		mw.beginTextPlacement(annotation.KindStyledText)
	})
	dateBtn := widget.NewButton("Date", func() {
		mw.state.Controller.BeginPlacement(annotation.KindDateStamp, annotation.Options{
			SourceTimestamp: time.Now(),
			DateFormat:      mw.prefs.String(prefs.KeyDateFormat, annotation.DefaultDateFormat),
			FontFamily:      mw.prefs.String(prefs.KeyDefaultFont, "Go"),
			FontSize:        mw.prefs.Float(prefs.KeyDefaultFontSize, annotation.DefaultFontSize),
		})
		mw.updateStatus("Click the page to place a date stamp")
	})
	stampBtn := widget.NewButton("Stamp", func() {
		mw.promptStampText()
	})
	imageBtn := widget.NewButton("Image", func() {
		mw.importImage(annotation.KindUploadedImage)
	})
	scanBtn := widget.NewButton("Signature", func() {
		mw.importImage(annotation.KindFreehandImage)
	})

	undoBtn := widget.NewButton("Undo", mw.onUndo)
	redoBtn := widget.NewButton("Redo", mw.onRedo)
	deleteBtn := widget.NewButton("Delete", mw.onDelete)
	dupBtn := widget.NewButton("Duplicate", mw.onDuplicate)

	zoomOutBtn := widget.NewButton("-", func() { mw.canvas.ZoomOut() })
	zoomInBtn := widget.NewButton("+", func() { mw.canvas.ZoomIn() })
	actualBtn := widget.NewButton("1:1", func() { mw.canvas.SetZoom(1.0) })

	prevBtn := widget.NewButton("<", func() { mw.showPage(mw.currentPage - 1) })
	nextBtn := widget.NewButton(">", func() { mw.showPage(mw.currentPage + 1) })

	return container.NewHBox(
		widget.NewLabel("Insert:"),
		textBtn, styledBtn, dateBtn, stampBtn, imageBtn, scanBtn,
		widget.NewSeparator(),
		undoBtn, redoBtn, deleteBtn, dupBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn, zoomInBtn, actualBtn,
		widget.NewSeparator(),
		prevBtn, nextBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Document...", mw.onOpenDocument),
		fyne.NewMenuItem("Open Session...", mw.onOpenSession),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Session", mw.onSaveSession),
		fyne.NewMenuItem("Save Session As...", mw.onSaveSessionAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PDF...", mw.onExport),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete", mw.onDelete),
		fyne.NewMenuItem("Duplicate", mw.onDuplicate),
	)

	insertMenu := fyne.NewMenu("Insert",
		fyne.NewMenuItem("Check Mark", func() { mw.beginSymbolPlacement("✓") }),
		fyne.NewMenuItem("Cross Mark", func() { mw.beginSymbolPlacement("✗") }),
		fyne.NewMenuItem("Dot", func() { mw.beginSymbolPlacement("●") }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.canvas.ZoomIn() }),
		fyne.NewMenuItem("Zoom Out", func() { mw.canvas.ZoomOut() }),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(1.0) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Next Page", func() { mw.showPage(mw.currentPage + 1) }),
		fyne.NewMenuItem("Previous Page", func() { mw.showPage(mw.currentPage - 1) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, editMenu, insertMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDocumentLoaded, func(data interface{}) {
		path, _ := data.(string)
		mw.showPage(0)
		st := mw.state.Stats
		mw.updateStatus(fmt.Sprintf("Loaded %s: %d pages, %.0f x %.0f pt mean",
			filepath.Base(path), st.PageCount, st.MeanWidth, st.MeanHeight))
		mw.SetTitle("SignFlow - " + filepath.Base(path))
	})

	mw.state.On(app.EventDocumentLoadFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			dialog.ShowError(err, mw.Window)
		}
		mw.updateStatus("Document load failed")
	})

	mw.state.On(app.EventModelChanged, func(_ interface{}) {
		mw.canvas.ModelChanged()
	})

	mw.state.On(app.EventSessionLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Session loaded: " + path)
			mw.rememberSession(path)
		}
	})

	mw.state.On(app.EventSessionSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Session saved: " + path)
			mw.rememberSession(path)
		}
	})

	mw.state.On(app.EventSelectionChanged, func(data interface{}) {
		id, _ := data.(string)
		if id == "" {
			mw.updateStatus("Ready")
			return
		}
		if it := mw.state.Model.Get(id); it != nil {
			mw.updateStatus(fmt.Sprintf("Selected %s: %.0f x %.0f at (%.0f, %.0f)",
				id, it.Width, it.Height, it.X, it.Y))
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})

	mw.state.On(app.EventExportDone, func(data interface{}) {
		if rep, ok := data.(compose.Report); ok {
			mw.updateStatus(fmt.Sprintf("Export complete: %d placed, %d skipped", rep.Placed, rep.Skipped))
			return
		}
		mw.updateStatus("Export complete")
	})

	mw.state.On(app.EventExportFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			dialog.ShowError(err, mw.Window)
		}
		mw.updateStatus("Export failed")
	})
}

// setupKeys installs window-level keyboard shortcuts.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.state.Controller.Escape()
			mw.canvas.ModelChanged()
			mw.inspector.Refresh()
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.onDelete()
		case fyne.KeyPageDown:
			mw.showPage(mw.currentPage + 1)
		case fyne.KeyPageUp:
			mw.showPage(mw.currentPage - 1)
		}
	})
}

// showPage switches the canvas to the given page index.
func (mw *MainWindow) showPage(index int) {
	pages := mw.state.PageList()
	if len(pages) == 0 {
		mw.pageLabel.SetText("No document")
		mw.canvas.SetPage(nil)
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(pages) {
		index = len(pages) - 1
	}
	mw.currentPage = index
	mw.canvas.SetPage(&pages[index])
	mw.pageLabel.SetText(fmt.Sprintf("Page %d / %d", index+1, len(pages)))
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) beginTextPlacement(kind annotation.Kind) {
	mw.state.Controller.BeginPlacement(kind, annotation.Options{
		Content:    "Sign here",
		FontFamily: mw.prefs.String(prefs.KeyDefaultFont, "Go"),
		FontSize:   mw.prefs.Float(prefs.KeyDefaultFontSize, annotation.DefaultFontSize),
	})
	mw.updateStatus("Click the page to place text")
}

func (mw *MainWindow) beginSymbolPlacement(glyph string) {
	mw.state.Controller.BeginPlacement(annotation.KindSymbol, annotation.Options{
		Content:    glyph,
		FontFamily: mw.prefs.String(prefs.KeyDefaultFont, "Go"),
	})
	mw.updateStatus("Click the page to place the symbol")
}

func (mw *MainWindow) promptStampText() {
	entry := widget.NewEntry()
	entry.SetText("APPROVED")
	dialog.ShowForm("Insert Stamp", "Place", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Label", entry)},
		func(ok bool) {
			if !ok || entry.Text == "" {
				return
			}
			mw.state.Controller.BeginPlacement(annotation.KindLabelStamp, annotation.Options{
				Content:    entry.Text,
				FontFamily: mw.prefs.String(prefs.KeyDefaultFont, "Go"),
			})
			mw.updateStatus("Click the page to place the stamp")
		}, mw.Window)
}

// importImage loads an image file and begins placement. Freehand
// signature scans are cleaned up first: background removed, ink
// cropped and deskewed.
func (mw *MainWindow) importImage(kind annotation.Kind) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		img, loadErr := loadImageFile(path)
		if loadErr != nil {
			dialog.ShowError(loadErr, mw.Window)
			return
		}

		if kind == annotation.KindFreehandImage {
			cleaned, cleanErr := sigimage.Clean(img)
			if cleanErr != nil {
				dialog.ShowError(cleanErr, mw.Window)
				return
			}
			img = cleaned
		}

		content, encErr := encodePNG(img)
		if encErr != nil {
			dialog.ShowError(encErr, mw.Window)
			return
		}

		mw.state.Controller.BeginPlacement(kind, annotation.Options{Content: content})
		mw.updateStatus("Click the page to place the image")
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".tiff", ".tif"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// maybePromptEdit opens the text edit dialog when a double-click put
// the controller into the editing state.
func (mw *MainWindow) maybePromptEdit() {
	if mw.editPrompt || mw.state.Controller.State() != interact.StateEditing {
		return
	}
	it := mw.state.Controller.Selected()
	if it == nil {
		return
	}
	mw.editPrompt = true

	entry := widget.NewMultiLineEntry()
	entry.SetText(it.Content)
	entry.OnChanged = func(text string) {
		mw.state.Controller.EditContent(text)
		mw.canvas.ModelChanged()
	}

	d := dialog.NewCustomConfirm("Edit Text", "Done", "Cancel", entry, func(ok bool) {
		mw.editPrompt = false
		if ok {
			mw.state.Controller.EndEditing()
			mw.state.SetModified(true)
		} else {
			mw.state.Controller.Escape()
		}
		mw.canvas.ModelChanged()
		mw.inspector.Refresh()
	}, mw.Window)
	d.Resize(fyne.NewSize(400, 200))
	d.Show()
}

func (mw *MainWindow) onUndo() {
	if mw.state.Controller.Undo() {
		mw.state.SetModified(true)
		mw.canvas.ModelChanged()
		mw.inspector.Refresh()
	}
}

func (mw *MainWindow) onRedo() {
	if mw.state.Controller.Redo() {
		mw.state.SetModified(true)
		mw.canvas.ModelChanged()
		mw.inspector.Refresh()
	}
}

func (mw *MainWindow) onDelete() {
	if mw.state.Controller.SelectedID() == "" {
		return
	}
	mw.state.Controller.DeleteSelected()
	mw.state.SetModified(true)
	mw.canvas.ModelChanged()
	mw.inspector.Refresh()
}

func (mw *MainWindow) onDuplicate() {
	if mw.state.Controller.SelectedID() == "" {
		return
	}
	mw.state.Controller.DuplicateSelected()
	mw.state.SetModified(true)
	mw.canvas.ModelChanged()
	mw.inspector.Refresh()
}

func (mw *MainWindow) onOpenDocument() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		mw.state.LoadDocument(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenSession() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadSession(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".sgfproj"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveSession() {
	if mw.state.SessionPath == "" {
		mw.onSaveSessionAs()
		return
	}
	if err := mw.state.SaveSession(mw.state.SessionPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveSessionAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".sgfproj" {
			path += ".sgfproj"
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveSession(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("session.sgfproj")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExport() {
	if mw.state.DocumentPath == "" {
		mw.updateStatus("No document loaded")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".pdf" {
			path += ".pdf"
		}
		mw.saveLastDir(path)
		if err := mw.state.Export(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exporting...")
	}, mw.Window)
	fd.SetFileName("signed.pdf")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About SignFlow",
		fmt.Sprintf("SignFlow v%s\n\n"+
			"Sign and annotate PDF documents.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDocumentDir, "")
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDocumentDir, filepath.Dir(filePath))
	_ = mw.prefs.Save()
}

// rememberSession records the session path so the next launch can
// reopen it.
func (mw *MainWindow) rememberSession(path string) {
	mw.prefs.SetString(prefs.KeySessionPath, path)
	_ = mw.prefs.Save()
}

func loadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
