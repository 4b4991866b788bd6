// Package canvas provides the page editing surface: the page raster
// with its overlay items, zoom, and pointer gesture forwarding.
package canvas

import (
	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"signflow/internal/annotation"
	"signflow/internal/compose"
	"signflow/internal/interact"
	"signflow/internal/page"
	"signflow/pkg/geometry"
)

const (
	minZoom  = 0.1
	maxZoom  = 8.0
	zoomStep = 1.25
)

// PageCanvas displays one document page with its annotation items and
// feeds pointer gestures to the interaction controller in page-logical
// coordinates.
type PageCanvas struct {
	widget.BaseWidget

	model      *annotation.Model
	controller *interact.Controller
	ras        *compose.Rasterizer

	page     *page.Page
	zoom     float64
	dragging bool

	raster  *fynecanvas.Raster
	scroll  *zoomScroll
	content *pointerContent

	assets assetCache

	onZoomChange func(zoom float64)
	onChanged    func() // fired after any gesture that may mutate the model
}

// NewPageCanvas creates a canvas bound to a model and controller. The
// rasterizer renders text-like items for display, the same way the
// export path does.
func NewPageCanvas(model *annotation.Model, controller *interact.Controller, ras *compose.Rasterizer) *PageCanvas {
	pc := &PageCanvas{
		model:      model,
		controller: controller,
		ras:        ras,
		zoom:       1.0,
		assets:     newAssetCache(),
	}

	pc.raster = fynecanvas.NewRaster(pc.draw)
	pc.raster.ScaleMode = fynecanvas.ImageScalePixels
	pc.raster.SetMinSize(fyne.NewSize(400, 300))

	pc.content = newPointerContent(pc, pc.raster)
	pc.scroll = newZoomScroll(pc.content, pc)

	pc.ExtendBaseWidget(pc)
	return pc
}

// Container returns the canvas container for embedding in layouts.
func (pc *PageCanvas) Container() fyne.CanvasObject {
	return pc.scroll
}

// SetPage switches the displayed page. Passing nil clears the canvas.
func (pc *PageCanvas) SetPage(p *page.Page) {
	pc.page = p
	pc.assets.invalidateAll()
	pc.updateContentSize()
}

// Page returns the displayed page, or nil.
func (pc *PageCanvas) Page() *page.Page {
	return pc.page
}

// SetZoom sets the zoom level, clamped to the allowed range.
func (pc *PageCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	pc.zoom = zoom
	pc.updateContentSize()

	if pc.onZoomChange != nil {
		pc.onZoomChange(zoom)
	}
}

// Zoom returns the current zoom level.
func (pc *PageCanvas) Zoom() float64 {
	return pc.zoom
}

// ZoomIn increases the zoom level.
func (pc *PageCanvas) ZoomIn() {
	pc.SetZoom(pc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (pc *PageCanvas) ZoomOut() {
	pc.SetZoom(pc.zoom / zoomStep)
}

// OnZoomChange sets a callback for zoom changes.
func (pc *PageCanvas) OnZoomChange(callback func(zoom float64)) {
	pc.onZoomChange = callback
}

// OnChanged sets a callback fired after gestures that may have mutated
// the model.
func (pc *PageCanvas) OnChanged(callback func()) {
	pc.onChanged = callback
}

// ModelChanged invalidates cached item assets and redraws. Call after
// any model mutation made outside a canvas gesture.
func (pc *PageCanvas) ModelChanged() {
	pc.assets.invalidateAll()
	pc.Refresh()
}

// toPage converts a viewport position to page-logical coordinates.
func (pc *PageCanvas) toPage(pos fyne.Position) geometry.Point2D {
	off := pc.scroll.Offset()
	origin := geometry.NewPoint2D(float64(-off.X), float64(-off.Y))
	return geometry.ScreenToPage(float64(pos.X), float64(pos.Y), origin, pc.zoom)
}

func (pc *PageCanvas) pageIndex() int {
	if pc.page == nil {
		return 0
	}
	return pc.page.PageIndex
}

func (pc *PageCanvas) gestureChanged() {
	pc.assets.invalidateText()
	if pc.onChanged != nil {
		pc.onChanged()
	}
	pc.Refresh()
}

func (pc *PageCanvas) updateContentSize() {
	w, h := 400.0, 300.0
	if pc.page != nil {
		w = pc.page.Width * pc.zoom
		h = pc.page.Height * pc.zoom
	}
	pc.raster.SetMinSize(fyne.NewSize(float32(w), float32(h)))
	pc.raster.Resize(fyne.NewSize(float32(w), float32(h)))
	pc.Refresh()
}

// Refresh redraws the canvas.
func (pc *PageCanvas) Refresh() {
	pc.raster.Refresh()
	pc.scroll.Refresh()
	pc.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (pc *PageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pc.scroll)
}

// zoomScroll wraps a scroll container but intercepts the wheel for
// zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *PageCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *PageCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// pointerContent wraps the raster and translates fyne mouse events
// into the controller's pointer phases.
type pointerContent struct {
	widget.BaseWidget
	canvas *PageCanvas
	raster *fynecanvas.Raster
}

func newPointerContent(pc *PageCanvas, raster *fynecanvas.Raster) *pointerContent {
	c := &pointerContent{canvas: pc, raster: raster}
	c.ExtendBaseWidget(c)
	return c
}

func (c *pointerContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *pointerContent) MinSize() fyne.Size {
	return c.raster.MinSize()
}

// Tapped handles a click: pointer down and up at the same spot.
func (c *pointerContent) Tapped(ev *fyne.PointEvent) {
	pc := c.canvas
	p := pc.toPage(ev.Position)
	pc.controller.Pointer(pc.pageIndex(), interact.PointerEvent{X: p.X, Y: p.Y, Phase: interact.PhaseDown})
	pc.controller.Pointer(pc.pageIndex(), interact.PointerEvent{X: p.X, Y: p.Y, Phase: interact.PhaseUp})
	pc.gestureChanged()
}

// DoubleTapped enters direct text editing on text items.
func (c *pointerContent) DoubleTapped(ev *fyne.PointEvent) {
	pc := c.canvas
	p := pc.toPage(ev.Position)
	pc.controller.DoubleClick(pc.pageIndex(), p.X, p.Y)
	pc.gestureChanged()
}

// Dragged drives drag and resize gestures. The first event of a drag
// synthesizes the pointer-down at the drag's start position.
func (c *pointerContent) Dragged(ev *fyne.DragEvent) {
	pc := c.canvas
	if !pc.dragging {
		pc.dragging = true
		start := fyne.Position{
			X: ev.Position.X - ev.Dragged.DX,
			Y: ev.Position.Y - ev.Dragged.DY,
		}
		p := pc.toPage(start)
		pc.controller.Pointer(pc.pageIndex(), interact.PointerEvent{X: p.X, Y: p.Y, Phase: interact.PhaseDown})
	}
	p := pc.toPage(ev.Position)
	pc.controller.Pointer(pc.pageIndex(), interact.PointerEvent{X: p.X, Y: p.Y, Phase: interact.PhaseMove})
	pc.gestureChanged()
}

func (c *pointerContent) DragEnd() {
	pc := c.canvas
	if !pc.dragging {
		return
	}
	pc.dragging = false
	pc.controller.Pointer(pc.pageIndex(), interact.PointerEvent{Phase: interact.PhaseUp})
	pc.gestureChanged()
}

var _ fyne.Tappable = (*pointerContent)(nil)
var _ fyne.DoubleTappable = (*pointerContent)(nil)
var _ fyne.Draggable = (*pointerContent)(nil)
