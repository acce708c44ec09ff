// Package viewcanvas provides the widget that shows one X-ray view and
// forwards pointer input to the session engine.
package viewcanvas

import (
	"image"

	"xsim/internal/surface"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// Handlers receive input in surface pixel coordinates.
type Handlers struct {
	OnClick     func(x, y float64)
	OnZoom      func(delta float64)
	OnDragStart func()
	OnDrag      func(dx, dy float64)
	OnDragEnd   func()
	OnActivity  func()
}

// ViewCanvas displays a surface scaled to the widget and maps pointer
// positions back to the surface's backing size.
type ViewCanvas struct {
	widget.BaseWidget

	surface  *surface.Surface
	raster   *fynecanvas.Raster
	handlers Handlers
	dragging bool
}

var (
	_ fyne.Tappable     = (*ViewCanvas)(nil)
	_ fyne.Draggable    = (*ViewCanvas)(nil)
	_ fyne.Scrollable   = (*ViewCanvas)(nil)
	_ desktop.Hoverable = (*ViewCanvas)(nil)
)

// New creates a canvas for s. minSize is the smallest on-screen size.
func New(s *surface.Surface, minSize fyne.Size, h Handlers) *ViewCanvas {
	vc := &ViewCanvas{surface: s, handlers: h}
	vc.raster = fynecanvas.NewRaster(vc.draw)
	vc.raster.SetMinSize(minSize)
	vc.ExtendBaseWidget(vc)
	return vc
}

func (vc *ViewCanvas) draw(_, _ int) image.Image {
	return vc.surface.Snapshot()
}

// CreateRenderer implements fyne.Widget.
func (vc *ViewCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(vc.raster)
}

// Redraw schedules a repaint from the surface.
func (vc *ViewCanvas) Redraw() {
	vc.raster.Refresh()
}

// toSurface converts a widget position to surface pixels.
func (vc *ViewCanvas) toSurface(pos fyne.Position) (float64, float64, bool) {
	w, h := vc.surface.Size()
	return ToSurface(pos, vc.Size(), w, h)
}

// ToSurface maps pos inside a widget of the given size to a backing buffer
// of backW x backH pixels. It reports false for positions outside the widget.
func ToSurface(pos fyne.Position, size fyne.Size, backW, backH int) (float64, float64, bool) {
	if size.Width <= 0 || size.Height <= 0 {
		return 0, 0, false
	}
	// Fyne can deliver taps just outside the widget bounds.
	if pos.X < 0 || pos.Y < 0 || pos.X > size.Width || pos.Y > size.Height {
		return 0, 0, false
	}
	x := float64(pos.X) * float64(backW) / float64(size.Width)
	y := float64(pos.Y) * float64(backH) / float64(size.Height)
	return x, y, true
}

// ratio returns surface pixels per widget unit on each axis.
func (vc *ViewCanvas) ratio() (float64, float64) {
	w, h := vc.surface.Size()
	size := vc.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return 1, 1
	}
	return float64(w) / float64(size.Width), float64(h) / float64(size.Height)
}

// Tapped handles left clicks.
func (vc *ViewCanvas) Tapped(ev *fyne.PointEvent) {
	vc.activity()
	if vc.handlers.OnClick == nil {
		return
	}
	if x, y, ok := vc.toSurface(ev.Position); ok {
		vc.handlers.OnClick(x, y)
	}
}

// Scrolled zooms; the wheel never scrolls the view.
func (vc *ViewCanvas) Scrolled(ev *fyne.ScrollEvent) {
	vc.activity()
	if vc.handlers.OnZoom == nil || ev.Scrolled.DY == 0 {
		return
	}
	vc.handlers.OnZoom(float64(ev.Scrolled.DY))
}

// Dragged pans the view.
func (vc *ViewCanvas) Dragged(ev *fyne.DragEvent) {
	vc.activity()
	if !vc.dragging {
		vc.dragging = true
		if vc.handlers.OnDragStart != nil {
			vc.handlers.OnDragStart()
		}
	}
	if vc.handlers.OnDrag != nil {
		rx, ry := vc.ratio()
		vc.handlers.OnDrag(float64(ev.Dragged.DX)*rx, float64(ev.Dragged.DY)*ry)
	}
}

// DragEnd finishes a pan.
func (vc *ViewCanvas) DragEnd() {
	if !vc.dragging {
		return
	}
	vc.dragging = false
	if vc.handlers.OnDragEnd != nil {
		vc.handlers.OnDragEnd()
	}
}

// MouseIn implements desktop.Hoverable.
func (vc *ViewCanvas) MouseIn(*desktop.MouseEvent) { vc.activity() }

// MouseMoved counts as operator activity.
func (vc *ViewCanvas) MouseMoved(*desktop.MouseEvent) { vc.activity() }

// MouseOut implements desktop.Hoverable.
func (vc *ViewCanvas) MouseOut() {}

func (vc *ViewCanvas) activity() {
	if vc.handlers.OnActivity != nil {
		vc.handlers.OnActivity()
	}
}
