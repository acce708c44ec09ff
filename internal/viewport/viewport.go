// Package viewport maps between surface pixels and image pixels for one view.
package viewport

import (
	"fmt"
	"math"
	"strings"

	"xsim/pkg/geometry"
)

// DragMode selects what a pointer drag does.
type DragMode int

const (
	// DragPan moves the image while the pointer is held.
	DragPan DragMode = iota
	// DragNone disables panning; only the wheel changes the view.
	DragNone
)

func (m DragMode) String() string {
	if m == DragNone {
		return "none"
	}
	return "pan"
}

// ParseDragMode parses the configuration spelling of a DragMode.
func ParseDragMode(s string) (DragMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pan":
		return DragPan, nil
	case "none", "wheel-only":
		return DragNone, nil
	default:
		return DragPan, fmt.Errorf("unknown drag mode %q", s)
	}
}

// Limits bounds the zoom scale.
type Limits struct {
	Min, Max, Step float64
}

// DefaultLimits returns the zoom range used by the training screen.
func DefaultLimits() Limits {
	return Limits{Min: 0.2, Max: 5, Step: 0.1}
}

// State is the transform of one view. It is not safe for concurrent use.
type State struct {
	limits   Limits
	dragMode DragMode

	scale    float64
	panX     float64
	panY     float64
	beltX    float64
	paused   bool
	dragging bool

	imgW, imgH   int
	lastDrawRect geometry.RectInt
	drawn        bool
}

// New returns a state at scale 1 with no pan.
func New(limits Limits, mode DragMode) *State {
	if limits.Step <= 0 {
		limits.Step = DefaultLimits().Step
	}
	if limits.Min <= 0 || limits.Max < limits.Min {
		d := DefaultLimits()
		limits.Min, limits.Max = d.Min, d.Max
	}
	return &State{limits: limits, dragMode: mode, scale: 1}
}

// Scale returns the current zoom factor.
func (s *State) Scale() float64 { return s.scale }

// PanOffset returns the current pan offset.
func (s *State) PanOffset() (float64, float64) { return s.panX, s.panY }

// BeltX returns the belt displacement.
func (s *State) BeltX() float64 { return s.beltX }

// Paused reports whether the view is paused.
func (s *State) Paused() bool { return s.paused }

// SetPaused records the pause flag.
func (s *State) SetPaused(p bool) {
	s.paused = p
	if !p {
		s.dragging = false
	}
}

// Zoom changes the scale by one step in the direction of deltaSign
// (positive zooms in) and clamps it.
func (s *State) Zoom(deltaSign float64) {
	switch {
	case deltaSign > 0:
		s.SetScale(s.scale + s.limits.Step)
	case deltaSign < 0:
		s.SetScale(s.scale - s.limits.Step)
	}
}

// SetScale sets the scale, clamped to the limits.
func (s *State) SetScale(v float64) {
	v = math.Round(v*1000) / 1000
	s.scale = math.Max(s.limits.Min, math.Min(s.limits.Max, v))
}

// BeginDrag starts a pan gesture. It reports whether panning is allowed.
func (s *State) BeginDrag() bool {
	if s.dragMode == DragNone {
		return false
	}
	s.dragging = true
	return true
}

// EndDrag finishes a pan gesture.
func (s *State) EndDrag() { s.dragging = false }

// Dragging reports whether a pan gesture is active.
func (s *State) Dragging() bool { return s.dragging }

// Pan moves the image by (dx, dy) surface pixels while a drag is held.
func (s *State) Pan(dx, dy float64) bool {
	if !s.dragging || s.dragMode == DragNone {
		return false
	}
	s.panX += dx
	s.panY += dy
	return true
}

// ResetBelt parks the image just off the left edge.
func (s *State) ResetBelt(imageWidth int) {
	s.beltX = -float64(imageWidth)
}

// SetBeltX sets the belt displacement.
func (s *State) SetBeltX(x float64) { s.beltX = x }

// Reset restores scale 1 and removes the pan offset.
func (s *State) Reset() {
	s.scale = 1
	s.panX, s.panY = 0, 0
	s.dragging = false
}

// Layout computes and records the integer rectangle the image is drawn into.
// The image is centred vertically on a canvas of height canvasH.
func (s *State) Layout(imgW, imgH, canvasH int) geometry.RectInt {
	w := int(math.Round(float64(imgW) * s.scale))
	h := int(math.Round(float64(imgH) * s.scale))
	r := geometry.RectInt{
		X: int(math.Round(s.beltX + s.panX)),
		Y: int(math.Round(float64(canvasH-h)/2 + s.panY)),
		W: w,
		H: h,
	}
	s.imgW, s.imgH = imgW, imgH
	s.lastDrawRect = r
	s.drawn = true
	return r
}

// LastDrawRect returns the rectangle recorded by the latest Layout.
func (s *State) LastDrawRect() (geometry.RectInt, bool) {
	return s.lastDrawRect, s.drawn
}

// Forget clears the recorded layout, as when the view's image is dropped.
func (s *State) Forget() {
	s.drawn = false
	s.lastDrawRect = geometry.RectInt{}
	s.imgW, s.imgH = 0, 0
}

// transform maps image pixels to surface pixels for the latest layout.
func (s *State) transform() (geometry.AffineTransform, bool) {
	if !s.drawn || s.imgW <= 0 || s.imgH <= 0 || s.lastDrawRect.W <= 0 || s.lastDrawRect.H <= 0 {
		return geometry.AffineTransform{}, false
	}
	r := s.lastDrawRect
	sx := float64(r.W) / float64(s.imgW)
	sy := float64(r.H) / float64(s.imgH)
	return geometry.Translation(float64(r.X), float64(r.Y)).Compose(geometry.Scale(sx, sy)), true
}

// ImageToScreen maps an image pixel to surface coordinates.
func (s *State) ImageToScreen(p geometry.Point2D) (geometry.Point2D, bool) {
	t, ok := s.transform()
	if !ok {
		return geometry.Point2D{}, false
	}
	return t.Apply(p), true
}

// ScreenToImage maps a surface coordinate to image pixels.
func (s *State) ScreenToImage(p geometry.Point2D) (geometry.Point2D, bool) {
	t, ok := s.transform()
	if !ok {
		return geometry.Point2D{}, false
	}
	inv, ok := t.Inverse()
	if !ok {
		return geometry.Point2D{}, false
	}
	return inv.Apply(p), true
}

// EffectiveScale returns the drawn-to-image ratio of the latest layout,
// which can differ from Scale by rounding.
func (s *State) EffectiveScale() float64 {
	if !s.drawn || s.imgW <= 0 {
		return s.scale
	}
	return float64(s.lastDrawRect.W) / float64(s.imgW)
}
