package viewport

import (
	"math"
	"testing"

	"xsim/pkg/geometry"
)

func TestZoomClamp(t *testing.T) {
	s := New(DefaultLimits(), DragPan)
	for i := 0; i < 100; i++ {
		s.Zoom(1)
	}
	if s.Scale() != 5 {
		t.Errorf("scale after zooming in = %v, want 5", s.Scale())
	}
	for i := 0; i < 100; i++ {
		s.Zoom(-1)
	}
	if s.Scale() != 0.2 {
		t.Errorf("scale after zooming out = %v, want 0.2", s.Scale())
	}

	s.Reset()
	s.Zoom(1)
	s.Zoom(1)
	if s.Scale() != 1.2 {
		t.Errorf("two steps from 1 = %v, want 1.2", s.Scale())
	}
	s.Zoom(0)
	if s.Scale() != 1.2 {
		t.Errorf("zero delta changed scale to %v", s.Scale())
	}
}

func TestCorrectiveLimits(t *testing.T) {
	s := New(Limits{Min: 0.5, Max: 5, Step: 0.1}, DragPan)
	s.SetScale(0.1)
	if s.Scale() != 0.5 {
		t.Errorf("scale = %v, want 0.5", s.Scale())
	}
}

func TestPanRequiresDrag(t *testing.T) {
	s := New(DefaultLimits(), DragPan)
	if s.Pan(10, 10) {
		t.Error("Pan succeeded without a drag")
	}
	if !s.BeginDrag() {
		t.Fatal("BeginDrag refused in pan mode")
	}
	s.Pan(10, -4)
	s.EndDrag()
	s.Pan(100, 100)
	if x, y := s.PanOffset(); x != 10 || y != -4 {
		t.Errorf("pan = %v, %v, want 10, -4", x, y)
	}

	none := New(DefaultLimits(), DragNone)
	if none.BeginDrag() || none.Pan(5, 5) {
		t.Error("drag mode none allowed panning")
	}
}

func TestLayout(t *testing.T) {
	s := New(DefaultLimits(), DragPan)
	s.ResetBelt(400)
	s.SetBeltX(100.4)
	s.SetScale(1.5)
	r := s.Layout(400, 300, 980)
	want := geometry.RectInt{X: 100, Y: 265, W: 600, H: 450}
	if r != want {
		t.Errorf("Layout = %+v, want %+v", r, want)
	}
	if got, ok := s.LastDrawRect(); !ok || got != want {
		t.Errorf("LastDrawRect = %+v %v", got, ok)
	}
}

func TestResetBelt(t *testing.T) {
	s := New(DefaultLimits(), DragPan)
	s.ResetBelt(640)
	if s.BeltX() != -640 {
		t.Errorf("BeltX = %v, want -640", s.BeltX())
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	tests := []struct {
		scale    float64
		beltX    float64
		panX     float64
		panY     float64
		imgW     int
		imgH     int
		canvasH  int
		screenPt geometry.Point2D
	}{
		{1, 0, 0, 0, 400, 300, 980, geometry.Point2D{X: 120, Y: 500}},
		{1.3, 55.5, 12, -7, 333, 251, 980, geometry.Point2D{X: 300, Y: 410}},
		{0.2, -80, 3, 3, 777, 555, 980, geometry.Point2D{X: 10, Y: 490}},
		{5, 20, -40, 90, 101, 77, 980, geometry.Point2D{X: 200, Y: 600}},
	}
	for _, tt := range tests {
		s := New(DefaultLimits(), DragPan)
		s.SetScale(tt.scale)
		s.SetBeltX(tt.beltX)
		s.BeginDrag()
		s.Pan(tt.panX, tt.panY)
		s.EndDrag()
		s.Layout(tt.imgW, tt.imgH, tt.canvasH)

		img, ok := s.ScreenToImage(tt.screenPt)
		if !ok {
			t.Fatalf("ScreenToImage failed for %+v", tt)
		}
		back, ok := s.ImageToScreen(img)
		if !ok {
			t.Fatal("ImageToScreen failed")
		}
		if math.Abs(back.X-tt.screenPt.X) > 1e-9 || math.Abs(back.Y-tt.screenPt.Y) > 1e-9 {
			t.Errorf("round trip at scale %v: %v -> %v -> %v", tt.scale, tt.screenPt, img, back)
		}
	}
}

func TestScreenToImageMatchesDrawnRect(t *testing.T) {
	s := New(DefaultLimits(), DragPan)
	s.SetScale(2)
	s.SetBeltX(10)
	r := s.Layout(100, 50, 200)

	p, ok := s.ScreenToImage(geometry.Point2D{X: float64(r.X), Y: float64(r.Y)})
	if !ok || p.X != 0 || p.Y != 0 {
		t.Errorf("rect origin maps to %v, want image origin", p)
	}
	p, _ = s.ScreenToImage(geometry.Point2D{X: float64(r.X + r.W), Y: float64(r.Y + r.H)})
	if p.X != 100 || p.Y != 50 {
		t.Errorf("rect corner maps to %v, want (100, 50)", p)
	}
}

func TestMappingWithoutLayout(t *testing.T) {
	s := New(DefaultLimits(), DragPan)
	if _, ok := s.ScreenToImage(geometry.Point2D{}); ok {
		t.Error("mapping succeeded before any layout")
	}
	s.Layout(10, 10, 10)
	s.Forget()
	if _, ok := s.ImageToScreen(geometry.Point2D{}); ok {
		t.Error("mapping succeeded after Forget")
	}
}

func TestParseDragMode(t *testing.T) {
	for in, want := range map[string]DragMode{"": DragPan, "pan": DragPan, "NONE": DragNone, "wheel-only": DragNone} {
		got, err := ParseDragMode(in)
		if err != nil || got != want {
			t.Errorf("ParseDragMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDragMode("spin"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
