package surface

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"xsim/pkg/colorutil"
	"xsim/pkg/geometry"
)

type stubLoader struct {
	img image.Image
	err error
}

func (l stubLoader) LoadImage(context.Context, string) (image.Image, error) {
	return l.img, l.err
}

func TestNewIsWhite(t *testing.T) {
	s := New(4, 3)
	w, h := s.Size()
	if w != 4 || h != 3 {
		t.Fatalf("Size() = %d, %d", w, h)
	}
	if got := s.Snapshot().RGBAAt(3, 2); got != colorutil.White {
		t.Errorf("pixel = %v, want white", got)
	}
}

func TestDrawImageScalesIntoRect(t *testing.T) {
	s := New(20, 20)
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	draw.Draw(src, src.Bounds(), &image.Uniform{colorutil.Black}, image.Point{}, draw.Src)

	s.DrawImage(src, geometry.RectInt{X: 5, Y: 5, W: 10, H: 4})
	snap := s.Snapshot()
	if got := snap.RGBAAt(10, 7); got != colorutil.Black {
		t.Errorf("inside = %v, want black", got)
	}
	if got := snap.RGBAAt(4, 7); got != colorutil.White {
		t.Errorf("left of rect = %v, want white", got)
	}
	if got := snap.RGBAAt(10, 9); got != colorutil.White {
		t.Errorf("below rect = %v, want white", got)
	}
}

func TestDrawImageClipsOffSurface(t *testing.T) {
	s := New(10, 10)
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(src, src.Bounds(), &image.Uniform{colorutil.Black}, image.Point{}, draw.Src)

	s.DrawImage(src, geometry.RectInt{X: -20, Y: 0, W: 24, H: 10})
	if got := s.Snapshot().RGBAAt(2, 5); got != colorutil.Black {
		t.Errorf("visible part = %v, want black", got)
	}
	if got := s.Snapshot().RGBAAt(6, 5); got != colorutil.White {
		t.Errorf("beyond rect = %v, want white", got)
	}
}

func TestDrawMarker(t *testing.T) {
	s := New(100, 100)
	s.DrawMarker(50, 50, 1)
	snap := s.Snapshot()
	if got := snap.RGBAAt(50, 50); got != colorutil.White {
		t.Errorf("marker centre = %v, want untouched", got)
	}
	if got := snap.RGBAAt(61, 50); got != colorutil.Red {
		t.Errorf("ring pixel = %v, want red", got)
	}
}

func TestDrawMarkerNearEdgeDoesNotPanic(t *testing.T) {
	s := New(10, 10)
	s.DrawMarker(0, 0, 3)
	s.DrawMarker(9, 9, 3)
}

func TestDrawLabel(t *testing.T) {
	s := New(120, 30)
	s.DrawLabel(5, 20, "PAUSED", colorutil.White)
	snap := s.Snapshot()
	changed := false
	for i := 0; i < len(snap.Pix); i += 4 {
		if snap.Pix[i] != 255 {
			changed = true
			break
		}
	}
	if !changed {
		t.Error("label left the surface untouched")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(2, 2)
	snap := s.Snapshot()
	snap.SetRGBA(0, 0, colorutil.Black)
	if got := s.Snapshot().RGBAAt(0, 0); got != colorutil.White {
		t.Errorf("mutating a snapshot changed the surface: %v", got)
	}
}

func TestPutPixelsAndEdit(t *testing.T) {
	s := New(2, 2)
	px := s.Pixels()
	px.SetRGBA(1, 1, color.RGBA{1, 2, 3, 255})
	s.PutPixels(px)
	if got := s.Snapshot().RGBAAt(1, 1); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("PutPixels pixel = %v", got)
	}

	s.Edit(func(img *image.RGBA) { img.SetRGBA(0, 0, colorutil.Black) })
	if got := s.Snapshot().RGBAAt(0, 0); got != colorutil.Black {
		t.Errorf("Edit pixel = %v", got)
	}
}

func TestLoadWrapsErrors(t *testing.T) {
	netErr := errors.New("connection refused")
	_, err := Load(context.Background(), stubLoader{err: netErr}, "/a.png")
	if !errors.Is(err, ErrImageLoad) || !errors.Is(err, netErr) {
		t.Errorf("err = %v, want ErrImageLoad wrapping the cause", err)
	}

	if _, err := Load(context.Background(), stubLoader{}, ""); !errors.Is(err, ErrImageLoad) {
		t.Errorf("empty url err = %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	got, err := Load(context.Background(), stubLoader{img: img}, "/ok.png")
	if err != nil || got != img {
		t.Errorf("Load = %v, %v", got, err)
	}
}
