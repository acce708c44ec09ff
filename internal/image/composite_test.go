package image

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"xsim/internal/model"
	"xsim/pkg/colorutil"
	"xsim/pkg/geometry"
)

func uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func TestCompositeBlendModes(t *testing.T) {
	bg := uniform(10, 10, color.RGBA{200, 200, 200, 255})
	dark := uniform(4, 4, color.RGBA{100, 100, 100, 255})
	at := geometry.RectInt{X: 2, Y: 3, W: 2, H: 2}

	tests := []struct {
		name string
		opts Options
		want uint8
	}{
		{"multiply", Options{Threshold: 230, Opacity: 1, Multiply: true}, 78},
		{"normal", Options{Threshold: 230, Opacity: 1}, 100},
		{"normal half opacity", Options{Threshold: 230, Opacity: 0.5}, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Composite(bg, dark, at, tt.opts)
			if got := out.RGBAAt(3, 4).R; got != tt.want {
				t.Errorf("inside pixel = %d, want %d", got, tt.want)
			}
			if got := out.RGBAAt(0, 0).R; got != 200 {
				t.Errorf("outside pixel = %d, want background 200", got)
			}
		})
	}
}

func TestCompositeThresholdMask(t *testing.T) {
	bg := uniform(6, 6, color.RGBA{50, 60, 70, 255})
	white := uniform(3, 3, color.RGBA{250, 250, 250, 255})

	out := Composite(bg, white, geometry.RectInt{X: 0, Y: 0, W: 3, H: 3}, DefaultOptions())
	if got := out.RGBAAt(1, 1); got != (color.RGBA{50, 60, 70, 255}) {
		t.Errorf("bright item pixel was not masked: %v", got)
	}
}

func TestCompositeWithoutBackground(t *testing.T) {
	out := Composite(nil, nil, geometry.RectInt{}, DefaultOptions())
	if out.Bounds().Dx() != DefaultCanvasWidth || out.Bounds().Dy() != DefaultCanvasHeight {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if got := out.RGBAAt(5, 5); got != colorutil.Slate {
		t.Errorf("fallback pixel = %v, want slate", got)
	}
}

func TestCompositeViewUsesZForSide(t *testing.T) {
	z := 6.0
	pos := model.ItemPosition{X: 1, Y: 1, Z: &z, W: 2, H: 2}

	top, ok := Placement(pos, model.ViewTop)
	if !ok || top != (geometry.RectInt{X: 1, Y: 1, W: 2, H: 2}) {
		t.Errorf("top placement = %v %v", top, ok)
	}
	side, ok := Placement(pos, model.ViewSide)
	if !ok || side != (geometry.RectInt{X: 1, Y: 6, W: 2, H: 2}) {
		t.Errorf("side placement = %v %v", side, ok)
	}

	bg := uniform(10, 10, color.White)
	item := uniform(2, 2, color.Black)
	out := CompositeView(bg, item, pos, model.ViewSide, DefaultOptions())
	if out.RGBAAt(1, 6).R != 0 {
		t.Error("side composite did not draw at z")
	}
	if out.RGBAAt(1, 1).R != 255 {
		t.Error("side composite drew at y")
	}
}

func TestFittedBackdrop(t *testing.T) {
	out := FittedBackdrop(uniform(40, 30, color.RGBA{9, 9, 9, 255}), DefaultCanvasWidth, DefaultCanvasHeight)
	if out.Bounds().Dx() != DefaultCanvasWidth || out.Bounds().Dy() != DefaultCanvasHeight {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if out.RGBAAt(400, 300).R != 9 {
		t.Errorf("scaled pixel = %v", out.RGBAAt(400, 300))
	}
}

func TestOutlineRect(t *testing.T) {
	dst := uniform(20, 20, color.Black)
	OutlineRect(dst, geometry.RectInt{X: 5, Y: 5, W: 10, H: 10}, colorutil.Orange)
	if got := dst.RGBAAt(5, 5); got != colorutil.Orange {
		t.Errorf("edge pixel = %v, want orange", got)
	}
	if got := dst.RGBAAt(10, 10); got == colorutil.Orange || got.R == 0 {
		t.Errorf("interior pixel = %v, want translucent tint", got)
	}
	if got := dst.RGBAAt(0, 0); got.R != 0 {
		t.Errorf("outside pixel = %v", got)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, uniform(3, 2, color.RGBA{1, 2, 3, 255})); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	rgba := ToRGBA(img)
	if rgba.Bounds().Dx() != 3 || rgba.RGBAAt(2, 1) != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("decoded %v %v", rgba.Bounds(), rgba.RGBAAt(2, 1))
	}
	if err := EncodePNG(&buf, nil); err != ErrNoImage {
		t.Errorf("EncodePNG(nil) = %v, want ErrNoImage", err)
	}
}

func TestIsSupportedFormat(t *testing.T) {
	for path, want := range map[string]bool{"a.PNG": true, "b.webp": true, "c.tif": true, "d.txt": false} {
		if IsSupportedFormat(path) != want {
			t.Errorf("IsSupportedFormat(%q) != %v", path, want)
		}
	}
}
