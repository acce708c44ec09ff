package filter

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestKindString(t *testing.T) {
	want := map[Kind]string{
		Normal:           "Normal",
		Grayscale:        "B&W",
		Negative:         "NEG",
		OrganicIsolation: "O2",
		OrganicStrip:     "OS",
		Brightness:       "HI",
		SuperEnhance:     "SEN",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), s)
		}
	}
}

func TestApplyPerPixelFilters(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		in   color.RGBA
		want color.RGBA
	}{
		{"grayscale", Grayscale, color.RGBA{30, 60, 90, 255}, color.RGBA{60, 60, 60, 255}},
		{"negative", Negative, color.RGBA{0, 100, 255, 255}, color.RGBA{255, 155, 0, 255}},
		{"brightness", Brightness, color.RGBA{100, 200, 10, 255}, color.RGBA{150, 255, 15, 255}},
		{"organic isolation hits blue", OrganicIsolation, color.RGBA{20, 40, 200, 255}, color.RGBA{87, 87, 87, 255}},
		{"organic isolation keeps orange", OrganicIsolation, color.RGBA{220, 140, 40, 255}, color.RGBA{220, 140, 40, 255}},
		{"organic strip hits orange", OrganicStrip, color.RGBA{220, 140, 40, 255}, color.RGBA{133, 133, 133, 255}},
		{"organic strip keeps blue", OrganicStrip, color.RGBA{20, 40, 200, 255}, color.RGBA{20, 40, 200, 255}},
		{"normal leaves pixels", Normal, color.RGBA{1, 2, 3, 255}, color.RGBA{1, 2, 3, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := solid(3, 2, tt.in)
			Apply(tt.kind, img, Options{})
			if got := img.RGBAAt(1, 1); got != tt.want {
				t.Errorf("Apply(%v) pixel = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestNegativeTwiceIsIdentity(t *testing.T) {
	img := solid(4, 4, color.RGBA{12, 34, 56, 255})
	img.SetRGBA(2, 1, color.RGBA{200, 100, 0, 255})
	orig := append([]byte(nil), img.Pix...)

	Apply(Negative, img, Options{})
	Apply(Negative, img, Options{})

	if !bytes.Equal(img.Pix, orig) {
		t.Error("negative applied twice did not restore the image")
	}
}

func TestAlphaUntouched(t *testing.T) {
	img := solid(2, 2, color.RGBA{10, 20, 30, 77})
	for _, k := range []Kind{Grayscale, Negative, Brightness, SuperEnhance} {
		Apply(k, img, Options{})
		if a := img.RGBAAt(0, 0).A; a != 77 {
			t.Errorf("%v changed alpha to %d", k, a)
		}
	}
}

func TestSuperEnhanceSobelFlatRegion(t *testing.T) {
	img := solid(5, 5, color.RGBA{100, 100, 100, 255})
	Apply(SuperEnhance, img, Options{Enhance: EnhanceSobel})

	// No gradient in the interior: 100*1.1 - 10.
	if got := img.RGBAAt(2, 2); got.R != 100 || got.G != 100 || got.B != 100 {
		t.Errorf("interior pixel = %v, want 100 gray", got)
	}
	// The zero border produces a strong edge at the corner.
	if got := img.RGBAAt(0, 0); got.R != 255 {
		t.Errorf("corner pixel = %v, want saturated edge", got)
	}
}

func TestSuperEnhanceThreshold(t *testing.T) {
	img := solid(2, 1, color.RGBA{200, 200, 200, 255})
	img.SetRGBA(1, 0, color.RGBA{50, 50, 50, 255})
	Apply(SuperEnhance, img, Options{Enhance: EnhanceThreshold})

	if got := img.RGBAAt(0, 0); got.R != 255 {
		t.Errorf("bright pixel = %v, want boosted to 255", got)
	}
	if got := img.RGBAAt(1, 0); got.R != 30 {
		t.Errorf("dark pixel = %v, want darkened to 30", got)
	}
}

func TestApplyNoImage(t *testing.T) {
	Apply(Grayscale, nil, Options{})
	Apply(SuperEnhance, image.NewRGBA(image.Rectangle{}), Options{})
}

func TestApplySubImage(t *testing.T) {
	base := solid(4, 4, color.RGBA{10, 10, 10, 255})
	sub := base.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)
	Apply(Negative, sub, Options{})

	if got := base.RGBAAt(0, 0); got.R != 10 {
		t.Errorf("pixel outside sub-image changed: %v", got)
	}
	if got := base.RGBAAt(3, 3); got.R != 245 {
		t.Errorf("pixel inside sub-image = %v, want 245", got)
	}
}

func TestParseEnhanceMode(t *testing.T) {
	tests := []struct {
		in      string
		want    EnhanceMode
		wantErr bool
	}{
		{"", EnhanceSobel, false},
		{"Sobel", EnhanceSobel, false},
		{"threshold", EnhanceThreshold, false},
		{"blur", EnhanceSobel, true},
	}
	for _, tt := range tests {
		got, err := ParseEnhanceMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseEnhanceMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", Normal, false},
		{"normal", Normal, false},
		{"NEG", Negative, false},
		{"b&w", Grayscale, false},
		{"o2", OrganicIsolation, false},
		{"strip", OrganicStrip, false},
		{"HI", Brightness, false},
		{"sen", SuperEnhance, false},
		{"sepia", Normal, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v", tt.in, got, err)
		}
	}
}
