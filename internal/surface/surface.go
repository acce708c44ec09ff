// Package surface provides the pixel buffer that backs one X-ray view.
package surface

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"xsim/pkg/colorutil"
	"xsim/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrImageLoad wraps every failure to fetch or decode a view image.
var ErrImageLoad = errors.New("image load failed")

// Loader fetches and decodes an image by URL.
type Loader interface {
	LoadImage(ctx context.Context, url string) (image.Image, error)
}

// Load fetches url through l. Failures are wrapped with ErrImageLoad.
func Load(ctx context.Context, l Loader, url string) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", ErrImageLoad)
	}
	img, err := l.LoadImage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageLoad, url, err)
	}
	return img, nil
}

// Surface is an RGBA backing buffer. Draw calls mutate it synchronously;
// Snapshot may be called from any goroutine.
type Surface struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// New creates a white surface of the given backing size.
func New(width, height int) *Surface {
	s := &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	s.Clear()
	return s
}

// Size returns the backing width and height.
func (s *Surface) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

// Clear fills the surface with opaque white.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, s.img.Rect, &image.Uniform{colorutil.White}, image.Point{}, draw.Src)
}

// DrawImage scales src into r. Parts of r outside the surface are clipped.
func (s *Surface) DrawImage(src image.Image, r geometry.RectInt) {
	if src == nil || r.W <= 0 || r.H <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	xdraw.ApproxBiLinear.Scale(s.img, r.Image(), src, src.Bounds(), xdraw.Over, nil)
}

// DrawMarker draws the click marker, a magnifier glyph, centred on (x, y).
func (s *Surface) DrawMarker(x, y, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	radius := 12 * scale
	thickness := math.Max(2, 2*scale)

	s.mu.Lock()
	defer s.mu.Unlock()

	ring := func(px, py float64) bool {
		d := math.Hypot(px-x, py-y)
		return d >= radius-thickness && d <= radius
	}
	// Handle runs down-right from the ring at 45 degrees.
	hx0, hy0 := x+radius*math.Sqrt2/2, y+radius*math.Sqrt2/2
	handleLen := radius
	handle := func(px, py float64) bool {
		t := ((px - hx0) + (py - hy0)) / 2
		if t < 0 || t > handleLen/math.Sqrt2 {
			return false
		}
		dx := px - (hx0 + t)
		dy := py - (hy0 + t)
		return math.Hypot(dx, dy) <= thickness
	}

	extent := radius + handleLen + thickness
	minX, minY := int(math.Floor(x-radius-thickness)), int(math.Floor(y-radius-thickness))
	maxX, maxY := int(math.Ceil(x+extent)), int(math.Ceil(y+extent))
	b := s.img.Rect
	for py := max(minY, b.Min.Y); py < min(maxY, b.Max.Y); py++ {
		for px := max(minX, b.Min.X); px < min(maxX, b.Max.X); px++ {
			fx, fy := float64(px)+0.5, float64(py)+0.5
			if ring(fx, fy) || handle(fx, fy) {
				s.img.SetRGBA(px, py, colorutil.Red)
			}
		}
	}
}

// DrawLabel writes text with its baseline at (x, y) on a dark backing strip.
func (s *Surface) DrawLabel(x, y int, text string, c color.Color) {
	face := basicfont.Face7x13
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &font.Drawer{Dst: s.img, Src: image.NewUniform(c), Face: face}
	width := d.MeasureString(text).Ceil()
	strip := image.Rect(x-4, y-face.Ascent-3, x+width+4, y+face.Descent+3)
	draw.Draw(s.img, strip, &image.Uniform{color.RGBA{A: 160}}, image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

// Pixels returns a copy of the backing buffer.
func (s *Surface) Pixels() *image.RGBA {
	return s.Snapshot()
}

// PutPixels replaces the backing buffer contents with img, anchored at the origin.
func (s *Surface) PutPixels(img *image.RGBA) {
	if img == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, s.img.Rect, img, img.Rect.Min, draw.Src)
}

// Edit runs fn on the backing buffer while holding the write lock.
func (s *Surface) Edit(fn func(img *image.RGBA)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.img)
}

// Snapshot returns a copy that is safe to read on another goroutine.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}
