package image

import (
	"image"
	"image/color"
	"image/draw"

	"xsim/internal/model"
	"xsim/pkg/colorutil"
	"xsim/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// BlendMode specifies how the item overlay is combined with the background.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	default:
		return "Unknown"
	}
}

// Default authoring canvas used when no background is loaded, and the fixed
// canvas of the pre-existing (rectangle only) mode.
const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

// Options controls how an item is masked and blended.
type Options struct {
	// Threshold is the luma cutoff; item pixels brighter than it become transparent.
	Threshold float64
	// Opacity scales the alpha of surviving item pixels (0.0 - 1.0).
	Opacity float64
	// Multiply darkens the background under the item instead of painting over it.
	Multiply bool
}

// DefaultOptions returns the authoring defaults.
func DefaultOptions() Options {
	return Options{Threshold: 230, Opacity: 1, Multiply: true}
}

// BlendMode returns the blend implied by the options.
func (o Options) BlendMode() BlendMode {
	if o.Multiply {
		return BlendMultiply
	}
	return BlendNormal
}

// MaskItem scales item to w x h and punches out every pixel whose luma
// exceeds the threshold. Remaining pixels have their alpha scaled by opacity.
// The result is non-premultiplied.
func MaskItem(item image.Image, w, h int, opts Options) *image.NRGBA {
	if item == nil || w <= 0 || h <= 0 {
		return nil
	}
	scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), item, item.Bounds(), xdraw.Src, nil)

	opacity := opts.Opacity
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}

	for y := 0; y < h; y++ {
		row := scaled.Pix[y*scaled.Stride : y*scaled.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			l := colorutil.Luma(float64(row[x]), float64(row[x+1]), float64(row[x+2]))
			if l > opts.Threshold {
				row[x+3] = 0
				continue
			}
			row[x+3] = colorutil.Clamp8(float64(row[x+3]) * opacity)
		}
	}
	return scaled
}

// Backdrop returns an opaque canvas holding bg at its native size, or a
// DefaultCanvasWidth x DefaultCanvasHeight slate canvas when bg is nil.
func Backdrop(bg image.Image) *image.RGBA {
	if bg == nil {
		dst := image.NewRGBA(image.Rect(0, 0, DefaultCanvasWidth, DefaultCanvasHeight))
		draw.Draw(dst, dst.Bounds(), &image.Uniform{colorutil.Slate}, image.Point{}, draw.Src)
		return dst
	}
	b := bg.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{colorutil.Black}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), bg, b.Min, draw.Over)
	return dst
}

// FittedBackdrop returns bg stretched to exactly w x h, or a dark canvas of
// that size when bg is nil.
func FittedBackdrop(bg image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg == nil {
		draw.Draw(dst, dst.Bounds(), &image.Uniform{color.RGBA{R: 2, G: 6, B: 23, A: 255}}, image.Point{}, draw.Src)
		return dst
	}
	xdraw.BiLinear.Scale(dst, dst.Bounds(), bg, bg.Bounds(), xdraw.Src, nil)
	return dst
}

// Composite draws bg, then the masked item at `at`, and returns the result.
// at.W and at.H give the size the item is scaled to.
func Composite(bg, item image.Image, at geometry.RectInt, opts Options) *image.RGBA {
	dst := Backdrop(bg)
	overlay := MaskItem(item, at.W, at.H, opts)
	if overlay == nil {
		return dst
	}
	blendOnto(dst, overlay, at.X, at.Y, opts.BlendMode())
	return dst
}

// Placement returns the integer rectangle the item occupies on a view: (x, y)
// on the top view and (x, z) on the side view.
func Placement(pos model.ItemPosition, v model.View) (geometry.RectInt, bool) {
	box, ok := pos.Box(v, 0)
	if !ok {
		return geometry.RectInt{}, false
	}
	return box.Round(), true
}

// CompositeView composites item onto bg at the placement for view v.
func CompositeView(bg, item image.Image, pos model.ItemPosition, v model.View, opts Options) *image.RGBA {
	at, ok := Placement(pos, v)
	if !ok {
		return Backdrop(bg)
	}
	return Composite(bg, item, at, opts)
}

// blendOnto composites a non-premultiplied overlay onto an opaque dst.
func blendOnto(dst *image.RGBA, src *image.NRGBA, offsetX, offsetY int, mode BlendMode) {
	sb := src.Bounds()
	db := dst.Bounds()

	for y := 0; y < sb.Dy(); y++ {
		dy := y + offsetY
		if dy < db.Min.Y || dy >= db.Max.Y {
			continue
		}
		for x := 0; x < sb.Dx(); x++ {
			dx := x + offsetX
			if dx < db.Min.X || dx >= db.Max.X {
				continue
			}
			si := y*src.Stride + x*4
			alpha := float64(src.Pix[si+3]) / 255
			if alpha == 0 {
				continue
			}
			di := dst.PixOffset(dx, dy)
			for c := 0; c < 3; c++ {
				s := float64(src.Pix[si+c])
				d := float64(dst.Pix[di+c])
				blended := s
				if mode == BlendMultiply {
					blended = s * d / 255
				}
				dst.Pix[di+c] = colorutil.Clamp8(blended*alpha + d*(1-alpha))
			}
			dst.Pix[di+3] = 255
		}
	}
}

// OutlineRect draws a 2px outline with a translucent fill, used to preview
// a recorded threat zone.
func OutlineRect(dst *image.RGBA, r geometry.RectInt, c color.RGBA) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	fill := color.NRGBA{R: c.R, G: c.G, B: c.B, A: 51}
	draw.Draw(dst, r.Image(), &image.Uniform{fill}, image.Point{}, draw.Over)

	edges := []image.Rectangle{
		image.Rect(r.X, r.Y, r.X+r.W, r.Y+2),
		image.Rect(r.X, r.Y+r.H-2, r.X+r.W, r.Y+r.H),
		image.Rect(r.X, r.Y, r.X+2, r.Y+r.H),
		image.Rect(r.X+r.W-2, r.Y, r.X+r.W, r.Y+r.H),
	}
	for _, e := range edges {
		draw.Draw(dst, e, &image.Uniform{c}, image.Point{}, draw.Src)
	}
}
