package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"xsim/internal/model"
	"xsim/pkg/geometry"
)

// ErrNoItem is returned when a composite is requested without item imagery.
var ErrNoItem = errors.New("no item image")

// previewColor outlines threat boxes in previews.
var previewColor = color.RGBA{R: 239, G: 68, B: 68, A: 255}

// Authored is a finished bag: both views and the position to record.
type Authored struct {
	Top      *image.RGBA
	Side     *image.RGBA
	Position model.ItemPosition
}

// AuthorShared composites the item onto both backgrounds at a shared
// rectangle: (x, y) on the top view and (x, z) on the side view. sideItem
// falls back to topItem when nil.
func AuthorShared(topBG, sideBG, topItem, sideItem image.Image, pos model.ItemPosition, opts Options) (Authored, error) {
	if topItem == nil {
		return Authored{}, ErrNoItem
	}
	if sideItem == nil {
		sideItem = topItem
	}
	if pos.Independent() {
		return Authored{}, fmt.Errorf("shared composite needs a shared rectangle")
	}
	if pos.Z == nil {
		z := pos.Y
		pos.Z = &z
	}
	for _, v := range model.Views {
		if _, ok := Placement(pos, v); !ok {
			return Authored{}, fmt.Errorf("%s view: %w", v, model.ErrNoPosition)
		}
	}
	return Authored{
		Top:      CompositeView(topBG, topItem, pos, model.ViewTop, opts),
		Side:     CompositeView(sideBG, sideItem, pos, model.ViewSide, opts),
		Position: pos,
	}, nil
}

// AuthorPreexisting takes already composited views, fits them to the
// default canvas, and records an independent rectangle for each.
func AuthorPreexisting(top, side image.Image, topRect, sideRect geometry.Rect) (Authored, error) {
	if top == nil || side == nil {
		return Authored{}, ErrNoImage
	}
	topRect, sideRect = topRect.Normalized(), sideRect.Normalized()
	if topRect.Empty() || sideRect.Empty() {
		return Authored{}, model.ErrNoPosition
	}
	return Authored{
		Top:      FittedBackdrop(top, DefaultCanvasWidth, DefaultCanvasHeight),
		Side:     FittedBackdrop(side, DefaultCanvasWidth, DefaultCanvasHeight),
		Position: model.ItemPosition{Top: &topRect, Side: &sideRect},
	}, nil
}

// Preview returns copies of both views with the threat boxes outlined.
func (a Authored) Preview() (top, side *image.RGBA) {
	out := [2]*image.RGBA{}
	for _, v := range model.Views {
		src := a.Top
		if v == model.ViewSide {
			src = a.Side
		}
		if src == nil {
			continue
		}
		dst := image.NewRGBA(src.Bounds())
		copy(dst.Pix, src.Pix)
		if r, ok := Placement(a.Position, v); ok {
			OutlineRect(dst, r, previewColor)
		}
		out[v] = dst
	}
	return out[model.ViewTop], out[model.ViewSide]
}
