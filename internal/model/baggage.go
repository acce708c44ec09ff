// Package model defines the records exchanged with the registry service and
// the results produced by a training session.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"xsim/pkg/geometry"
)

// ClearCategoryID is the category of a bag that contains no threat.
const ClearCategoryID = 1

// View identifies one of the two X-ray projections.
type View int

const (
	ViewTop View = iota
	ViewSide
)

func (v View) String() string {
	switch v {
	case ViewTop:
		return "top"
	case ViewSide:
		return "side"
	default:
		return "unknown"
	}
}

// Views lists both projections in presentation order.
var Views = []View{ViewTop, ViewSide}

// Item is the registered threat item attached to a record, when known.
type Item struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// BaggageRecord is one bag presented to the operator.
type BaggageRecord struct {
	ID         int           `json:"id"`
	Code       string        `json:"code"`
	TopURL     string        `json:"top"`
	SideURL    string        `json:"side"`
	CategoryID int           `json:"itemCategoryID"`
	Position   *ItemPosition `json:"itemPos,omitempty"`
	Item       *Item         `json:"item,omitempty"`
}

// URL returns the image location for a view.
func (r BaggageRecord) URL(v View) string {
	if v == ViewSide {
		return r.SideURL
	}
	return r.TopURL
}

// ItemName returns the threat item's name, or "" when the record has none.
func (r BaggageRecord) ItemName() string {
	if r.Item == nil {
		return ""
	}
	return r.Item.Name
}

// UnmarshalJSON accepts itemPos as an object or a JSON-encoded string.
// A malformed position leaves Position nil rather than failing the record.
func (r *BaggageRecord) UnmarshalJSON(data []byte) error {
	type alias BaggageRecord
	var raw struct {
		alias
		ItemPos json.RawMessage `json:"itemPos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = BaggageRecord(raw.alias)
	r.Position = nil
	if pos, err := ParsePosition(raw.ItemPos); err == nil {
		r.Position = pos
	}
	return nil
}

// ErrNoPosition is returned by ParsePosition when no usable box is encoded.
var ErrNoPosition = errors.New("no item position")

// ItemPosition holds the threat bounding boxes in untransformed image pixels.
//
// The shared encoding stores one rectangle for both views, with Z giving the
// side view's vertical origin. The independent encoding stores a box per view.
type ItemPosition struct {
	X, Y, W, H float64
	Z          *float64

	Top  *geometry.Rect
	Side *geometry.Rect
}

// Independent reports whether the position uses per-view rectangles.
func (p ItemPosition) Independent() bool {
	return p.Top != nil || p.Side != nil
}

// Box returns the bounding box for a view. Shared positions without Z place
// the side box sideOffsetY pixels below the top box.
func (p ItemPosition) Box(v View, sideOffsetY float64) (geometry.Rect, bool) {
	if p.Independent() {
		r := p.Top
		if v == ViewSide {
			r = p.Side
		}
		if r == nil || r.Empty() {
			return geometry.Rect{}, false
		}
		return *r, true
	}

	box := geometry.Rect{X: p.X, Y: p.Y, W: p.W, H: p.H}
	if box.Empty() {
		return geometry.Rect{}, false
	}
	if v == ViewSide {
		if p.Z != nil {
			box.Y = *p.Z
		} else {
			box.Y += sideOffsetY
		}
	}
	return box, true
}

type rawPosition struct {
	X    *float64       `json:"x"`
	Y    *float64       `json:"y"`
	Z    *float64       `json:"z"`
	W    *float64       `json:"w"`
	H    *float64       `json:"h"`
	Top  *geometry.Rect `json:"top"`
	Side *geometry.Rect `json:"side"`
}

// ParsePosition decodes an itemPos value, unwrapping one level of string
// encoding.
func ParsePosition(data []byte) (*ItemPosition, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrNoPosition
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("failed to decode item position string: %w", err)
		}
		data = bytes.TrimSpace([]byte(inner))
		if len(data) == 0 || data[0] == '"' {
			return nil, ErrNoPosition
		}
	}

	var raw rawPosition
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode item position: %w", err)
	}
	if raw.Top != nil || raw.Side != nil {
		return &ItemPosition{Top: raw.Top, Side: raw.Side}, nil
	}
	if raw.X == nil || raw.Y == nil || raw.W == nil || raw.H == nil {
		return nil, ErrNoPosition
	}
	return &ItemPosition{X: *raw.X, Y: *raw.Y, Z: raw.Z, W: *raw.W, H: *raw.H}, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ItemPosition) UnmarshalJSON(data []byte) error {
	pos, err := ParsePosition(data)
	if err != nil {
		return err
	}
	*p = *pos
	return nil
}

// MarshalJSON writes the encoding the position was built with.
func (p ItemPosition) MarshalJSON() ([]byte, error) {
	if p.Independent() {
		return json.Marshal(struct {
			Top  *geometry.Rect `json:"top,omitempty"`
			Side *geometry.Rect `json:"side,omitempty"`
		}{p.Top, p.Side})
	}
	return json.Marshal(struct {
		X float64  `json:"x"`
		Y float64  `json:"y"`
		Z *float64 `json:"z,omitempty"`
		W float64  `json:"w"`
		H float64  `json:"h"`
	}{p.X, p.Y, p.Z, p.W, p.H})
}

// ThreatCategory is a selectable answer.
type ThreatCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
