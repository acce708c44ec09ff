package model

import (
	"encoding/json"
	"errors"
	"testing"

	"xsim/pkg/geometry"
)

func TestBaggageRecordItemPosEncodings(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantTop  geometry.Rect
		wantSide geometry.Rect
		noBox    bool
	}{
		{
			name:     "object with z",
			body:     `{"id":7,"itemCategoryID":3,"itemPos":{"x":10,"y":20,"z":40,"w":5,"h":6}}`,
			wantTop:  geometry.Rect{X: 10, Y: 20, W: 5, H: 6},
			wantSide: geometry.Rect{X: 10, Y: 40, W: 5, H: 6},
		},
		{
			name:     "string without z uses side offset",
			body:     `{"id":7,"itemCategoryID":3,"itemPos":"{\"x\":10,\"y\":20,\"w\":5,\"h\":6}"}`,
			wantTop:  geometry.Rect{X: 10, Y: 20, W: 5, H: 6},
			wantSide: geometry.Rect{X: 10, Y: 197, W: 5, H: 6},
		},
		{
			name:     "independent rects",
			body:     `{"id":7,"itemPos":{"top":{"x":1,"y":2,"w":3,"h":4},"side":{"x":5,"y":6,"w":7,"h":8}}}`,
			wantTop:  geometry.Rect{X: 1, Y: 2, W: 3, H: 4},
			wantSide: geometry.Rect{X: 5, Y: 6, W: 7, H: 8},
		},
		{name: "malformed string", body: `{"id":7,"itemPos":"{not json"}`, noBox: true},
		{name: "missing", body: `{"id":7}`, noBox: true},
		{name: "null", body: `{"id":7,"itemPos":null}`, noBox: true},
		{name: "partial", body: `{"id":7,"itemPos":{"x":1,"y":2}}`, noBox: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec BaggageRecord
			if err := json.Unmarshal([]byte(tt.body), &rec); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if rec.ID != 7 {
				t.Errorf("ID = %d, want 7", rec.ID)
			}
			if tt.noBox {
				if rec.Position != nil {
					t.Errorf("Position = %+v, want nil", rec.Position)
				}
				return
			}
			if rec.Position == nil {
				t.Fatal("Position is nil")
			}
			if got, ok := rec.Position.Box(ViewTop, 177); !ok || got != tt.wantTop {
				t.Errorf("top box = %v %v, want %v", got, ok, tt.wantTop)
			}
			if got, ok := rec.Position.Box(ViewSide, 177); !ok || got != tt.wantSide {
				t.Errorf("side box = %v %v, want %v", got, ok, tt.wantSide)
			}
		})
	}
}

func TestBaggageRecordFields(t *testing.T) {
	body := `{"id":3,"code":"2024-X","top":"/t.png","side":"/s.png","itemCategoryID":1,"item":{"name":"Knife"}}`
	var rec BaggageRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.URL(ViewTop) != "/t.png" || rec.URL(ViewSide) != "/s.png" {
		t.Errorf("urls = %q %q", rec.URL(ViewTop), rec.URL(ViewSide))
	}
	if rec.CategoryID != ClearCategoryID || rec.Code != "2024-X" || rec.ItemName() != "Knife" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestIndependentMissingView(t *testing.T) {
	pos := ItemPosition{Top: &geometry.Rect{X: 1, Y: 1, W: 2, H: 2}}
	if _, ok := pos.Box(ViewSide, 0); ok {
		t.Error("side box reported for a position without one")
	}
}

func TestParsePositionEmpty(t *testing.T) {
	for _, in := range []string{"", "null", `""`} {
		if _, err := ParsePosition([]byte(in)); !errors.Is(err, ErrNoPosition) {
			t.Errorf("ParsePosition(%q) err = %v, want ErrNoPosition", in, err)
		}
	}
}

func TestItemPositionMarshal(t *testing.T) {
	z := 50.0
	shared := ItemPosition{X: 1, Y: 2, Z: &z, W: 3, H: 4}
	data, err := json.Marshal(shared)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"x":1,"y":2,"z":50,"w":3,"h":4}` {
		t.Errorf("shared json = %s", data)
	}

	indep := ItemPosition{Top: &geometry.Rect{X: 1, Y: 2, W: 3, H: 4}, Side: &geometry.Rect{X: 5, Y: 6, W: 7, H: 8}}
	data, err = json.Marshal(indep)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"top":{"x":1,"y":2,"w":3,"h":4},"side":{"x":5,"y":6,"w":7,"h":8}}` {
		t.Errorf("independent json = %s", data)
	}
}
