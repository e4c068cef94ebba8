package fit

import (
	"testing"

	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
)

func twoRooms() []floorplan.RoomBlock {
	return []floorplan.RoomBlock{
		{ID: "a", Rect: geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}},
		{ID: "b", Rect: geom.Rect{X: 200, Y: 0, Width: 100, Height: 100}},
	}
}

func TestCenter(t *testing.T) {
	vp := geom.Size{Width: 400, Height: 400}
	tests := []struct {
		name   string
		blocks []floorplan.RoomBlock
		scale  float64
		want   geom.Point
	}{
		{"two rooms at scale 1", twoRooms(), 1, geom.Point{X: 50, Y: 150}},
		{"two rooms at scale 2", twoRooms(), 2, geom.Point{X: -50, Y: 50}},
		{"single room", twoRooms()[:1], 1, geom.Point{X: 150, Y: 150}},
		{"no rooms keeps offset", nil, 1, geom.Point{X: 7, Y: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Center(tt.blocks, vp, tt.scale, geom.Point{X: 7, Y: 9})
			if got != tt.want {
				t.Errorf("Center() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCenterPlacesBoxMidpointAtViewportMidpoint(t *testing.T) {
	vp := geom.Size{Width: 1024, Height: 600}
	blocks := []floorplan.RoomBlock{
		{ID: "a", Rect: geom.Rect{X: 13, Y: 40, Width: 90, Height: 60}},
		{ID: "b", Rect: geom.Rect{X: 300, Y: 210, Width: 45, Height: 80}},
	}
	for _, scale := range []float64{0.5, 0.75, 1.3, 2} {
		tr := geom.Transform{Scale: scale, Offset: Center(blocks, vp, scale, geom.Point{})}
		box, _ := geom.Bounds(floorplan.Rects(blocks))
		got := geom.ToScreen(box.Center(), tr)
		if d := geom.Distance(got, geom.Point{X: 512, Y: 300}); d > 1e-9 {
			t.Errorf("scale %v: box center on screen at %v", scale, got)
		}
	}
}

func TestCenterIdempotent(t *testing.T) {
	vp := geom.Size{Width: 400, Height: 300}
	first := Center(twoRooms(), vp, 1.4, geom.Point{})
	second := Center(twoRooms(), vp, 1.4, first)
	if first != second {
		t.Errorf("Center() not idempotent: %v then %v", first, second)
	}
}

func TestDefaultScale(t *testing.T) {
	tests := []struct {
		name  string
		width float64
		want  float64
	}{
		{"desktop", 1280, 1.0},
		{"at breakpoint", 768, 1.0},
		{"phone", 390, 0.6},
		{"unknown size", 0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultScale(geom.Size{Width: tt.width, Height: 800}, DefaultDefaults); got != tt.want {
				t.Errorf("DefaultScale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultScaleClamps(t *testing.T) {
	d := Defaults{Scale: 5, NarrowScale: 0.1, Breakpoint: 600}
	if got := DefaultScale(geom.Size{Width: 1000}, d); got != geom.MaxScale {
		t.Errorf("wide = %v, want %v", got, geom.MaxScale)
	}
	if got := DefaultScale(geom.Size{Width: 300}, d); got != geom.MinScale {
		t.Errorf("narrow = %v, want %v", got, geom.MinScale)
	}
}

func TestReset(t *testing.T) {
	vp := geom.Size{Width: 400, Height: 400}
	got := Reset(twoRooms(), vp, DefaultDefaults, geom.Transform{Scale: 1.9, Offset: geom.Point{X: -999}})
	want := geom.Transform{Scale: 1, Offset: geom.Point{X: 50, Y: 150}}
	if got != want {
		t.Errorf("Reset() = %v, want %v", got, want)
	}

	empty := Reset(nil, vp, DefaultDefaults, geom.Transform{Scale: 1.9, Offset: geom.Point{X: 3}})
	if empty.Offset != (geom.Point{X: 3}) || empty.Scale != 1 {
		t.Errorf("Reset(empty) = %v", empty)
	}
}
