// Package fit centers a floor's room blocks in the viewport.
//
// [Center] keeps the current scale and moves the bounding box midpoint of all
// blocks onto the viewport midpoint. [Reset] first picks a device-class scale
// with [DefaultScale] and then centers. Both are pure; callers rerun them when
// a new floor is loaded or the viewport resizes.
package fit

import (
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
)

// Defaults chooses the scale [Reset] starts from.
type Defaults struct {
	// Scale is used on viewports at least Breakpoint wide.
	Scale float64
	// NarrowScale is used below Breakpoint.
	NarrowScale float64
	// Breakpoint is the viewport width, in screen pixels, separating narrow
	// devices from wide ones.
	Breakpoint float64
}

// DefaultDefaults matches a phone/desktop split at 768px.
var DefaultDefaults = Defaults{Scale: 1.0, NarrowScale: 0.6, Breakpoint: 768}

// DefaultScale returns the clamped starting scale for the viewport.
func DefaultScale(viewport geom.Size, d Defaults) float64 {
	if viewport.Width > 0 && viewport.Width < d.Breakpoint {
		return geom.ClampScale(d.NarrowScale)
	}
	return geom.ClampScale(d.Scale)
}

// Center returns the offset that puts the midpoint of the blocks' bounding
// box at the viewport midpoint at the given scale. With no blocks, or a zero
// scale, it returns current unchanged.
func Center(blocks []floorplan.RoomBlock, viewport geom.Size, scale float64, current geom.Point) geom.Point {
	box, ok := geom.Bounds(floorplan.Rects(blocks))
	if !ok || scale == 0 {
		return current
	}
	c := box.Center()
	return geom.Point{
		X: (viewport.Width/2 - c.X*scale) / scale,
		Y: (viewport.Height/2 - c.Y*scale) / scale,
	}
}

// Reset returns the transform a "reset view" control restores: the default
// scale for the viewport with the blocks centered. With no blocks the offset
// of current is kept.
func Reset(blocks []floorplan.RoomBlock, viewport geom.Size, d Defaults, current geom.Transform) geom.Transform {
	scale := DefaultScale(viewport, d)
	return geom.Transform{
		Scale:  scale,
		Offset: Center(blocks, viewport, scale, current.Offset),
	}
}
