// Package geom provides the coordinate model shared by the floor-plan viewer.
//
// # Coordinate Spaces
//
// Room blocks live in layout space: abstract units with the origin at the
// top-left corner and y growing downward. The viewer draws them in screen
// space, which is layout space shifted by an offset and then scaled:
//
//	screen = (layout + offset) * scale
//
// Panning adds the pointer delta to the offset directly. [ToScreen] and
// [ToLayout] convert in either direction and are exact inverses for any
// valid [Transform].
//
// # Scale Bounds
//
// Every scale the viewer stores passes through [ClampScale], which keeps it
// inside [MinScale, MaxScale]. Clamping is idempotent and maps NaN to
// [MinScale] so a degenerate pinch can never poison the transform.
package geom
