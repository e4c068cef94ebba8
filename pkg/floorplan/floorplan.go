// Package floorplan defines the room blocks a viewer draws for one floor.
//
// Geometry and identity are fixed once a floor is loaded. The only
// attribute that changes while a floor is on screen is [RoomBlock.LightOn],
// which the realtime package patches in place.
package floorplan

import (
	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
)

// RoomBlock is one room on the floor plan.
type RoomBlock struct {
	ID      string    `json:"id" toml:"id" bson:"id"`
	Name    string    `json:"name" toml:"name" bson:"name"`
	Rect    geom.Rect `json:"rect" toml:"rect" bson:"rect"`
	LightOn bool      `json:"lightOn" toml:"light_on" bson:"lightOn"`
}

// Floor is an ordered set of room blocks. Later blocks draw on top.
type Floor struct {
	ID     string      `json:"id" toml:"id" bson:"_id"`
	Name   string      `json:"name" toml:"name" bson:"name"`
	Blocks []RoomBlock `json:"blocks" toml:"rooms" bson:"blocks"`
}

// Empty reports whether the floor has no rooms to draw.
func (f *Floor) Empty() bool { return f == nil || len(f.Blocks) == 0 }

// Rects returns the layout rectangle of every block in order.
func Rects(blocks []RoomBlock) []geom.Rect {
	rects := make([]geom.Rect, len(blocks))
	for i, b := range blocks {
		rects[i] = b.Rect
	}
	return rects
}

// Index returns the position of the block with id, or -1.
func Index(blocks []RoomBlock, id string) int {
	for i := range blocks {
		if blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// HitTest returns the index of the topmost block containing p, a point in
// layout space, or -1.
func HitTest(blocks []RoomBlock, p geom.Point) int {
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i].Rect.Contains(p) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of blocks.
func Clone(blocks []RoomBlock) []RoomBlock {
	if blocks == nil {
		return nil
	}
	out := make([]RoomBlock, len(blocks))
	copy(out, blocks)
	return out
}

// Validate rejects floors a viewer cannot draw unambiguously: a bad id,
// blocks without ids, duplicated ids or negative sizes.
func (f *Floor) Validate() error {
	if err := errors.ValidateFloorID(f.ID); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(f.Blocks))
	for i, b := range f.Blocks {
		if b.ID == "" {
			return errors.New(errors.ErrCodeInvalidLayout, "floor %s: room %d has no id", f.ID, i)
		}
		if _, dup := seen[b.ID]; dup {
			return errors.New(errors.ErrCodeInvalidLayout, "floor %s: duplicate room id %q", f.ID, b.ID)
		}
		seen[b.ID] = struct{}{}
		if b.Rect.Width < 0 || b.Rect.Height < 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "floor %s: room %q has negative size", f.ID, b.ID)
		}
	}
	return nil
}
