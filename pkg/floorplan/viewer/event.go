package viewer

import (
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/gesture"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
)

// Event is one input to [Model.Handle].
type Event interface {
	event()
}

// InputEvent is a normalized pointer or touch event.
type InputEvent struct {
	Input gesture.Input
}

// ResizeEvent reports a new viewport size in screen pixels.
type ResizeEvent struct {
	Size geom.Size
}

// MessageEvent is a raw push message, decoded by the model.
type MessageEvent struct {
	Payload []byte
}

// PatchEvent is an already decoded patch.
type PatchEvent struct {
	Patch realtime.Patch
}

// ResetEvent restores the default scale and centers the floor.
type ResetEvent struct{}

// ZoomEvent multiplies the scale by Factor.
type ZoomEvent struct {
	Factor float64
}

// PanEvent shifts the offset by a screen-space delta.
type PanEvent struct {
	Delta geom.Point
}

// LoadEvent replaces the floor. The new blocks are centered at the current
// scale.
type LoadEvent struct {
	Floor *floorplan.Floor
}

func (InputEvent) event()   {}
func (ResizeEvent) event()  {}
func (MessageEvent) event() {}
func (PatchEvent) event()   {}
func (ResetEvent) event()   {}
func (ZoomEvent) event()    {}
func (PanEvent) event()     {}
func (LoadEvent) event()    {}

// ZoomIn returns the event for one zoom-in step.
func ZoomIn(step float64) ZoomEvent { return ZoomEvent{Factor: 1 + step} }

// ZoomOut returns the event for one zoom-out step, the inverse of ZoomIn.
func ZoomOut(step float64) ZoomEvent { return ZoomEvent{Factor: 1 / (1 + step)} }
