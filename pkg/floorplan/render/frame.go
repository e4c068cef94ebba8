package render

import (
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/viewer"
)

// Empty-state copy.
const (
	EmptyMessage = "No rooms on this floor yet"
	EditorCTA    = "Open editor"
)

// Block is a room in screen space.
type Block struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Rect    geom.Rect `json:"rect"`
	LightOn bool      `json:"lightOn"`
}

// Frame is everything a surface draws for one state.
type Frame struct {
	FloorID     string         `json:"floorId"`
	FloorName   string         `json:"floorName,omitempty"`
	Viewport    geom.Size      `json:"viewport"`
	Transform   geom.Transform `json:"transform"`
	ZoomPercent int            `json:"zoomPercent"`
	ShowReset   bool           `json:"showReset"`
	Empty       bool           `json:"empty"`
	Blocks      []Block        `json:"blocks"`
	Version     uint64         `json:"version"`
}

// NewFrame projects s into screen space.
func NewFrame(s viewer.State) Frame {
	f := Frame{
		FloorID:     s.FloorID,
		FloorName:   s.FloorName,
		Viewport:    s.Viewport,
		Transform:   s.Transform,
		ZoomPercent: s.Transform.ZoomPercent(),
		ShowReset:   s.ResetVisible(),
		Empty:       s.Empty(),
		Blocks:      make([]Block, len(s.Blocks)),
		Version:     s.Version,
	}
	for i, b := range s.Blocks {
		f.Blocks[i] = Block{
			ID:      b.ID,
			Name:    b.Name,
			Rect:    geom.RectToScreen(b.Rect, s.Transform),
			LightOn: b.LightOn,
		}
	}
	return f
}

// HitTest returns the id of the topmost room drawn at screen point p.
func (f Frame) HitTest(p geom.Point) (string, bool) {
	for i := len(f.Blocks) - 1; i >= 0; i-- {
		if f.Blocks[i].Rect.Contains(p) {
			return f.Blocks[i].ID, true
		}
	}
	return "", false
}

// LitCount returns how many rooms have their light on.
func (f Frame) LitCount() int {
	n := 0
	for _, b := range f.Blocks {
		if b.LightOn {
			n++
		}
	}
	return n
}
