package viewer

import (
	"reflect"
	"testing"

	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/fit"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/gesture"
	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
)

var square = geom.Size{Width: 400, Height: 400}

// wide treats the 400px test viewport as a desktop.
var wide = fit.Defaults{Scale: 1, NarrowScale: 0.6, Breakpoint: 300}

func newModel(f *floorplan.Floor, opts ...Option) *Model {
	return NewModel(f, square, append([]Option{WithDefaults(wide)}, opts...)...)
}

func testFloor() *floorplan.Floor {
	return &floorplan.Floor{
		ID:   "ground",
		Name: "Ground floor",
		Blocks: []floorplan.RoomBlock{
			{ID: "kitchen", Name: "Kitchen", Rect: geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}},
			{ID: "living", Name: "Living", Rect: geom.Rect{X: 200, Y: 0, Width: 100, Height: 100}},
		},
	}
}

func pt(x, y float64) geom.Point { return geom.Point{X: x, Y: y} }

func input(phase gesture.Phase, ps ...geom.Point) InputEvent {
	return InputEvent{Input: gesture.Input{Phase: phase, Contacts: ps}}
}

func tap(m *Model, p geom.Point) {
	m.Handle(input(gesture.Start, p))
	m.Handle(input(gesture.End))
}

func TestNewModelCentersFloor(t *testing.T) {
	s := newModel(testFloor()).State()
	want := geom.Transform{Scale: 1, Offset: pt(50, 150)}
	if s.Transform != want {
		t.Errorf("Transform = %v, want %v", s.Transform, want)
	}
	if s.ResetVisible() {
		t.Error("reset control visible at the home view")
	}
}

func TestNewModelNarrowViewport(t *testing.T) {
	s := NewModel(testFloor(), geom.Size{Width: 360, Height: 640}).State()
	if s.Transform.Scale != 0.6 {
		t.Errorf("Scale = %v, want 0.6", s.Transform.Scale)
	}
}

func TestPan(t *testing.T) {
	m := newModel(testFloor())
	before := m.State().Transform

	m.Handle(input(gesture.Start, pt(100, 100)))
	m.Handle(input(gesture.Move, pt(130, 115)))
	m.Handle(input(gesture.End))

	after := m.State()
	if got := after.Transform.Offset.Sub(before.Offset); got != pt(30, 15) {
		t.Errorf("offset moved by %v, want {30 15}", got)
	}
	if after.Transform.Scale != before.Scale {
		t.Errorf("Scale = %v, want %v", after.Transform.Scale, before.Scale)
	}
	if !after.ResetVisible() {
		t.Error("reset control hidden after panning")
	}
}

func TestPinch(t *testing.T) {
	m := newModel(testFloor())
	m.Handle(input(gesture.Start, pt(100, 100), pt(200, 100)))
	m.Handle(input(gesture.Move, pt(100, 100), pt(250, 100)))
	if got := m.State().Transform.Scale; got != 1.5 {
		t.Errorf("Scale = %v, want 1.5", got)
	}
	if got := m.State().Gesture; got != gesture.Pinching {
		t.Errorf("Gesture = %v, want pinching", got)
	}
}

func TestTapOpensRoom(t *testing.T) {
	var intents Intents
	m := newModel(testFloor(), WithRouter(&intents))

	// living spans layout x 200..300; on screen (x+50)*1 = 250..350
	tap(m, pt(300, 200))
	tap(m, pt(210, 200)) // gap between the rooms

	got := intents.Drain()
	want := []Intent{{Kind: IntentRoom, Target: "living"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("intents = %v, want %v", got, want)
	}
}

func TestDragDoesNotOpenRoom(t *testing.T) {
	var intents Intents
	m := newModel(testFloor(), WithRouter(&intents))

	m.Handle(input(gesture.Start, pt(300, 200)))
	m.Handle(input(gesture.Move, pt(340, 200)))
	m.Handle(input(gesture.End))

	if got := intents.Drain(); len(got) != 0 {
		t.Errorf("intents = %v, want none", got)
	}
}

func TestTapOnEmptyFloorOpensEditor(t *testing.T) {
	var intents Intents
	m := newModel(&floorplan.Floor{ID: "attic"}, WithRouter(&intents))
	if !m.State().Empty() {
		t.Fatal("floor without rooms is not empty")
	}

	tap(m, pt(10, 10))

	want := []Intent{{Kind: IntentEditor, Target: "attic"}}
	if got := intents.Drain(); !reflect.DeepEqual(got, want) {
		t.Errorf("intents = %v, want %v", got, want)
	}
}

func TestPatchChangesOnlyLight(t *testing.T) {
	m := newModel(testFloor())
	before := m.State()

	if !m.Handle(PatchEvent{Patch: realtime.LightPatch("kitchen", true)}) {
		t.Fatal("Handle() reported no change")
	}

	after := m.State()
	want := floorplan.Clone(before.Blocks)
	want[0].LightOn = true
	if !reflect.DeepEqual(after.Blocks, want) {
		t.Errorf("Blocks = %+v, want %+v", after.Blocks, want)
	}
	if after.Transform != before.Transform {
		t.Errorf("Transform changed to %v", after.Transform)
	}
}

func TestPatchRepeatedIsNotAChange(t *testing.T) {
	m := newModel(testFloor())
	m.Handle(PatchEvent{Patch: realtime.LightPatch("kitchen", true)})
	if m.Handle(PatchEvent{Patch: realtime.LightPatch("kitchen", true)}) {
		t.Error("re-delivered patch reported a change")
	}
}

func TestDroppedMessages(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"unknown room", `{"roomId":"garage","lightOn":true}`},
		{"malformed", `{"roomId":`},
		{"no attributes", `{"roomId":"kitchen"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(testFloor())
			before := m.State()
			if m.Handle(MessageEvent{Payload: []byte(tt.payload)}) {
				t.Error("Handle() reported a change")
			}
			if !reflect.DeepEqual(m.State(), before) {
				t.Errorf("state changed: %+v", m.State())
			}
		})
	}
}

func TestResizeRecenters(t *testing.T) {
	m := newModel(testFloor())
	m.Handle(ResizeEvent{Size: geom.Size{Width: 800, Height: 400}})
	if got := m.State().Transform.Offset; got != pt(250, 150) {
		t.Errorf("Offset = %v, want {250 150}", got)
	}
	if m.Handle(ResizeEvent{Size: geom.Size{Width: 800, Height: 400}}) {
		t.Error("same size reported a change")
	}
}

func TestResetRestoresHome(t *testing.T) {
	m := newModel(testFloor())
	home := m.State().Transform

	m.Handle(ZoomIn(0.5))
	m.Handle(PanEvent{Delta: pt(-40, 12)})
	if m.State().Transform == home {
		t.Fatal("transform did not change")
	}

	m.Handle(ResetEvent{})
	if got := m.State().Transform; got != home {
		t.Errorf("Transform = %v, want %v", got, home)
	}
}

func TestZoomSteps(t *testing.T) {
	m := newModel(testFloor())
	m.Handle(ZoomIn(0.25))
	if got := m.State().Transform.ZoomPercent(); got != 125 {
		t.Errorf("ZoomPercent() = %d, want 125", got)
	}
	m.Handle(ZoomOut(0.25))
	if got := m.State().Transform.ZoomPercent(); got != 100 {
		t.Errorf("ZoomPercent() = %d, want 100", got)
	}
	for i := 0; i < 20; i++ {
		m.Handle(ZoomIn(0.25))
	}
	if got := m.State().Transform.Scale; got != geom.MaxScale {
		t.Errorf("Scale = %v, want %v", got, geom.MaxScale)
	}
	if m.Handle(ZoomEvent{Factor: 0}) {
		t.Error("zero zoom factor reported a change")
	}
}

func TestLoadRecentersNewFloor(t *testing.T) {
	m := newModel(nil)
	if !m.State().Empty() {
		t.Fatal("nil floor is not empty")
	}
	m.Handle(LoadEvent{Floor: testFloor()})
	s := m.State()
	if s.FloorID != "ground" || len(s.Blocks) != 2 {
		t.Fatalf("state = %+v", s)
	}
	if s.Transform.Offset != pt(50, 150) {
		t.Errorf("Offset = %v, want {50 150}", s.Transform.Offset)
	}
}

func TestListenerSeesEveryChange(t *testing.T) {
	m := newModel(testFloor())
	var versions []uint64
	cancel := m.Subscribe(func(s State) { versions = append(versions, s.Version) })

	m.Handle(PanEvent{Delta: pt(1, 0)})
	m.Handle(PatchEvent{Patch: realtime.LightPatch("garage", true)})
	m.Handle(PatchEvent{Patch: realtime.LightPatch("living", true)})
	cancel()
	m.Handle(PanEvent{Delta: pt(1, 0)})

	if want := []uint64{1, 2}; !reflect.DeepEqual(versions, want) {
		t.Errorf("versions = %v, want %v", versions, want)
	}
}

func TestStateIsACopy(t *testing.T) {
	m := newModel(testFloor())
	s := m.State()
	s.Blocks[0].LightOn = true
	if m.State().Blocks[0].LightOn {
		t.Error("mutating a snapshot changed the model")
	}
}

func TestClosedModelIgnoresEvents(t *testing.T) {
	m := newModel(testFloor())
	notified := false
	m.Subscribe(func(State) { notified = true })
	m.Close()
	before := m.State()

	events := []Event{
		PatchEvent{Patch: realtime.LightPatch("kitchen", true)},
		ResizeEvent{Size: geom.Size{Width: 10, Height: 10}},
		PanEvent{Delta: pt(5, 5)},
		ZoomEvent{Factor: 2},
	}
	for _, ev := range events {
		if m.Handle(ev) {
			t.Errorf("Handle(%T) changed a closed model", ev)
		}
	}
	if !reflect.DeepEqual(m.State(), before) || notified {
		t.Error("closed model mutated or notified")
	}
}

func TestFirstResizeUsesResetView(t *testing.T) {
	m := NewModel(testFloor(), geom.Size{})
	m.Handle(ResizeEvent{Size: geom.Size{Width: 640, Height: 352}})

	st := m.State()
	if st.Transform.Scale != 0.6 {
		t.Errorf("Scale = %v, want narrow default 0.6", st.Transform.Scale)
	}
	if st.ResetVisible() {
		t.Errorf("Transform = %+v, want reset view %+v", st.Transform, st.Home)
	}

	// Later resizes keep the user's scale.
	m.Handle(ZoomIn(0.5))
	m.Handle(ResizeEvent{Size: geom.Size{Width: 1000, Height: 600}})
	if got := m.State().Transform.ZoomPercent(); got != 90 {
		t.Errorf("zoom after second resize = %d%%, want 90%%", got)
	}
}
