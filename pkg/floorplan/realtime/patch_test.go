package realtime

import (
	"reflect"
	"testing"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
)

func testBlocks() []floorplan.RoomBlock {
	return []floorplan.RoomBlock{
		{ID: "kitchen", Name: "Kitchen", Rect: geom.Rect{Width: 100, Height: 100}},
		{ID: "living", Name: "Living", Rect: geom.Rect{X: 200, Width: 100, Height: 100}, LightOn: true},
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantID  string
		wantOn  bool
		wantErr bool
	}{
		{"light on", `{"roomId":"kitchen","lightOn":true}`, "kitchen", true, false},
		{"light off", `{"roomId":"kitchen","lightOn":false}`, "kitchen", false, false},
		{"unknown fields ignored", `{"roomId":"a","lightOn":true,"temp":21.5}`, "a", true, false},

		{"not json", `lights!`, "", false, true},
		{"null", `null`, "", false, true},
		{"array", `[1,2]`, "", false, true},
		{"missing room", `{"lightOn":true}`, "", false, true},
		{"empty room", `{"roomId":"","lightOn":true}`, "", false, true},
		{"no attributes", `{"roomId":"kitchen"}`, "", false, true},
		{"wrong type", `{"roomId":"kitchen","lightOn":"yes"}`, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidPatch) {
					t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidPatch)
				}
				return
			}
			if p.RoomID != tt.wantID || *p.LightOn != tt.wantOn {
				t.Errorf("Decode() = {%s %v}, want {%s %v}", p.RoomID, *p.LightOn, tt.wantID, tt.wantOn)
			}
		})
	}
}

func TestEncodeRejectsEmptyPatch(t *testing.T) {
	if _, err := (Patch{RoomID: "kitchen"}).Encode(); err == nil {
		t.Error("Encode() of attribute-less patch should fail")
	}
	data, err := LightPatch("kitchen", true).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if want := `{"roomId":"kitchen","lightOn":true}`; string(data) != want {
		t.Errorf("Encode() = %s, want %s", data, want)
	}
}

func TestApplyUnknownRoom(t *testing.T) {
	blocks := testBlocks()
	before := testBlocks()

	if Apply(blocks, LightPatch("garage", true)) {
		t.Error("Apply() reported a match for an unknown room")
	}
	if !reflect.DeepEqual(blocks, before) {
		t.Errorf("blocks changed: %+v", blocks)
	}
}

func TestApplyKnownRoomChangesOnlyLight(t *testing.T) {
	blocks := testBlocks()

	if !Apply(blocks, LightPatch("kitchen", true)) {
		t.Fatal("Apply() did not match kitchen")
	}

	want := testBlocks()
	want[0].LightOn = true
	if !reflect.DeepEqual(blocks, want) {
		t.Errorf("blocks = %+v, want %+v", blocks, want)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	blocks := testBlocks()
	p := LightPatch("living", false)
	Apply(blocks, p)
	once := floorplan.Clone(blocks)
	Apply(blocks, p)
	if !reflect.DeepEqual(blocks, once) {
		t.Error("second Apply() changed blocks")
	}
}

func TestApplyLastWriteWins(t *testing.T) {
	blocks := testBlocks()
	for _, on := range []bool{true, false, true, false} {
		Apply(blocks, LightPatch("kitchen", on))
	}
	if blocks[0].LightOn {
		t.Error("LightOn = true, want last written value false")
	}
}

func TestNames(t *testing.T) {
	if got := ChannelName("fv", "ground"); got != "fv:floor:ground" {
		t.Errorf("ChannelName() = %q", got)
	}
	if got := TopicName("fv", "ground"); got != "fv/floors/ground/patches" {
		t.Errorf("TopicName() = %q", got)
	}
	if got := StreamURL("ws://h/api/v1/floors/{floor}/ws", "level 2"); got != "ws://h/api/v1/floors/level%202/ws" {
		t.Errorf("StreamURL() = %q", got)
	}
}
