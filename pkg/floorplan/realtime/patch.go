package realtime

import (
	"encoding/json"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
)

// Patch is a partial update for one room. Nil attributes are left alone.
type Patch struct {
	RoomID  string `json:"roomId"`
	LightOn *bool  `json:"lightOn,omitempty"`
}

// LightPatch returns a patch setting the light of one room.
func LightPatch(roomID string, on bool) Patch {
	return Patch{RoomID: roomID, LightOn: &on}
}

// Validate reports whether the patch names a room and carries at least one
// attribute.
func (p Patch) Validate() error {
	if err := errors.ValidateRoomID(p.RoomID); err != nil {
		return err
	}
	if p.LightOn == nil {
		return errors.New(errors.ErrCodeInvalidPatch, "patch for %q carries no attributes", p.RoomID)
	}
	return nil
}

// Encode returns the wire form of p.
func (p Patch) Encode() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// Decode parses one push message. Malformed messages return an
// INVALID_PATCH error; unknown fields are ignored.
func Decode(data []byte) (Patch, error) {
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return Patch{}, errors.Wrap(errors.ErrCodeInvalidPatch, err, "decode patch")
	}
	if err := p.Validate(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

// Apply writes p into the matching block of blocks. It reports false, leaving
// blocks untouched, when no block has the patch's room id.
func Apply(blocks []floorplan.RoomBlock, p Patch) bool {
	i := floorplan.Index(blocks, p.RoomID)
	if i < 0 {
		return false
	}
	if p.LightOn != nil {
		blocks[i].LightOn = *p.LightOn
	}
	return true
}
