package render

import "encoding/json"

// RenderJSON returns the frame as indented JSON.
func RenderJSON(f Frame) ([]byte, error) {
	if f.Blocks == nil {
		f.Blocks = []Block{}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
