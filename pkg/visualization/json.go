package visualization

import (
	"encoding/json"
	"io"
)

// WriteJSON writes d in a nodes/links shape that D3 force graphs read directly.
func WriteJSON(w io.Writer, d *Diagram) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ReadJSON decodes a diagram written by WriteJSON.
func ReadJSON(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
