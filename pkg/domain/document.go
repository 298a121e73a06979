package domain

import "encoding/json"

// Document is the load/save boundary format. Components holds the nested
// component trees as authored; the store normalizes them at init and
// denormalizes live entities back at save.
type Document struct {
	Media      map[string]any   `json:"media,omitempty"`
	Components []map[string]any `json:"components"`
	Behaviors  map[string]any   `json:"behaviors,omitempty"`
	Width      int              `json:"width,omitempty"`
	Height     int              `json:"height,omitempty"`
	CSS        string           `json:"css,omitempty"`
}

// DecodeDocument parses a document payload.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Encode serializes the document. Soft-deleted entities and read-time
// overrides never appear in the payload; callers populate Components from the
// store's export.
func (d Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}
