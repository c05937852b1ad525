package codec

import "encoding/json"

// JSON is the standard-library JSON codec, kept for readers that want no
// extra dependency in their decoding path.
type JSON struct{}

// Marshal encodes the value as indented JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSON) Name() string { return "json" }
