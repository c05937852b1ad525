package codec

import "gopkg.in/yaml.v3"

// YAML encodes manifests as YAML for hand-edited stores.
type YAML struct{}

// Marshal encodes the value as YAML.
func (YAML) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

// Unmarshal decodes YAML data into v.
func (YAML) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// Name returns "yaml".
func (YAML) Name() string { return "yaml" }
