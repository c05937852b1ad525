package matrixstore

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hupe1980/pairwise/codec"
)

// Manifest describes a saved matrix. It is written after the matrix blob, so
// a matrix is visible to Load and List only once its manifest exists.
type Manifest struct {
	Name        string            `json:"name" yaml:"name"`
	Rows        int               `json:"rows" yaml:"rows"`
	Cols        int               `json:"cols" yaml:"cols"`
	Symmetric   bool              `json:"symmetric" yaml:"symmetric"`
	Layout      string            `json:"layout" yaml:"layout"`
	Compression string            `json:"compression" yaml:"compression"`
	Precision   string            `json:"precision" yaml:"precision"`
	Formula     string            `json:"formula,omitempty" yaml:"formula,omitempty"`
	Checksum    uint32            `json:"checksum" yaml:"checksum"`
	RawBytes    int64             `json:"raw_bytes" yaml:"raw_bytes"`
	StoredBytes int64             `json:"stored_bytes" yaml:"stored_bytes"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// encodeManifest prefixes the codec name so any built-in codec can read it back.
func encodeManifest(c codec.Codec, m *Manifest) ([]byte, error) {
	body, err := c.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("matrixstore: encode manifest: %w", err)
	}
	out := make([]byte, 0, len(c.Name())+1+len(body))
	out = append(out, c.Name()...)
	out = append(out, '\n')
	return append(out, body...), nil
}

func decodeManifest(data []byte) (*Manifest, error) {
	name, body, ok := bytes.Cut(data, []byte{'\n'})
	if !ok {
		return nil, fmt.Errorf("%w: manifest has no codec line", ErrCorrupt)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("%w: unknown manifest codec %q", ErrCorrupt, name)
	}

	var m Manifest
	if err := c.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("%w: decode manifest: %v", ErrCorrupt, err)
	}
	return &m, nil
}
