package features

import "fmt"

// Binary is a collection of fixed-width bit codes (e.g. binary quantized embeddings).
type Binary struct {
	bits   int
	stride int
	codes  []byte
}

// NewBinary copies codes of the given bit width into a Binary collection.
// Each code must be exactly ceil(bits/8) bytes long.
func NewBinary(bits int, codes [][]byte) (*Binary, error) {
	if bits <= 0 {
		return nil, ErrEmptyVector
	}
	stride := (bits + 7) / 8

	data := make([]byte, 0, len(codes)*stride)
	for i, c := range codes {
		if len(c) != stride {
			return nil, fmt.Errorf("%w: code %d has %d bytes, expected %d", ErrDimensionMismatch, i, len(c), stride)
		}
		data = append(data, c...)
	}

	return &Binary{bits: bits, stride: stride, codes: data}, nil
}

// Len implements Collection.
func (b *Binary) Len() int { return len(b.codes) / b.stride }

// Type implements Collection.
func (b *Binary) Type() Type { return TypeUint8 }

// Class implements Collection.
func (b *Binary) Class() Class { return ClassBinary }

// Bits returns the code width in bits.
func (b *Binary) Bits() int { return b.bits }

// Code returns a view of the i-th code.
func (b *Binary) Code(i int) []byte {
	return b.codes[i*b.stride : (i+1)*b.stride : (i+1)*b.stride]
}
