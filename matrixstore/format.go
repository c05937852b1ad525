package matrixstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/pairwise/internal/conv"
	"github.com/hupe1980/pairwise/internal/hash"
)

// Blob layout:
//
//	header  32 bytes, little-endian
//	  0  magic "PWMX"
//	  4  version     uint16
//	  6  layout      uint8
//	  7  compression uint8
//	  8  precision   uint8
//	  9  reserved    3 bytes
//	 12  rows        uint32
//	 16  cols        uint32
//	 20  raw length  uint64 (uncompressed payload bytes)
//	 28  CRC32C of bytes 0..27
//	payload (compressed per header)
//	trailer 4 bytes: CRC32C of the uncompressed payload
const (
	headerSize  = 32
	trailerSize = 4

	formatVersion = 1
)

var magic = [4]byte{'P', 'W', 'M', 'X'}

var (
	// ErrCorrupt is returned when a blob is truncated or its header is invalid.
	ErrCorrupt = errors.New("matrixstore: corrupt matrix blob")

	// ErrChecksumMismatch is returned when the payload checksum does not match.
	ErrChecksumMismatch = errors.New("matrixstore: checksum mismatch")

	// ErrUnsupportedVersion is returned for blobs written by a newer format.
	ErrUnsupportedVersion = errors.New("matrixstore: unsupported format version")
)

// Layout selects how values are laid out in the payload.
type Layout uint8

const (
	// LayoutFull stores every value in column-major order.
	LayoutFull Layout = iota
	// LayoutPacked stores the upper triangle (j >= i) of a symmetric matrix, column by column.
	LayoutPacked
)

func (l Layout) String() string {
	switch l {
	case LayoutFull:
		return "full"
	case LayoutPacked:
		return "packed"
	default:
		return fmt.Sprintf("layout(%d)", uint8(l))
	}
}

// Compression selects the payload compression.
type Compression uint8

const (
	// CompressionNone stores raw values.
	CompressionNone Compression = iota
	// CompressionZstd compresses with Zstandard.
	CompressionZstd
	// CompressionLZ4 compresses with LZ4 frames.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "zstd" or "lz4".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("matrixstore: unknown compression %q", s)
	}
}

// Precision selects the stored floating-point width.
type Precision uint8

const (
	// Float64 stores values losslessly.
	Float64 Precision = iota
	// Float32 halves the payload at single precision.
	Float32
)

func (p Precision) String() string {
	switch p {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("precision(%d)", uint8(p))
	}
}

// ParsePrecision parses "float64" or "float32".
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "float64", "f64":
		return Float64, nil
	case "float32", "f32":
		return Float32, nil
	default:
		return 0, fmt.Errorf("matrixstore: unknown precision %q", s)
	}
}

func (p Precision) width() int {
	if p == Float32 {
		return 4
	}
	return 8
}

type header struct {
	layout      Layout
	compression Compression
	precision   Precision
	rows        uint32
	cols        uint32
	rawLen      uint64
}

// values returns the number of stored values.
func (h header) values() (int, error) {
	if h.layout == LayoutPacked {
		return conv.PackedCells(h.rows)
	}
	return conv.Cells(h.rows, h.cols)
}

func (h header) encode() []byte {
	b := make([]byte, headerSize)
	copy(b[0:4], magic[:])
	binary.LittleEndian.PutUint16(b[4:6], formatVersion)
	b[6] = byte(h.layout)
	b[7] = byte(h.compression)
	b[8] = byte(h.precision)
	binary.LittleEndian.PutUint32(b[12:16], h.rows)
	binary.LittleEndian.PutUint32(b[16:20], h.cols)
	binary.LittleEndian.PutUint64(b[20:28], h.rawLen)
	binary.LittleEndian.PutUint32(b[28:32], hash.CRC32C(b[:28]))
	return b
}

func decodeHeader(b []byte) (header, error) {
	if len(b) < headerSize {
		return header{}, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	if [4]byte(b[0:4]) != magic {
		return header{}, fmt.Errorf("%w: bad magic %q", ErrCorrupt, b[0:4])
	}
	if sum := binary.LittleEndian.Uint32(b[28:32]); sum != hash.CRC32C(b[:28]) {
		return header{}, fmt.Errorf("%w: header checksum", ErrCorrupt)
	}
	if v := binary.LittleEndian.Uint16(b[4:6]); v != formatVersion {
		return header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	h := header{
		layout:      Layout(b[6]),
		compression: Compression(b[7]),
		precision:   Precision(b[8]),
		rows:        binary.LittleEndian.Uint32(b[12:16]),
		cols:        binary.LittleEndian.Uint32(b[16:20]),
		rawLen:      binary.LittleEndian.Uint64(b[20:28]),
	}

	if h.layout > LayoutPacked || h.compression > CompressionLZ4 || h.precision > Float32 {
		return header{}, fmt.Errorf("%w: unknown layout %d, compression %d or precision %d",
			ErrCorrupt, h.layout, h.compression, h.precision)
	}
	if h.layout == LayoutPacked && h.rows != h.cols {
		return header{}, fmt.Errorf("%w: packed layout needs a square matrix, got %dx%d", ErrCorrupt, h.rows, h.cols)
	}

	n, err := h.values()
	if err != nil {
		return header{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if uint64(n)*uint64(h.precision.width()) != h.rawLen {
		return header{}, fmt.Errorf("%w: payload length %d does not match %dx%d %s",
			ErrCorrupt, h.rawLen, h.rows, h.cols, h.layout)
	}
	return h, nil
}
