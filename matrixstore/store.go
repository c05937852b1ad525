package matrixstore

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"strings"
	"time"

	"github.com/hupe1980/pairwise/blobstore"
	"github.com/hupe1980/pairwise/codec"
	"github.com/hupe1980/pairwise/internal/conv"
	"github.com/hupe1980/pairwise/internal/hash"
	"github.com/hupe1980/pairwise/matrix"
	"github.com/hupe1980/pairwise/resource"
)

const (
	dataSuffix     = ".pwm"
	manifestSuffix = ".manifest"

	ioBufferSize = 64 << 10
)

// ErrNotFound is returned when no matrix is saved under a name.
var ErrNotFound = fmt.Errorf("matrixstore: matrix not found: %w", blobstore.ErrNotFound)

// Store saves and loads matrices on a blobstore.Store.
// It is safe for concurrent use; saving the same name concurrently is last-writer-wins.
type Store struct {
	blobs       blobstore.Store
	codec       codec.Codec
	rc          *resource.Controller
	logger      *slog.Logger
	compression Compression
	precision   Precision
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the manifest codec. Default: codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithCompression sets the payload compression for new matrices.
func WithCompression(c Compression) Option {
	return func(s *Store) { s.compression = c }
}

// WithPrecision sets the stored precision for new matrices.
func WithPrecision(p Precision) Option {
	return func(s *Store) { s.precision = p }
}

// WithResourceController throttles matrix IO through rc and charges matrices
// being decoded against its memory limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(s *Store) { s.rc = rc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store on top of blobs.
func New(blobs blobstore.Store, optFns ...Option) *Store {
	s := &Store{
		blobs:       blobs,
		codec:       codec.Default,
		logger:      slog.New(slog.DiscardHandler),
		compression: CompressionZstd,
		precision:   Float64,
		now:         time.Now,
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// SaveOption annotates the manifest of a saved matrix.
type SaveOption func(*Manifest)

// WithFormula records the name of the formula that produced the matrix.
func WithFormula(name string) SaveOption {
	return func(m *Manifest) { m.Formula = name }
}

// WithLabels attaches free-form labels to the manifest.
func WithLabels(labels map[string]string) SaveOption {
	return func(m *Manifest) { m.Labels = maps.Clone(labels) }
}

func validateName(name string) error {
	if name == "" || strings.HasSuffix(name, "/") {
		return fmt.Errorf("matrixstore: invalid matrix name %q", name)
	}
	return nil
}

// countingWriter tracks the number of bytes written to the blob.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Save writes m under name and returns its manifest. Square matrices that are
// exactly symmetric are stored as a packed upper triangle.
func (s *Store) Save(ctx context.Context, name string, m *matrix.Dense, opts ...SaveOption) (*Manifest, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	rows, err := conv.IntToUint32(m.Rows())
	if err != nil {
		return nil, fmt.Errorf("matrixstore: rows: %w", err)
	}
	cols, err := conv.IntToUint32(m.Cols())
	if err != nil {
		return nil, fmt.Errorf("matrixstore: cols: %w", err)
	}

	symmetric := rows == cols && rows > 0 && m.IsSymmetric(0)
	h := header{
		layout:      LayoutFull,
		compression: s.compression,
		precision:   s.precision,
		rows:        rows,
		cols:        cols,
	}
	if symmetric {
		h.layout = LayoutPacked
	}
	n, err := h.values()
	if err != nil {
		return nil, fmt.Errorf("matrixstore: %w", err)
	}
	h.rawLen = uint64(n) * uint64(h.precision.width())

	start := time.Now()

	w, err := s.blobs.Create(ctx, name+dataSuffix)
	if err != nil {
		return nil, fmt.Errorf("matrixstore: create %s: %w", name, err)
	}

	stored, sum, err := s.writeBlob(ctx, w, h, m)
	if err != nil {
		_ = blobstore.Abort(w)
		return nil, fmt.Errorf("matrixstore: write %s: %w", name, err)
	}
	if err := w.Sync(); err != nil {
		_ = blobstore.Abort(w)
		return nil, fmt.Errorf("matrixstore: sync %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("matrixstore: close %s: %w", name, err)
	}

	man := &Manifest{
		Name:        name,
		Rows:        m.Rows(),
		Cols:        m.Cols(),
		Symmetric:   symmetric,
		Layout:      h.layout.String(),
		Compression: h.compression.String(),
		Precision:   h.precision.String(),
		Checksum:    sum,
		RawBytes:    int64(h.rawLen),
		StoredBytes: stored,
		CreatedAt:   s.now().UTC(),
	}
	for _, opt := range opts {
		opt(man)
	}

	body, err := encodeManifest(s.codec, man)
	if err != nil {
		return nil, err
	}
	if err := s.blobs.Put(ctx, name+manifestSuffix, body); err != nil {
		return nil, fmt.Errorf("matrixstore: put manifest %s: %w", name, err)
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "matrix saved",
		slog.String("name", name),
		slog.Int("rows", man.Rows),
		slog.Int("cols", man.Cols),
		slog.String("layout", man.Layout),
		slog.String("compression", man.Compression),
		slog.Int64("raw_bytes", man.RawBytes),
		slog.Int64("stored_bytes", man.StoredBytes),
		slog.Duration("duration", time.Since(start)),
	)

	return man, nil
}

func (s *Store) writeBlob(ctx context.Context, w io.Writer, h header, m *matrix.Dense) (int64, uint32, error) {
	cw := &countingWriter{w: resource.NewRateLimitedWriter(ctx, w, s.rc)}
	bw := bufio.NewWriterSize(cw, ioBufferSize)

	if _, err := bw.Write(h.encode()); err != nil {
		return 0, 0, err
	}

	zw, err := compressWriter(h.compression, bw)
	if err != nil {
		return 0, 0, err
	}

	crc := hash.NewCRC32C()
	vw := bufio.NewWriterSize(io.MultiWriter(zw, crc), ioBufferSize)
	if err := writeValues(ctx, vw, m, h.layout, h.precision); err != nil {
		return 0, 0, err
	}
	if err := vw.Flush(); err != nil {
		return 0, 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, 0, err
	}

	sum := crc.Sum32()
	if _, err := bw.Write(binary.LittleEndian.AppendUint32(nil, sum)); err != nil {
		return 0, 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, 0, err
	}
	return cw.n, sum, nil
}

// Stat returns the manifest of a saved matrix.
func (s *Store) Stat(ctx context.Context, name string) (*Manifest, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := blobstore.ReadAll(ctx, s.blobs, name+manifestSuffix)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("matrixstore: read manifest %s: %w", name, err)
	}
	return decodeManifest(data)
}

// Load reads a saved matrix and verifies it against its checksums and manifest.
func (s *Store) Load(ctx context.Context, name string) (*matrix.Dense, *Manifest, error) {
	man, err := s.Stat(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	b, err := s.blobs.Open(ctx, name+dataSuffix)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s data", ErrNotFound, name)
		}
		return nil, nil, fmt.Errorf("matrixstore: open %s: %w", name, err)
	}
	defer func() { _ = b.Close() }()

	m, sum, err := s.readBlob(ctx, b)
	if err != nil {
		return nil, nil, fmt.Errorf("matrixstore: load %s: %w", name, err)
	}

	if m.Rows() != man.Rows || m.Cols() != man.Cols || sum != man.Checksum {
		return nil, nil, fmt.Errorf("matrixstore: load %s: %w: blob does not match manifest", name, ErrCorrupt)
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "matrix loaded",
		slog.String("name", name),
		slog.Int("rows", man.Rows),
		slog.Int("cols", man.Cols),
	)
	return m, man, nil
}

func (s *Store) readBlob(ctx context.Context, b blobstore.Blob) (*matrix.Dense, uint32, error) {
	size := b.Size()
	if size < headerSize+trailerSize {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrCorrupt, size)
	}

	rc, err := b.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rc.Close() }()

	br := bufio.NewReaderSize(resource.NewRateLimitedReader(ctx, rc, s.rc), ioBufferSize)

	hb := make([]byte, headerSize)
	if _, err := io.ReadFull(br, hb); err != nil {
		return nil, 0, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	h, err := decodeHeader(hb)
	if err != nil {
		return nil, 0, err
	}

	if h.compression == CompressionNone && int64(h.rawLen) != size-headerSize-trailerSize {
		return nil, 0, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, size-headerSize-trailerSize, h.rawLen)
	}

	cells, err := conv.Cells(h.rows, h.cols)
	if err != nil || int64(cells) > math.MaxInt64/8 {
		return nil, 0, fmt.Errorf("%w: %dx%d matrix does not fit in memory", ErrCorrupt, h.rows, h.cols)
	}
	// The decoded matrix is charged while it is filled; the caller owns it afterwards.
	denseBytes := int64(cells) * 8
	if err := s.rc.ReserveMemory(denseBytes); err != nil {
		return nil, 0, fmt.Errorf("matrixstore: %dx%d matrix: %w", h.rows, h.cols, err)
	}
	defer s.rc.ReleaseMemory(denseBytes)

	m, err := matrix.NewDense(int(h.rows), int(h.cols))
	if err != nil {
		return nil, 0, err
	}

	payload := io.LimitReader(br, size-headerSize-trailerSize)
	zr, err := decompressReader(h.compression, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer func() { _ = zr.Close() }()

	crc := hash.NewCRC32C()
	raw := io.TeeReader(io.LimitReader(zr, int64(h.rawLen)), crc)
	if err := readValues(ctx, bufio.NewReaderSize(raw, ioBufferSize), m, h.layout, h.precision); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, fmt.Errorf("%w: truncated payload", ErrCorrupt)
		}
		if ctx.Err() != nil {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	// A decompressor may stop before the end of its frame; skip the rest.
	extra, err := io.Copy(io.Discard, payload)
	if err != nil {
		return nil, 0, err
	}
	if h.compression == CompressionNone && extra > 0 {
		return nil, 0, fmt.Errorf("%w: %d trailing payload bytes", ErrCorrupt, extra)
	}

	tb := make([]byte, trailerSize)
	if _, err := io.ReadFull(br, tb); err != nil {
		return nil, 0, fmt.Errorf("%w: trailer: %v", ErrCorrupt, err)
	}
	sum := crc.Sum32()
	if want := binary.LittleEndian.Uint32(tb); want != sum {
		return nil, 0, fmt.Errorf("%w: payload crc %08x, trailer %08x", ErrChecksumMismatch, sum, want)
	}
	return m, sum, nil
}

// List returns the names of all saved matrices under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	blobs, err := s.blobs.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, b := range blobs {
		if name, ok := strings.CutSuffix(b, manifestSuffix); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Delete removes a saved matrix. The manifest goes first so readers never see
// a manifest without its data.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, name+manifestSuffix); err != nil {
		return fmt.Errorf("matrixstore: delete manifest %s: %w", name, err)
	}
	if err := s.blobs.Delete(ctx, name+dataSuffix); err != nil {
		return fmt.Errorf("matrixstore: delete %s: %w", name, err)
	}
	return nil
}
