// Package matrixstore persists assembled matrices on a blobstore.Store.
//
// Each matrix is two blobs: "<name>.pwm" holds a checksummed binary encoding
// and "<name>.manifest" describes it. The manifest is written last and acts as
// the commit marker, so List and Load never observe half-written matrices.
//
// # Binary Format
//
// A 32-byte header (magic, version, layout, compression, precision, shape,
// payload length, header CRC32C) is followed by the payload and a CRC32C of
// the uncompressed payload. Exactly symmetric square matrices are stored as a
// packed upper triangle. Payloads can be compressed with zstd or lz4 and
// stored at float64 or float32 precision.
//
// # Usage
//
//	store := matrixstore.New(blobstore.NewLocalStore("/var/lib/pairwise"),
//	    matrixstore.WithCompression(matrixstore.CompressionZstd),
//	)
//	m, _ := engine.Assemble(ctx)
//	manifest, err := store.Save(ctx, "gram", m, matrixstore.WithFormula("l2"))
//	...
//	m, manifest, err = store.Load(ctx, "gram")
package matrixstore
