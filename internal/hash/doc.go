// Package hash provides the CRC32-Castagnoli checksums used to protect
// persisted matrices.
//
// One-shot:
//
//	sum := hash.CRC32C(data)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
//
// Go's hash/crc32 uses the SSE4.2 and ARM CRC instructions when available.
package hash
