// Package blobstore provides the storage abstraction for persisted matrices.
//
// Store is the interface for reading and writing immutable blobs (matrix
// snapshots and their manifests). Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with atomic rename on close
//   - MemoryStore: In-memory, for tests and ephemeral results
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)            // Open for reading
//	    Create(ctx, name) (WritableBlob, error)  // Create for writing
//	    Put(ctx, name, data) error               // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
