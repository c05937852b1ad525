// Package minio provides a blobstore.Store backed by the MinIO client.
//
// It works with MinIO and other S3-compatible systems (Ceph, Garage,
// SeaweedFS) without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false,
//	    "my-bucket", "matrices/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.EnsureBucket(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	man, err := matrixstore.New(store).Save(ctx, "gram", m)
//
// Blobs written with Put carry their CRC32C in the Pairwise-Crc32c user
// metadata entry.
package minio
