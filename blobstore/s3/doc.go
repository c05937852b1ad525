// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("matrices/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	man, err := matrixstore.New(store).Save(ctx, "gram", m)
//
// Put sends a CRC32C checksum that S3 verifies on receipt. Create streams
// through the upload manager, so matrices larger than memory never need a
// full buffer. Names are keys below the configured prefix; List pages
// through ListObjectsV2 and strips the prefix again.
package s3
