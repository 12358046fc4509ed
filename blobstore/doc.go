// Package blobstore stores persisted generator snapshots.
//
// A BlobStore holds immutable, named blobs. The generator writes a snapshot
// with Put and reads it back with ReadAll; Create and ReadRange exist for
// callers that stream. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: files under a root directory, read through mmap
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3, whole-object reads and multipart uploads
//   - s3.CommitStore: s3.Store versioned through a DynamoDB catalog
//   - minio.Store: MinIO and other S3-compatible services
//   - badger.Store: an embedded BadgerDB database
package blobstore
