// Package minio stores generator snapshots in MinIO or any other
// S3-compatible service through the MinIO client.
//
// # Basic Usage
//
//	store, err := minio.New(ctx, "localhost:9000", "generators",
//	    minio.WithCredentials("minioadmin", "minioadmin"),
//	    minio.WithPrefix("nananiji/"),
//	)
//
// The store does not need AWS credentials or configuration, which makes it
// the usual choice for self-hosted deployments.
package minio
