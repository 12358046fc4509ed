package main

import (
	"context"
	"fmt"

	"github.com/komori-n/nananiji-calculator/blobstore"
	"github.com/komori-n/nananiji-calculator/blobstore/badger"
	"github.com/komori-n/nananiji-calculator/blobstore/minio"
	"github.com/komori-n/nananiji-calculator/blobstore/s3"
)

func openStore(ctx context.Context, cfg StoreConfig) (blobstore.BlobStore, error) {
	switch cfg.Backend {
	case "", "local":
		dir := cfg.Dir
		if dir == "" {
			dir = "."
		}
		return blobstore.NewLocalStore(dir), nil

	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("store: s3 backend needs a bucket")
		}
		opts := []s3.Option{
			s3.WithPrefix(cfg.Prefix),
			s3.WithRegion(cfg.Region),
			s3.WithEndpoint(cfg.Endpoint),
			s3.WithPathStyle(cfg.PathStyle),
		}
		if cfg.Table != "" {
			return s3.NewVersioned(ctx, cfg.Bucket, cfg.Table, opts...)
		}
		return s3.New(ctx, cfg.Bucket, opts...)

	case "minio":
		if cfg.Bucket == "" || cfg.Endpoint == "" {
			return nil, fmt.Errorf("store: minio backend needs an endpoint and a bucket")
		}
		opts := []minio.Option{
			minio.WithPrefix(cfg.Prefix),
			minio.WithRegion(cfg.Region),
			minio.WithCredentials(cfg.AccessKey, cfg.SecretKey),
			minio.WithCreateBucket(true),
		}
		if cfg.Secure != nil {
			opts = append(opts, minio.WithSecure(*cfg.Secure))
		}
		return minio.New(ctx, cfg.Endpoint, cfg.Bucket, opts...)

	case "badger":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("store: badger backend needs a dir")
		}
		return badger.Open(badger.Config{Dir: cfg.Dir, Prefix: cfg.Prefix, SyncWrites: true})

	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}
