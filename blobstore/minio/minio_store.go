package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/komori-n/nananiji-calculator/blobstore"
)

const contentType = "application/octet-stream"

// Store keeps snapshots in a MinIO (or other S3-compatible) bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ blobstore.BlobStore = (*Store)(nil)

// New connects to endpoint and returns a store over bucket.
func New(ctx context.Context, endpoint, bucket string, optFns ...Option) (*Store, error) {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.accessKey, o.secretKey, ""),
		Secure: o.secure,
		Region: o.region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: client for %s: %w", endpoint, err)
	}

	if o.createBucket {
		if err := ensureBucket(ctx, client, bucket, o.region); err != nil {
			return nil, err
		}
	}
	return NewStore(client, bucket, o.prefix), nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket, region string) error {
	ok, err := client.BucketExists(ctx, bucket)
	switch {
	case err != nil:
		return fmt.Errorf("minio: bucket %q: %w", bucket, err)
	case ok:
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("minio: make bucket %q: %w", bucket, err)
	}
	return nil
}

// NewStore wraps an existing client. Every key is placed under prefix.
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) objectKey(name string) string {
	return path.Join(s.prefix, name)
}

func missing(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// Open downloads the whole object.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.objectKey(name)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap(key, err)
	}
	defer obj.Close()

	// GetObject is lazy; Stat surfaces a missing key.
	info, err := obj.Stat()
	if err != nil {
		return nil, s.wrap(key, err)
	}

	var buf bytes.Buffer
	buf.Grow(int(info.Size))
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, s.wrap(key, err)
	}
	if int64(buf.Len()) != info.Size {
		return nil, fmt.Errorf("minio: %q: short read: %d of %d bytes", key, buf.Len(), info.Size)
	}
	return blobstore.BytesBlob(buf.Bytes()), nil
}

func (s *Store) wrap(key string, err error) error {
	if missing(err) {
		return fmt.Errorf("minio: %q: %w", key, blobstore.ErrNotFound)
	}
	return fmt.Errorf("minio: %q: %w", key, err)
}

// Put uploads data in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return s.upload(ctx, s.objectKey(name), bytes.NewReader(data), int64(len(data)))
}

func (s *Store) upload(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("minio: put %q: %w", key, err)
	}
	return nil
}

// Create buffers writes and uploads them when the blob is closed.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &pendingObject{ctx: ctx, store: s, key: s.objectKey(name)}, nil
}

// Delete removes name; a missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	key := s.objectKey(name)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil && !missing(err) {
		return fmt.Errorf("minio: delete %q: %w", key, err)
	}
	return nil
}

// List returns the sorted names under prefix, relative to the store prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.objectKey(prefix),
		Recursive: true,
	})

	var names []string
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio: list %q: %w", prefix, obj.Err)
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/")
		if rel != "" {
			names = append(names, rel)
		}
	}
	slices.Sort(names)
	return names, nil
}

type pendingObject struct {
	ctx    context.Context
	store  *Store
	key    string
	buf    bytes.Buffer
	closed bool
}

func (p *pendingObject) Write(b []byte) (int, error) {
	if p.closed {
		return 0, blobstore.ErrClosed
	}
	return p.buf.Write(b)
}

func (p *pendingObject) Sync() error { return nil }

func (p *pendingObject) Close() error {
	if p.closed {
		return blobstore.ErrClosed
	}
	p.closed = true
	return p.store.upload(p.ctx, p.key, bytes.NewReader(p.buf.Bytes()), int64(p.buf.Len()))
}
