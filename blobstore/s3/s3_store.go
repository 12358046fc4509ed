package s3

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/komori-n/nananiji-calculator/blobstore"
)

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	upload   UploadConfig
}

var _ blobstore.BlobStore = (*Store)(nil)

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	cfg, opts, err := loadConfig(ctx, optFns)
	if err != nil {
		return nil, err
	}
	return newStore(newClient(cfg, opts), bucket, opts.prefix, opts.upload), nil
}

// NewVersioned creates a CommitStore whose versions are recorded in the
// DynamoDB table. Both clients share the default AWS credential chain.
func NewVersioned(ctx context.Context, bucket, table string, optFns ...Option) (*CommitStore, error) {
	cfg, opts, err := loadConfig(ctx, optFns)
	if err != nil {
		return nil, err
	}

	store := newStore(newClient(cfg, opts), bucket, opts.prefix, opts.upload)
	catalog := NewCatalog(dynamodb.NewFromConfig(cfg), table, "s3://"+path.Join(bucket, opts.prefix))
	return NewCommitStore(store, catalog), nil
}

func loadConfig(ctx context.Context, optFns []Option) (aws.Config, options, error) {
	opts := options{upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, opts, fmt.Errorf("s3: load aws config: %w", err)
	}
	return cfg, opts, nil
}

func newClient(cfg aws.Config, opts options) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.endpoint != "" {
			o.BaseEndpoint = aws.String(opts.endpoint)
		}
		o.UsePathStyle = opts.usePathStyle
	})
}

// NewStore creates a Store from an existing client.
// rootPrefix is prepended to all keys (e.g. "generators/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return newStore(client, bucket, rootPrefix, DefaultUploadConfig())
}

func newStore(client Client, bucket, rootPrefix string, cfg UploadConfig) *Store {
	return &Store{
		client:   client,
		uploader: cfg.uploader(client),
		bucket:   bucket,
		prefix:   rootPrefix,
		upload:   cfg,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open downloads the whole object.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return fetch(ctx, s.client, s.bucket, s.key(name))
}

// Create starts a streaming multipart upload. The object appears on Close.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return startUpload(ctx, s.uploader, s.bucket, s.key(name), s.upload.EnableChecksum), nil
}

// Put uploads a blob in a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return putObject(ctx, s.client, s.bucket, s.key(name), data)
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the names of all blobs with the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}
