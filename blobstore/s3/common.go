package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/komori-n/nananiji-calculator/blobstore"
)

// Client is the subset of the S3 API used by the stores.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// maxPrealloc caps the buffer reserved from an untrusted Content-Length.
const maxPrealloc = 64 << 20

// fetch downloads key in one request. Snapshots are decoded whole, so
// ranged reads would only add round trips.
func fetch(ctx context.Context, client Client, bucket, key string) (blobstore.Blob, error) {
	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3: %q: %w", key, blobstore.ErrNotFound)
		}
		return nil, fmt.Errorf("s3: get %q: %w", key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	want := aws.ToInt64(resp.ContentLength)
	var buf bytes.Buffer
	buf.Grow(int(min(max(want, 0), maxPrealloc)))
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("s3: read %q: %w", key, err)
	}
	if resp.ContentLength != nil && want != int64(buf.Len()) {
		return nil, fmt.Errorf("s3: short read of %q: %d of %d bytes", key, buf.Len(), want)
	}
	return blobstore.BytesBlob(buf.Bytes()), nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

// listObjects lists keys under fullPrefix, relative to rootPrefix.
func listObjects(ctx context.Context, client Client, bucket, fullPrefix, rootPrefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(fullPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), rootPrefix)
			rel = strings.TrimPrefix(rel, "/")
			if rel != "" {
				keys = append(keys, rel)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}
