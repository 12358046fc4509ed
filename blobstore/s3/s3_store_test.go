package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/komori-n/nananiji-calculator/blobstore"
	"github.com/komori-n/nananiji-calculator/internal/hash"
)

func newMockStore(t *testing.T) (*MockS3Client, *Store) {
	t.Helper()
	client := new(MockS3Client)
	t.Cleanup(func() { client.AssertExpectations(t) })
	return client, NewStore(client, "snapshots", "gens/")
}

func TestStore_Open(t *testing.T) {
	client, store := newMockStore(t)
	ctx := context.Background()

	key := func(k string) any {
		return mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return *input.Bucket == "snapshots" && *input.Key == k && input.Range == nil
		})
	}

	t.Run("NotFound", func(t *testing.T) {
		client.On("GetObject", mock.Anything, key("gens/hanshin.bin")).
			Return(nil, &types.NoSuchKey{}).Once()

		_, err := store.Open(ctx, "hanshin.bin")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		client.On("GetObject", mock.Anything, key("gens/kyojin.bin")).
			Return(&s3.GetObjectOutput{
				ContentLength: aws.Int64(4),
				Body:          io.NopCloser(strings.NewReader("NNJ1")),
			}, nil).Once()

		blob, err := store.Open(ctx, "kyojin.bin")
		require.NoError(t, err)
		assert.Equal(t, int64(4), blob.Size())

		m, ok := blob.(blobstore.Mappable)
		require.True(t, ok, "fetched objects decode in place")
		data, err := m.Bytes()
		require.NoError(t, err)
		assert.Equal(t, "NNJ1", string(data))
	})

	t.Run("ShortRead", func(t *testing.T) {
		client.On("GetObject", mock.Anything, key("gens/nananiji.bin")).
			Return(&s3.GetObjectOutput{
				ContentLength: aws.Int64(10),
				Body:          io.NopCloser(strings.NewReader("NNJ")),
			}, nil).Once()

		_, err := store.Open(ctx, "nananiji.bin")
		assert.ErrorContains(t, err, "short read")
	})
}

func TestStore_Put(t *testing.T) {
	client, store := newMockStore(t)

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Key == "gens/nananiji.bin" &&
			aws.ToInt64(input.ContentLength) == 7 &&
			aws.ToString(input.ChecksumCRC32C) == hash.CRC32CBase64([]byte("payload"))
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Put(context.Background(), "nananiji.bin", []byte("payload")))
}

func TestStore_Delete(t *testing.T) {
	client, store := newMockStore(t)

	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Bucket == "snapshots" && *input.Key == "gens/hanshin.bin"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	assert.NoError(t, store.Delete(context.Background(), "hanshin.bin"))
}

func TestStore_List_Pagination(t *testing.T) {
	client, store := newMockStore(t)

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken == nil && *input.Prefix == "gens"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page-2"),
		Contents:              []types.Object{{Key: aws.String("gens/kyojin.bin")}},
	}, nil).Once()

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken != nil && *input.ContinuationToken == "page-2"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents:    []types.Object{{Key: aws.String("gens/hanshin.bin")}},
	}, nil).Once()

	keys, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"hanshin.bin", "kyojin.bin"}, keys)
}

func TestStore_Create(t *testing.T) {
	client, store := newMockStore(t)

	var got []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Bucket == "snapshots" && *input.Key == "gens/new"
	})).Run(func(args mock.Arguments) {
		input := args.Get(1).(*s3.PutObjectInput)
		got, _ = io.ReadAll(input.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	wb, err := store.Create(context.Background(), "new")
	require.NoError(t, err)

	_, err = wb.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())
	assert.Equal(t, "content", string(got))
}

func TestStore_CreateAbort(t *testing.T) {
	client, store := newMockStore(t)

	wb, err := store.Create(context.Background(), "new")
	require.NoError(t, err)
	_, err = wb.Write([]byte("partial"))
	require.NoError(t, err)

	aborter, ok := wb.(interface{ Abort() error })
	require.True(t, ok)
	require.NoError(t, aborter.Abort())
	assert.ErrorIs(t, wb.Close(), ErrUploadAborted)

	_, err = wb.Write([]byte("more"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
}

func TestReadAllThroughStore(t *testing.T) {
	fake := newFakeS3()
	store := NewStore(fake, "b", "generators")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "hanshin_a.bin", []byte("NNJ1 snapshot")))
	data, err := blobstore.ReadAll(ctx, store, "hanshin_a.bin")
	require.NoError(t, err)
	assert.Equal(t, "NNJ1 snapshot", string(data))
	assert.Equal(t, []string{"generators/hanshin_a.bin"}, fake.keys())
}

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test-nananiji-%d/", time.Now().UnixNano())
	store, err := New(ctx, bucket, WithPrefix(prefix))
	require.NoError(t, err)

	data := make([]byte, 1024*1024)
	_, _ = rand.Read(data)

	w, err := store.Create(ctx, "big.bin")
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := blobstore.ReadAll(ctx, store, "big.bin")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, store.Delete(ctx, "big.bin"))
	_, err = store.Open(ctx, "big.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
