package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/komori-n/nananiji-calculator/internal/hash"
)

// ErrUploadAborted is reported by Close after Abort.
var ErrUploadAborted = errors.New("s3: upload aborted")

// UploadConfig tunes streaming uploads made through Create.
type UploadConfig struct {
	// PartSize is the multipart part size in bytes. Zero keeps the SDK default.
	PartSize int64
	// Concurrency is the number of parts in flight. Zero keeps the SDK default.
	Concurrency int
	// EnableChecksum asks S3 to verify a CRC32C of every part.
	EnableChecksum bool
	// LeavePartsOnError skips the multipart abort when an upload fails.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns 8 MiB parts, five at a time, with checksums.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{PartSize: 8 << 20, Concurrency: 5, EnableChecksum: true}
}

func (c UploadConfig) uploader(client Client) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		if c.PartSize > 0 {
			u.PartSize = c.PartSize
		}
		if c.Concurrency > 0 {
			u.Concurrency = c.Concurrency
		}
		u.LeavePartsOnError = c.LeavePartsOnError
	})
}

// putObject uploads data in one request, carrying its CRC32C.
func putObject(ctx context.Context, client Client, bucket, key string, data []byte) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(bucket),
		Key:            aws.String(key),
		Body:           bytes.NewReader(data),
		ContentLength:  aws.Int64(int64(len(data))),
		ChecksumCRC32C: aws.String(hash.CRC32CBase64(data)),
	})
	if err != nil {
		return fmt.Errorf("s3: put %q: %w", key, err)
	}
	return nil
}

// upload feeds Write calls through a pipe into a manager.Uploader running
// in the background. The object exists once Close returns nil.
type upload struct {
	pw   *io.PipeWriter
	done chan error

	mu       sync.Mutex
	finished bool
	err      error
}

func startUpload(ctx context.Context, up *manager.Uploader, bucket, key string, checksum bool) *upload {
	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan error, 1)}

	in := &s3.PutObjectInput{Bucket: aws.String(bucket), Key: aws.String(key), Body: pr}
	if checksum {
		in.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}
	go func() {
		_, err := up.Upload(ctx, in)
		_ = pr.CloseWithError(err)
		u.done <- err
	}()
	return u
}

func (u *upload) Write(p []byte) (int, error) {
	u.mu.Lock()
	finished := u.finished
	u.mu.Unlock()
	if finished {
		return 0, io.ErrClosedPipe
	}
	return u.pw.Write(p)
}

// finish closes the pipe with cause and waits for the uploader. Later calls
// return the first result.
func (u *upload) finish(cause error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.finished {
		return u.err
	}
	u.finished = true
	_ = u.pw.CloseWithError(cause)
	u.err = <-u.done
	if cause != nil {
		u.err = cause
	}
	return u.err
}

// Close completes the upload.
func (u *upload) Close() error { return u.finish(nil) }

// Abort discards the upload; Close then reports ErrUploadAborted.
func (u *upload) Abort() error {
	_ = u.finish(ErrUploadAborted)
	return nil
}

// Sync is a no-op; nothing is visible before Close.
func (u *upload) Sync() error { return nil }
