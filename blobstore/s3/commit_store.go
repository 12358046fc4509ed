package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/komori-n/nananiji-calculator/blobstore"
)

// ErrConcurrentModification is returned when another writer claimed the
// version a commit tried to publish.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// DDBClient is the subset of the DynamoDB API used by Catalog.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Version is one committed generation of a named blob.
type Version struct {
	Name    string
	Number  uint64
	Key     string // object name in the underlying store
	Written int64  // size in bytes
}

// Catalog records which object holds the current version of each blob.
//
// Table schema:
//   - Partition key: blob_uri (string), "<baseURI>#<name>"
//   - Sort key: version (number), monotonically increasing
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name nananiji-generators \
//	  --attribute-definitions AttributeName=blob_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=blob_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Catalog struct {
	client  DDBClient
	table   string
	baseURI string
}

// NewCatalog creates a catalog. baseURI ("s3://bucket/prefix") scopes the
// partition keys so that several stores can share a table.
func NewCatalog(client DDBClient, table, baseURI string) *Catalog {
	return &Catalog{client: client, table: table, baseURI: baseURI}
}

func (c *Catalog) uri(name string) string {
	return c.baseURI + "#" + name
}

// Current returns the latest committed version of name, or
// blobstore.ErrNotFound when nothing was committed.
func (c *Catalog) Current(ctx context.Context, name string) (Version, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("blob_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: c.uri(name)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Version{}, fmt.Errorf("query catalog: %w", err)
	}
	if len(resp.Items) == 0 {
		return Version{}, blobstore.ErrNotFound
	}
	return parseVersion(name, resp.Items[0])
}

// Commit publishes key as version prev+1 of name. It fails with
// ErrConcurrentModification if that version already exists.
func (c *Catalog) Commit(ctx context.Context, name string, prev uint64, key string, size int64) (Version, error) {
	v := Version{Name: name, Number: prev + 1, Key: key, Written: size}

	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item: map[string]types.AttributeValue{
			"blob_uri":   &types.AttributeValueMemberS{Value: c.uri(name)},
			"version":    &types.AttributeValueMemberN{Value: strconv.FormatUint(v.Number, 10)},
			"object_key": &types.AttributeValueMemberS{Value: key},
			"size":       &types.AttributeValueMemberN{Value: strconv.FormatInt(size, 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return Version{}, ErrConcurrentModification
		}
		return Version{}, fmt.Errorf("commit version to catalog: %w", err)
	}
	return v, nil
}

func parseVersion(name string, item map[string]types.AttributeValue) (Version, error) {
	numAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Version{}, errors.New("invalid version attribute in catalog")
	}
	keyAttr, ok := item["object_key"].(*types.AttributeValueMemberS)
	if !ok {
		return Version{}, errors.New("invalid object_key attribute in catalog")
	}

	num, err := strconv.ParseUint(numAttr.Value, 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("parse version: %w", err)
	}

	v := Version{Name: name, Number: num, Key: keyAttr.Value}
	if sizeAttr, ok := item["size"].(*types.AttributeValueMemberN); ok {
		if v.Written, err = strconv.ParseInt(sizeAttr.Value, 10, 64); err != nil {
			return Version{}, fmt.Errorf("parse size: %w", err)
		}
	}
	return v, nil
}

// CommitStore is a BlobStore whose blobs are versioned S3 objects
// published through a Catalog.
//
// Put(name) uploads "<name>.v<N>-<uuid>" and commits it as version N. Open(name)
// follows the catalog to the current object. Superseded objects are kept.
type CommitStore struct {
	store   *Store
	catalog *Catalog
}

var _ blobstore.BlobStore = (*CommitStore)(nil)

// NewCommitStore creates a new S3+DynamoDB commit store.
func NewCommitStore(store *Store, catalog *Catalog) *CommitStore {
	return &CommitStore{store: store, catalog: catalog}
}

// versionKey names the object holding version n. The random suffix keeps
// racing writers from overwriting each other's uploads.
func versionKey(name string, n uint64) string {
	return name + ".v" + strconv.FormatUint(n, 10) + "-" + uuid.NewString()
}

// Open opens the current version of name.
func (s *CommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	v, err := s.catalog.Current(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.store.Open(ctx, v.Key)
}

// Put uploads data and publishes it as the next version of name.
func (s *CommitStore) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.Publish(ctx, name, data)
	return err
}

// Publish is Put that reports the committed version.
func (s *CommitStore) Publish(ctx context.Context, name string, data []byte) (Version, error) {
	var prev uint64
	cur, err := s.catalog.Current(ctx, name)
	switch {
	case err == nil:
		prev = cur.Number
	case !errors.Is(err, blobstore.ErrNotFound):
		return Version{}, err
	}

	key := versionKey(name, prev+1)
	if err := s.store.Put(ctx, key, data); err != nil {
		return Version{}, err
	}

	v, err := s.catalog.Commit(ctx, name, prev, key, int64(len(data)))
	if err != nil {
		_ = s.store.Delete(ctx, key)
		return Version{}, err
	}
	return v, nil
}

// Create buffers writes and publishes them on Close.
func (s *CommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return &commitWritableBlob{ctx: ctx, store: s, name: name}, nil
}

// Delete removes every stored version of name. Catalog entries are kept as
// history; Open then reports blobstore.ErrNotFound.
func (s *CommitStore) Delete(ctx context.Context, name string) error {
	keys, err := s.store.List(ctx, name+".v")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if base, ok := splitVersion(key); !ok || base != name {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// List returns the distinct blob names with the given prefix.
func (s *CommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var names []string
	for _, key := range keys {
		name, ok := splitVersion(key)
		if !ok {
			continue
		}
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// splitVersion strips the ".v<N>-<uuid>" suffix of a versioned key.
func splitVersion(key string) (string, bool) {
	i := strings.LastIndex(key, ".v")
	if i <= 0 {
		return "", false
	}
	num, id, ok := strings.Cut(key[i+2:], "-")
	if !ok {
		return "", false
	}
	if _, err := strconv.ParseUint(num, 10, 64); err != nil {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return key[:i], true
}

type commitWritableBlob struct {
	ctx    context.Context
	store  *CommitStore
	name   string
	buf    bytes.Buffer
	closed bool
}

func (w *commitWritableBlob) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	return w.buf.Write(p)
}

func (w *commitWritableBlob) Close() error {
	if w.closed {
		return io.ErrClosedPipe
	}
	w.closed = true
	return w.store.Put(w.ctx, w.name, w.buf.Bytes())
}

func (w *commitWritableBlob) Sync() error {
	return nil
}
