package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komori-n/nananiji-calculator/blobstore"
)

func openMemory(t *testing.T, prefix string) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true, Prefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, "generators/")

	_, err := s.Open(ctx, "hanshin.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, s.Put(ctx, "hanshin.bin", []byte("NNJ1 hanshin")))

	w, err := s.Create(ctx, "sub/kyojin_a.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("NNJ1"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	got, err := blobstore.ReadAll(ctx, s, "hanshin.bin")
	require.NoError(t, err)
	assert.Equal(t, "NNJ1 hanshin", string(got))

	b, err := s.Open(ctx, "sub/kyojin_a.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(4), b.Size())
	_, ok := b.(blobstore.Mappable)
	assert.True(t, ok)
	require.NoError(t, b.Close())

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"hanshin.bin", "sub/kyojin_a.bin"}, names)

	names, err = s.List(ctx, "sub/")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/kyojin_a.bin"}, names)

	require.NoError(t, s.Delete(ctx, "hanshin.bin"))
	require.NoError(t, s.Delete(ctx, "hanshin.bin"))
	_, err = s.Open(ctx, "hanshin.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_SharedDB(t *testing.T) {
	ctx := context.Background()
	base := openMemory(t, "")

	a := NewStore(base.db, "a/")
	b := NewStore(base.db, "b/")
	require.NoError(t, a.Put(ctx, "x.bin", []byte("a")))
	require.NoError(t, b.Put(ctx, "x.bin", []byte("b")))

	got, err := blobstore.ReadAll(ctx, a, "x.bin")
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))

	names, err := base.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/x.bin", "b/x.bin"}, names)

	require.NoError(t, a.Close(), "borrowed databases stay open")
	_, err = blobstore.ReadAll(ctx, b, "x.bin")
	assert.NoError(t, err)
}

func TestStore_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Dir: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "nananiji.bin", []byte("snapshot")))
	require.NoError(t, s.Close())

	s, err = Open(Config{Dir: dir})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := blobstore.ReadAll(ctx, s, "nananiji.bin")
	require.NoError(t, err)
	assert.Equal(t, "snapshot", string(got))
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestStore_Canceled(t *testing.T) {
	s := openMemory(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "x.bin", []byte("x")), context.Canceled)
	_, err := s.Open(ctx, "x.bin")
	assert.ErrorIs(t, err, context.Canceled)
}
