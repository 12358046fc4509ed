package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/komori-n/nananiji-calculator/blobstore"
)

// Config configures the database behind a Store.
type Config struct {
	// Dir holds the database files. Ignored when InMemory is set.
	Dir string
	// InMemory keeps everything in RAM.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// Prefix is prepended to every blob name.
	Prefix string
	// Logger receives BadgerDB's internal logs. Nil disables them.
	Logger *slog.Logger
}

// Store implements blobstore.BlobStore on top of BadgerDB.
type Store struct {
	db     *badgerdb.DB
	prefix string
	owned  bool
}

var _ blobstore.BlobStore = (*Store)(nil)

// Open opens the database described by cfg. Close releases it.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("badger: dir is required for a persistent store")
	}

	var opts badgerdb.Options
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("badger: create %s: %w", cfg.Dir, err)
		}
		opts = badgerdb.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&logAdapter{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}

	s := NewStore(db, cfg.Prefix)
	s.owned = true
	return s, nil
}

// NewStore wraps an already open database. Close leaves db open.
func NewStore(db *badgerdb.DB, prefix string) *Store {
	return &Store{db: db, prefix: prefix}
}

// Close closes the database if Open created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *Store) key(name string) []byte {
	return []byte(s.prefix + name)
}

// Open reads the whole blob. The returned Blob is backed by a private copy.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(s.key(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, fmt.Errorf("badger: %q: %w", name, blobstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("badger: get %q: %w", name, err)
	}
	return blobstore.BytesBlob(data), nil
}

// Create buffers writes and commits them on Close.
func (s *Store) Create(_ context.Context, name string) (blobstore.WritableBlob, error) {
	return &writableBlob{store: s, name: name}, nil
}

// Put stores data under name in a single transaction.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(s.key(name), bytes.Clone(data))
	})
	if err != nil {
		return fmt.Errorf("badger: put %q: %w", name, err)
	}
	return nil
}

// Delete removes name. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(s.key(name))
	})
	if err != nil {
		return fmt.Errorf("badger: delete %q: %w", name, err)
	}
	return nil
}

// List returns blob names under prefix in key order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = s.key(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			names = append(names, string(it.Item().Key()[len(s.prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: list %q: %w", prefix, err)
	}
	return names, nil
}

type writableBlob struct {
	store *Store
	name  string
	buf   bytes.Buffer
}

func (w *writableBlob) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *writableBlob) Sync() error {
	return nil
}

func (w *writableBlob) Close() error {
	return w.store.Put(context.Background(), w.name, w.buf.Bytes())
}

type logAdapter struct {
	logger *slog.Logger
}

func (l *logAdapter) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *logAdapter) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *logAdapter) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *logAdapter) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
