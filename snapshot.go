package nananiji

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/komori-n/nananiji-calculator/blobstore"
	"github.com/komori-n/nananiji-calculator/ordering"
	"github.com/komori-n/nananiji-calculator/persistence"
)

type snapshotEntry struct {
	N    int64  `json:"n"`
	Expr string `json:"expr"`
}

type snapshot struct {
	Ordering []ordering.Rule `json:"ordering"`
	Known    []snapshotEntry `json:"known"`
}

// MarshalBinary encodes the rules and table using the configured codec and
// compression. Equal generators encode to equal bytes.
func (g *Generator) MarshalBinary() ([]byte, error) {
	s := snapshot{
		Ordering: g.rules,
		Known:    make([]snapshotEntry, 0, len(g.known)),
	}
	for _, n := range g.KnownValues() {
		s.Known = append(s.Known, snapshotEntry{N: n, Expr: g.known[n]})
	}

	return persistence.Encode(g.opts.codec, g.opts.compression, &s)
}

// Unmarshal decodes a generator written by MarshalBinary.
//
// The decoded state is validated: every rule must reference table entries
// and the table must not repeat a key. Build options in opts are ignored;
// logging, metrics and encoding options apply to the returned generator.
func Unmarshal(data []byte, optFns ...Option) (*Generator, error) {
	o := applyOptions(optFns)
	start := time.Now()

	g, err := unmarshal(data, o)
	o.metricsCollector.RecordLoad(len(data), time.Since(start), err)
	return g, err
}

func unmarshal(data []byte, o options) (*Generator, error) {
	var s snapshot
	if _, err := persistence.Decode(data, &s); err != nil {
		return nil, translateError(err)
	}

	known := make(map[int64]string, len(s.Known))
	for _, e := range s.Known {
		if e.Expr == "" {
			return nil, fmt.Errorf("%w: empty expression for %d", ErrInvalidState, e.N)
		}
		if _, dup := known[e.N]; dup {
			return nil, fmt.Errorf("%w: duplicate table entry %d", ErrInvalidState, e.N)
		}
		known[e.N] = e.Expr
	}

	for i, r := range s.Ordering {
		if r.Mul == 0 {
			return nil, fmt.Errorf("%w: rule %d (%s) has a zero multiplier", ErrInvalidState, i, r)
		}
		if _, ok := known[r.Mul]; !ok {
			return nil, fmt.Errorf("%w: rule %d (%s) multiplier not in table", ErrInvalidState, i, r)
		}
		if r.Kind != ordering.KindMul {
			if _, ok := known[r.Offset]; !ok {
				return nil, fmt.Errorf("%w: rule %d (%s) offset not in table", ErrInvalidState, i, r)
			}
		}
	}

	return &Generator{
		known: known,
		rules: slices.Clip(s.Ordering),
		stats: Stats{Known: len(known), Rules: len(s.Ordering)},
		opts:  o,
	}, nil
}

// Save writes the generator to store under name.
func (g *Generator) Save(ctx context.Context, store blobstore.BlobStore, name string) error {
	data, err := g.MarshalBinary()
	if err == nil {
		err = store.Put(ctx, name, data)
	}

	g.opts.logger.LogSave(ctx, name, len(data), err)
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	return nil
}

// Load reads a generator saved under name.
//
// Blobs that expose their contents directly, such as those of a
// blobstore.LocalStore, are decoded in place.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Generator, error) {
	o := applyOptions(optFns)
	start := time.Now()

	g, size, err := load(ctx, store, name, o)

	elapsed := time.Since(start)
	o.metricsCollector.RecordLoad(size, elapsed, err)
	o.logger.LogLoad(ctx, name, size, elapsed, err)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return g, nil
}

func load(ctx context.Context, store blobstore.BlobStore, name string, o options) (*Generator, int, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, translateError(err)
	}
	defer func() { _ = b.Close() }()

	var data []byte
	if m, ok := b.(blobstore.Mappable); ok {
		data, err = m.Bytes()
	} else {
		data, err = readBlob(ctx, b)
	}
	if err != nil {
		return nil, 0, translateError(err)
	}

	g, err := unmarshal(data, o)
	return g, len(data), err
}

func readBlob(ctx context.Context, b blobstore.Blob) ([]byte, error) {
	if b.Size() == 0 {
		return nil, nil
	}
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
