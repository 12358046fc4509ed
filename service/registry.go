package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	nananiji "github.com/komori-n/nananiji-calculator"
	"github.com/komori-n/nananiji-calculator/blobstore"
	"github.com/komori-n/nananiji-calculator/preset"
)

var (
	// ErrInvalidValue is returned when a request value is not an integer.
	ErrInvalidValue = errors.New("value parse failed")

	// ErrUnknownList is returned for a list the registry does not hold.
	ErrUnknownList = errors.New("unknown list")

	// ErrVerification is returned when a generated expression does not
	// evaluate to the requested value.
	ErrVerification = errors.New("expression verification failed")
)

// Lists enumerates every generator a complete registry holds.
var Lists = []ListName{
	{Name: preset.Nananiji},
	{Name: preset.Hanshin},
	{Name: preset.Hanshin, Split: true},
	{Name: preset.Kyojin},
	{Name: preset.Kyojin, Split: true},
}

// Registry holds one generator per list. It is read-only once built.
type Registry struct {
	gens map[ListName]*nananiji.Generator
}

// NewRegistry wraps already built generators.
func NewRegistry(gens map[ListName]*nananiji.Generator) *Registry {
	r := &Registry{gens: make(map[ListName]*nananiji.Generator, len(gens))}
	for l, g := range gens {
		r.gens[l] = g
	}
	return r
}

// LoadRegistry loads every list from store, at most limit at a time.
func LoadRegistry(ctx context.Context, store blobstore.BlobStore, limit int, opts ...nananiji.Option) (*Registry, error) {
	return fill(ctx, limit, func(ctx context.Context, l ListName) (*nananiji.Generator, error) {
		return nananiji.Load(ctx, store, l.BlobName(), opts...)
	})
}

// BuildRegistry builds every list in process, at most limit at a time.
func BuildRegistry(ctx context.Context, limit int, opts ...nananiji.Option) (*Registry, error) {
	return fill(ctx, limit, func(ctx context.Context, l ListName) (*nananiji.Generator, error) {
		return nananiji.New(ctx, l.Name, l.Split, opts...)
	})
}

func fill(ctx context.Context, limit int, get func(context.Context, ListName) (*nananiji.Generator, error)) (*Registry, error) {
	if limit < 1 {
		limit = 1
	}

	gens := make([]*nananiji.Generator, len(Lists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, l := range Lists {
		g.Go(func() error {
			gen, err := get(gctx, l)
			if err != nil {
				return fmt.Errorf("%s: %w", l, err)
			}
			gens[i] = gen
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &Registry{gens: make(map[ListName]*nananiji.Generator, len(Lists))}
	for i, l := range Lists {
		r.gens[l] = gens[i]
	}
	return r, nil
}

// Choose returns the generator of l.
func (r *Registry) Choose(l ListName) (*nananiji.Generator, error) {
	if l.Name == preset.Nananiji {
		l.Split = false
	}
	g, ok := r.gens[l]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, l)
	}
	return g, nil
}

// Save writes every generator of the registry to store.
func (r *Registry) Save(ctx context.Context, store blobstore.BlobStore) error {
	for _, l := range Lists {
		g, ok := r.gens[l]
		if !ok {
			continue
		}
		if err := g.Save(ctx, store, l.BlobName()); err != nil {
			return err
		}
	}
	return nil
}
