// Package lru implements a blob store that acts as a least-recently-used cache
// of blob metadata for a nested blob store.
package lru

import (
	"context"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/store"
)

var _ multiblob.Store = &Store{}

// Store implements a memory-based least-recently-used cache for a blob store.
// It caches the Meta of blobs known to be present,
// so repeated probes and size-checked reads skip the nested store.
// Absence is never cached.
// Writes and content reads pass through to the underlying blob store.
type Store struct {
	c *lru.Cache // Ref->*multiblob.Meta
	s multiblob.Store
}

// New produces a new Store backed by `s` and caching up to `size` entries.
func New(s multiblob.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	return &Store{s: s, c: c}, err
}

func (s *Store) cached(ref multiblob.Ref) *multiblob.Meta {
	if got, ok := s.c.Get(ref); ok {
		return got.(*multiblob.Meta)
	}
	return nil
}

// Get gets the blob selected by q.
// A size check against a cached blob fails without consulting the nested store.
func (s *Store) Get(ctx context.Context, q multiblob.Query) (io.ReadCloser, error) {
	if opts, ok := q.(multiblob.GetOptions); ok {
		if m := s.cached(opts.Ref); m != nil {
			if err := opts.Check(m.Size); err != nil {
				return nil, err
			}
		}
	}
	r, err := s.s.Get(ctx, q)
	if errors.Is(err, multiblob.ErrNotFound) {
		switch q := q.(type) {
		case multiblob.Ref:
			s.c.Remove(q)
		case multiblob.GetOptions:
			s.c.Remove(q.Ref)
		}
	}
	return r, err
}

// Has tells whether the blob with the given ref is present.
func (s *Store) Has(ctx context.Context, ref multiblob.Ref) (bool, error) {
	m, err := s.Meta(ctx, ref)
	return m != nil, err
}

// Size returns the size of the blob with the given ref.
func (s *Store) Size(ctx context.Context, ref multiblob.Ref) (int64, bool, error) {
	m, err := s.Meta(ctx, ref)
	if m == nil {
		return 0, false, err
	}
	return m.Size, true, nil
}

// Meta describes the blob with the given ref.
func (s *Store) Meta(ctx context.Context, ref multiblob.Ref) (*multiblob.Meta, error) {
	if m := s.cached(ref); m != nil {
		return m, nil
	}
	m, err := s.s.Meta(ctx, ref)
	if err != nil || m == nil {
		return nil, err
	}
	s.c.Add(ref, m)
	return m, nil
}

// Add begins writing a new blob in the nested store.
// New blobs enter the cache when first probed.
func (s *Store) Add(ctx context.Context, expected multiblob.Ref) (multiblob.Writer, error) {
	return s.s.Add(ctx, expected)
}

// Rm removes the blob from the nested store and the cache.
func (s *Store) Rm(ctx context.Context, ref multiblob.Ref) error {
	s.c.Remove(ref)
	return s.s.Rm(ctx, ref)
}

// Ls delegates to the nested store.
func (s *Store) Ls(ctx context.Context, opts multiblob.LsOptions, f func(multiblob.Entry) error) error {
	return s.s.Ls(ctx, opts, f)
}

func init() {
	store.Register("lru", func(ctx context.Context, conf map[string]interface{}) (multiblob.Store, error) {
		size, ok := store.Int(conf, "size")
		if !ok {
			return nil, errors.New(`missing "size" parameter`)
		}
		nestedStore, err := store.Nested(ctx, conf)
		if err != nil {
			return nil, err
		}
		return New(nestedStore, size)
	})
}
