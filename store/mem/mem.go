// Package mem implements an in-memory blob store.
package mem

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/store"
)

var _ multiblob.Store = &Store{}

// Store is a memory-based implementation of a blob store.
type Store struct {
	alg   string
	codec multiblob.Codec

	mu    sync.Mutex
	blobs map[multiblob.Ref]blob

	notifier multiblob.Notifier
}

type blob struct {
	data    []byte
	created time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithAlg sets the hash algorithm for new blobs.
func WithAlg(alg string) Option {
	return func(s *Store) { s.alg = alg }
}

// WithCodec sets the codec for refs.
func WithCodec(c multiblob.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// New produces a new Store.
func New(opts ...Option) *Store {
	s := &Store{
		alg:   multiblob.DefaultAlg,
		codec: multiblob.DefaultCodec,
		blobs: make(map[multiblob.Ref]blob),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get gets the blob selected by q.
func (s *Store) Get(_ context.Context, q multiblob.Query) (io.ReadCloser, error) {
	var ref multiblob.Ref

	switch q := q.(type) {
	case multiblob.Ref:
		if _, err := s.codec.Decode(q); err != nil {
			return nil, err
		}
		ref = q

	case multiblob.GetOptions:
		if q.Ref == "" || !s.codec.IsRef(string(q.Ref)) {
			return nil, multiblob.ErrMissingRef
		}
		ref = q.Ref
		s.mu.Lock()
		b, ok := s.blobs[ref]
		s.mu.Unlock()
		if ok {
			if err := q.Check(int64(len(b.data))); err != nil {
				return nil, err
			}
		}

	default:
		return nil, fmt.Errorf("unknown query type %T", q)
	}

	s.mu.Lock()
	b, ok := s.blobs[ref]
	s.mu.Unlock()
	if !ok {
		return nil, errors.Wrapf(multiblob.ErrNotFound, "getting %s", ref)
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// Has tells whether the blob with the given ref is present.
func (s *Store) Has(_ context.Context, ref multiblob.Ref) (bool, error) {
	if _, err := s.codec.Decode(ref); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.blobs[ref]
	return ok, nil
}

// Size returns the size of the blob with the given ref.
func (s *Store) Size(_ context.Context, ref multiblob.Ref) (int64, bool, error) {
	if _, err := s.codec.Decode(ref); err != nil {
		return 0, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[ref]
	return int64(len(b.data)), ok, nil
}

// Meta describes the blob with the given ref.
func (s *Store) Meta(_ context.Context, ref multiblob.Ref) (*multiblob.Meta, error) {
	if _, err := s.codec.Decode(ref); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[ref]
	if !ok {
		return nil, nil
	}
	return b.meta(ref), nil
}

func (b blob) meta(ref multiblob.Ref) *multiblob.Meta {
	return &multiblob.Meta{Ref: ref, Size: int64(len(b.data)), Created: b.created}
}

// Add begins writing a new blob.
// The content is held in the writer until Close.
func (s *Store) Add(_ context.Context, expected multiblob.Ref) (multiblob.Writer, error) {
	d, err := multiblob.NewDigester(s.alg, s.codec, expected)
	if err != nil {
		return nil, err
	}
	return multiblob.NewBufferedWriter(d, s.put), nil
}

func (s *Store) put(ref multiblob.Ref, data []byte) error {
	b := blob{data: append([]byte(nil), data...), created: time.Now()}

	s.mu.Lock()
	if old, ok := s.blobs[ref]; ok {
		b = old
	} else {
		s.blobs[ref] = b
	}
	s.mu.Unlock()

	s.notifier.Publish(*b.meta(ref))
	return nil
}

// Rm removes the blob with the given ref.
func (s *Store) Rm(_ context.Context, ref multiblob.Ref) error {
	if _, err := s.codec.Decode(ref); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[ref]; !ok {
		return errors.Wrapf(multiblob.ErrNotFound, "removing %s", ref)
	}
	delete(s.blobs, ref)
	return nil
}

// Ls lists blobs in lexicographic order of their refs,
// follows new ones,
// or both.
func (s *Store) Ls(ctx context.Context, opts multiblob.LsOptions, f func(multiblob.Entry) error) error {
	return multiblob.Feed(ctx, &s.notifier, opts, func(f func(multiblob.Entry) error) error {
		s.mu.Lock()
		refs := make([]multiblob.Ref, 0, len(s.blobs))
		metas := make(map[multiblob.Ref]*multiblob.Meta, len(s.blobs))
		for ref, b := range s.blobs {
			refs = append(refs, ref)
			metas[ref] = b.meta(ref)
		}
		s.mu.Unlock()

		sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })

		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return err
			}
			e := multiblob.Entry{Ref: ref}
			if opts.Meta {
				e.Meta = metas[ref]
			}
			if err := f(e); err != nil {
				return err
			}
		}
		return nil
	}, f)
}

func init() {
	store.Register("mem", func(_ context.Context, conf map[string]interface{}) (multiblob.Store, error) {
		alg, err := store.Alg(conf)
		if err != nil {
			return nil, err
		}
		codec, err := store.Codec(conf)
		if err != nil {
			return nil, err
		}
		return New(WithAlg(alg), WithCodec(codec)), nil
	})
}
