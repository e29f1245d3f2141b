package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
)

// Get opens the blob selected by q.
// With GetOptions the blob's size is checked first,
// and a violation is reported before the file is opened.
func (s *Store) Get(ctx context.Context, q multiblob.Query) (io.ReadCloser, error) {
	switch q := q.(type) {
	case multiblob.Ref:
		return s.open(q)

	case multiblob.GetOptions:
		if q.Ref == "" || !s.codec.IsRef(string(q.Ref)) {
			return nil, multiblob.ErrMissingRef
		}
		m, err := s.Meta(ctx, q.Ref)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.Wrapf(multiblob.ErrNotFound, "getting %s", q.Ref)
		}
		if err = q.Check(m.Size); err != nil {
			return nil, err
		}
		return s.open(q.Ref)

	default:
		return nil, fmt.Errorf("unknown query type %T", q)
	}
}

func (s *Store) open(ref multiblob.Ref) (io.ReadCloser, error) {
	path, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(multiblob.ErrNotFound, "opening %s", ref)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return f, nil
}
