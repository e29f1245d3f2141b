// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"
	"io"
	"log"
	"strconv"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/store"
)

var _ multiblob.Store = &Store{}

type Store struct {
	s multiblob.Store
}

func New(s multiblob.Store) *Store {
	return &Store{s: s}
}

func (s *Store) Get(ctx context.Context, q multiblob.Query) (io.ReadCloser, error) {
	r, err := s.s.Get(ctx, q)
	if err != nil {
		log.Printf("ERROR Get %s: %s", describe(q), err)
	} else {
		log.Printf("Get %s", describe(q))
	}
	return r, err
}

func describe(q multiblob.Query) string {
	switch q := q.(type) {
	case multiblob.Ref:
		return q.String()
	case multiblob.GetOptions:
		s := q.Ref.String()
		if q.Size != nil {
			s += ", size=" + strconv.FormatInt(*q.Size, 10)
		}
		if q.Max != nil {
			s += ", max=" + strconv.FormatInt(*q.Max, 10)
		}
		return s
	default:
		return "?"
	}
}

func (s *Store) Has(ctx context.Context, ref multiblob.Ref) (bool, error) {
	has, err := s.s.Has(ctx, ref)
	if err != nil {
		log.Printf("ERROR in Has %s: %s", ref, err)
	} else {
		log.Printf("Has %s: %v", ref, has)
	}
	return has, err
}

func (s *Store) Size(ctx context.Context, ref multiblob.Ref) (int64, bool, error) {
	size, ok, err := s.s.Size(ctx, ref)
	if err != nil {
		log.Printf("ERROR in Size %s: %s", ref, err)
	} else if ok {
		log.Printf("Size %s: %d", ref, size)
	} else {
		log.Printf("Size %s: not found", ref)
	}
	return size, ok, err
}

func (s *Store) Meta(ctx context.Context, ref multiblob.Ref) (*multiblob.Meta, error) {
	m, err := s.s.Meta(ctx, ref)
	if err != nil {
		log.Printf("ERROR in Meta %s: %s", ref, err)
	} else if m != nil {
		log.Printf("Meta %s: size=%d, created=%s", ref, m.Size, m.Created)
	} else {
		log.Printf("Meta %s: not found", ref)
	}
	return m, err
}

func (s *Store) Ls(ctx context.Context, opts multiblob.LsOptions, f func(multiblob.Entry) error) error {
	log.Printf("Ls, old=%v, live=%v, meta=%v", opts.Old, opts.Live, opts.Meta)
	err := s.s.Ls(ctx, opts, func(e multiblob.Entry) error {
		err := f(e)
		switch {
		case err != nil:
			log.Printf("  ERROR in Ls: %s: %s", e.Ref, err)
		case e.Sync:
			log.Print("  Ls: sync")
		default:
			log.Printf("  Ls: %s", e.Ref)
		}
		return err
	})
	if err != nil {
		log.Printf("ERROR in Ls: %s", err)
	}
	return err
}

func (s *Store) Add(ctx context.Context, expected multiblob.Ref) (multiblob.Writer, error) {
	w, err := s.s.Add(ctx, expected)
	if err != nil {
		log.Printf("ERROR in Add, expected=%s: %s", expected, err)
		return nil, err
	}
	return &writer{Writer: w}, nil
}

type writer struct {
	multiblob.Writer
}

func (w *writer) Close() error {
	err := w.Writer.Close()
	if err != nil {
		log.Printf("ERROR committing blob: %s", err)
	} else {
		log.Printf("Added %s", w.Writer.Ref())
	}
	return err
}

func (w *writer) Abort() error {
	err := w.Writer.Abort()
	if err != nil {
		log.Printf("ERROR aborting write: %s", err)
	} else {
		log.Print("Aborted write")
	}
	return err
}

func (s *Store) Rm(ctx context.Context, ref multiblob.Ref) error {
	err := s.s.Rm(ctx, ref)
	if err != nil {
		log.Printf("ERROR in Rm %s: %s", ref, err)
	} else {
		log.Printf("Rm %s", ref)
	}
	return err
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (multiblob.Store, error) {
		nestedStore, err := store.Nested(ctx, conf)
		if err != nil {
			return nil, err
		}
		return New(nestedStore), nil
	})
}
