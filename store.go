package multiblob

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Query selects a blob to read.
// It is either a bare Ref
// or a GetOptions,
// which additionally constrains the blob's size.
type Query interface {
	query()
}

func (Ref) query() {}

// GetOptions is a Query that checks the blob's size before any of its content is read.
type GetOptions struct {
	Ref Ref

	// Size, if set, is the exact size the blob must have.
	Size *int64

	// Max, if set, is the largest size the blob may have.
	Max *int64
}

func (GetOptions) query() {}

// Check tests a blob's actual size against o,
// returning a *LengthError on violation.
func (o GetOptions) Check(actual int64) error {
	if o.Size != nil && *o.Size != actual {
		return &LengthError{Ref: o.Ref, Size: o.Size, Max: o.Max, Actual: actual}
	}
	if o.Max != nil && actual > *o.Max {
		return &LengthError{Ref: o.Ref, Size: o.Size, Max: o.Max, Actual: actual}
	}
	return nil
}

// Int64 returns a pointer to n,
// for use in GetOptions.
func Int64(n int64) *int64 {
	return &n
}

// Meta describes a stored blob.
// It is also the payload of change notifications.
type Meta struct {
	Ref     Ref
	Size    int64
	Created time.Time
}

// Entry is one item produced by Ls.
// When Sync is true the entry carries no ref:
// it separates the existing blobs from the live ones that follow.
type Entry struct {
	Ref  Ref
	Meta *Meta // set only when LsOptions.Meta is true
	Sync bool
}

// LsOptions control a call to Ls.
type LsOptions struct {
	// Old lists the blobs already in the store.
	Old bool

	// Live follows blobs as they are added,
	// until the context is canceled.
	Live bool

	// Meta fills in Entry.Meta.
	Meta bool
}

// DefaultLsOptions lists existing blobs only.
var DefaultLsOptions = LsOptions{Old: true}

// Validate reports ErrEmptyListing if o requests nothing.
func (o LsOptions) Validate() error {
	if !o.Old && !o.Live {
		return ErrEmptyListing
	}
	return nil
}

// Getter is a read-only Store (qv).
type Getter interface {
	// Get returns a stream of the blob's content.
	// The caller must close it.
	// A missing blob produces an error wrapping ErrNotFound.
	// With GetOptions,
	// a size violation produces a *LengthError before any content is read.
	Get(context.Context, Query) (io.ReadCloser, error)

	// Has tells whether the blob is present.
	Has(context.Context, Ref) (bool, error)

	// Size returns the size of the blob and true,
	// or 0 and false if it is absent.
	Size(context.Context, Ref) (int64, bool, error)

	// Meta describes the blob,
	// or returns nil if it is absent.
	Meta(context.Context, Ref) (*Meta, error)

	// Ls calls a function for each blob selected by the options.
	// If the function returns an error,
	// Ls exits with that error.
	// With Live set,
	// Ls runs until the context is canceled and then returns the context's error.
	Ls(context.Context, LsOptions, func(Entry) error) error
}

// Writer receives the content of a new blob.
// Close commits it;
// after a successful Close, Ref reports the blob's ref.
// Abort discards the content.
type Writer interface {
	io.Writer
	io.StringWriter
	io.Closer
	Abort() error
	Ref() Ref
}

// Store is a blob store.
// It stores byte sequences - "blobs" - of arbitrary length.
// Each blob can be retrieved using its "ref" as a lookup key.
// A ref is derived from the hash of the blob's content.
type Store interface {
	Getter

	// Add begins writing a new blob.
	// If expected is not empty,
	// the write fails with a *MismatchError unless the content hashes to it,
	// and nothing is stored.
	Add(ctx context.Context, expected Ref) (Writer, error)

	// Rm removes a blob.
	// It is not coordinated with reads in progress.
	Rm(context.Context, Ref) error
}

// Put copies r into s as a new blob and returns its ref.
func Put(ctx context.Context, s Store, r io.Reader, expected Ref) (Ref, error) {
	w, err := s.Add(ctx, expected)
	if err != nil {
		return "", errors.Wrap(err, "starting write")
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Abort()
		return "", errors.Wrap(err, "copying content")
	}
	if err = w.Close(); err != nil {
		return "", err
	}
	return w.Ref(), nil
}
