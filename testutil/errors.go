package testutil

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Connoropolous/multiblob"
)

// NotFound checks that absence is a result for the probes
// and an ErrNotFound error for Get and Rm.
func NotFound(ctx context.Context, t *testing.T, store multiblob.Store) {
	ref := Absent(ctx, t, store)

	has, err := store.Has(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Errorf("Has(%s) is true for an absent blob", ref)
	}

	size, ok, err := store.Size(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if ok || size != 0 {
		t.Errorf("got Size %d, %v for an absent blob; want 0, false", size, ok)
	}

	m, err := store.Meta(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Errorf("got Meta %+v for an absent blob", *m)
	}

	if _, err = store.Get(ctx, ref); !errors.Is(err, multiblob.ErrNotFound) {
		t.Errorf("got Get error %v, want ErrNotFound", err)
	}
	if err = store.Rm(ctx, ref); !errors.Is(err, multiblob.ErrNotFound) {
		t.Errorf("got Rm error %v, want ErrNotFound", err)
	}
}

// Mismatch checks that a write whose content does not hash to the expected ref
// fails and stores nothing.
func Mismatch(ctx context.Context, t *testing.T, store multiblob.Store) {
	want, err := multiblob.Put(ctx, store, bytes.NewReader([]byte("foo")), "")
	if err != nil {
		t.Fatal(err)
	}

	_, err = multiblob.Put(ctx, store, bytes.NewReader([]byte("bar")), want)
	var merr *multiblob.MismatchError
	if !errors.As(err, &merr) {
		t.Fatalf("got error %v, want MismatchError", err)
	}
	if !errors.Is(err, multiblob.ErrHashMismatch) {
		t.Errorf("error %v does not wrap ErrHashMismatch", err)
	}
	if merr.Want != want {
		t.Errorf("MismatchError wants %s, want %s", merr.Want, want)
	}

	has, err := store.Has(ctx, merr.Got)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Errorf("mismatched content was stored as %s", merr.Got)
	}

	err = store.Ls(ctx, multiblob.DefaultLsOptions, func(e multiblob.Entry) error {
		if e.Ref == merr.Got {
			t.Errorf("mismatched content listed as %s", e.Ref)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// An expected ref naming no stored blob stays absent.
	absent := Absent(ctx, t, store)
	_, err = multiblob.Put(ctx, store, bytes.NewReader([]byte("not the absent blob")), absent)
	if !errors.As(err, &merr) {
		t.Fatalf("got error %v, want MismatchError", err)
	}
	if merr.Want != absent {
		t.Errorf("MismatchError wants %s, want %s", merr.Want, absent)
	}
	for _, ref := range []multiblob.Ref{absent, merr.Got} {
		has, err := store.Has(ctx, ref)
		if err != nil {
			t.Fatal(err)
		}
		if has {
			t.Errorf("Has(%s) is true after mismatched write", ref)
		}
	}

	if _, err = store.Add(ctx, "not a ref"); !errors.Is(err, multiblob.ErrMalformedRef) {
		t.Errorf("got Add error %v for a malformed expected ref, want ErrMalformedRef", err)
	}
}

// Remove checks that a removed blob is gone from the probes and the listing.
func Remove(ctx context.Context, t *testing.T, store multiblob.Store) {
	ref, err := multiblob.Put(ctx, store, bytes.NewReader([]byte("doomed")), "")
	if err != nil {
		t.Fatal(err)
	}
	if err = store.Rm(ctx, ref); err != nil {
		t.Fatal(err)
	}

	has, err := store.Has(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Errorf("Has(%s) is true after Rm", ref)
	}

	err = store.Ls(ctx, multiblob.LsOptions{Old: true, Meta: true}, func(e multiblob.Entry) error {
		if e.Ref == ref {
			t.Errorf("%s listed after Rm", ref)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// Removed content can be written again.
	ref2, err := multiblob.Put(ctx, store, bytes.NewReader([]byte("doomed")), ref)
	if err != nil {
		t.Fatal(err)
	}
	if ref2 != ref {
		t.Errorf("rewrite produced %s, want %s", ref2, ref)
	}
}
