package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/Connoropolous/multiblob"
)

// Lengths checks that Get with GetOptions enforces Size and Max
// before handing out any content.
func Lengths(ctx context.Context, t *testing.T, store multiblob.Store) {
	data := bytes.Repeat([]byte("abcdefghij"), 10)
	ref, err := multiblob.Put(ctx, store, bytes.NewReader(data), "")
	if err != nil {
		t.Fatal(err)
	}

	absent := Absent(ctx, t, store)

	n := int64(len(data))
	int64p := multiblob.Int64

	cases := []struct {
		q       multiblob.GetOptions
		wantErr error
	}{
		{q: multiblob.GetOptions{Ref: ref}},
		{q: multiblob.GetOptions{Ref: ref, Size: int64p(n)}},
		{q: multiblob.GetOptions{Ref: ref, Size: int64p(n - 1)}, wantErr: multiblob.ErrIncorrectLength},
		{q: multiblob.GetOptions{Ref: ref, Size: int64p(n + 1)}, wantErr: multiblob.ErrIncorrectLength},
		{q: multiblob.GetOptions{Ref: ref, Max: int64p(n - 1)}, wantErr: multiblob.ErrIncorrectLength},
		{q: multiblob.GetOptions{Ref: ref, Max: int64p(n)}},
		{q: multiblob.GetOptions{Ref: ref, Max: int64p(n + 1)}},
		{q: multiblob.GetOptions{Ref: ref, Size: int64p(n), Max: int64p(n - 1)}, wantErr: multiblob.ErrIncorrectLength},
		{q: multiblob.GetOptions{Ref: ref, Size: int64p(0)}, wantErr: multiblob.ErrIncorrectLength},
		{q: multiblob.GetOptions{}, wantErr: multiblob.ErrMissingRef},
		{q: multiblob.GetOptions{Ref: "not a ref"}, wantErr: multiblob.ErrMissingRef},
		{q: multiblob.GetOptions{Ref: absent}, wantErr: multiblob.ErrNotFound},
		{q: multiblob.GetOptions{Ref: absent, Max: int64p(n)}, wantErr: multiblob.ErrNotFound},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%02d", i+1), func(t *testing.T) {
			r, err := store.Get(ctx, c.q)
			if c.wantErr != nil {
				if !errors.Is(err, c.wantErr) {
					t.Fatalf("got error %v, want %v", err, c.wantErr)
				}
				if r != nil {
					t.Error("got a reader along with the error")
				}
				var lerr *multiblob.LengthError
				if errors.As(err, &lerr) && lerr.Actual != n {
					t.Errorf("LengthError reports actual size %d, want %d", lerr.Actual, n)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("got %q, want %q", got, data)
			}
		})
	}
}

// Absent produces a well-formed ref for a blob the store does not hold,
// by writing a blob and removing it.
func Absent(ctx context.Context, t *testing.T, store multiblob.Store) multiblob.Ref {
	ref, err := multiblob.Put(ctx, store, bytes.NewReader([]byte("absent blob")), "")
	if err != nil {
		t.Fatal(err)
	}
	if err = store.Rm(ctx, ref); err != nil {
		t.Fatal(err)
	}
	return ref
}
