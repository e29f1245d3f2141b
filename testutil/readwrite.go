package testutil

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/Connoropolous/multiblob"
)

// ReadWrite permits testing a Store implementation
// by writing some data to it,
// then reading it back out to make sure it's the same.
// It also checks that the probes agree with what was written.
func ReadWrite(ctx context.Context, t *testing.T, store multiblob.Store, data []byte) {
	t1 := time.Now()
	ref, err := multiblob.Put(ctx, store, bytes.NewReader(data), "")
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("wrote %d bytes in %s", len(data), time.Since(t1))

	t2 := time.Now()
	r, err := store.Get(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("read %d bytes in %s", len(got), time.Since(t2))

	if len(got) != len(data) {
		t.Errorf("got length %d, want %d", len(got), len(data))
	} else {
		for i := 0; i < len(got); i++ {
			if got[i] != data[i] {
				t.Fatalf("mismatch at position %d (of %d)", i, len(got))
			}
		}
	}

	has, err := store.Has(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Errorf("Has(%s) is false after writing", ref)
	}

	size, ok, err := store.Size(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || size != int64(len(data)) {
		t.Errorf("got Size %d, %v; want %d, true", size, ok, len(data))
	}

	m, err := store.Meta(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatalf("no Meta for %s", ref)
	}
	if m.Ref != ref || m.Size != int64(len(data)) {
		t.Errorf("got Meta {%s %d}, want {%s %d}", m.Ref, m.Size, ref, len(data))
	}
	if m.Created.IsZero() {
		t.Error("Meta has zero creation time")
	}

	// Writing the same content again produces the same ref.
	ref2, err := multiblob.Put(ctx, store, bytes.NewReader(data), ref)
	if err != nil {
		t.Fatal(err)
	}
	if ref2 != ref {
		t.Errorf("second write produced %s, want %s", ref2, ref)
	}
}
