package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Connoropolous/multiblob"
)

// Live checks a combined old-and-live listing:
// existing blobs come first, then a sync marker,
// then every blob added after the marker.
// Canceling the context ends the listing.
func Live(ctx context.Context, t *testing.T, store multiblob.Store) {
	const n = 10

	old, err := multiblob.Put(ctx, store, bytes.NewReader([]byte("old blob")), "")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		synced  = make(chan struct{})
		entries = make(chan multiblob.Entry, n)
		errch   = make(chan error, 1)
	)

	go func() {
		var (
			sawOld  bool
			gotSync bool
		)
		errch <- store.Ls(ctx, multiblob.LsOptions{Old: true, Live: true, Meta: true}, func(e multiblob.Entry) error {
			if e.Sync {
				if gotSync {
					return errors.New("second sync marker")
				}
				if !sawOld {
					return fmt.Errorf("%s not listed before sync marker", old)
				}
				gotSync = true
				close(synced)
				return nil
			}
			if !gotSync {
				if e.Ref == old {
					sawOld = true
				}
				return nil
			}
			entries <- e
			return nil
		})
	}()

	select {
	case <-synced:
	case err := <-errch:
		t.Fatalf("listing ended before sync marker: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sync marker")
	}

	var want []multiblob.Ref
	for i := 0; i < n; i++ {
		ref, err := multiblob.Put(ctx, store, bytes.NewReader([]byte(fmt.Sprintf("live blob %d", i))), "")
		if err != nil {
			t.Fatal(err)
		}
		want = append(want, ref)
	}

	var got []multiblob.Ref
	for len(got) < n {
		select {
		case e := <-entries:
			if e.Meta == nil || e.Meta.Ref != e.Ref {
				t.Errorf("bad meta for live entry %s", e.Ref)
			}
			got = append(got, e.Ref)
		case err := <-errch:
			t.Fatalf("listing ended early: %v", err)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d of %d live entries", len(got), n)
		}
	}

	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	cancel()
	select {
	case err := <-errch:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got listing error %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("listing did not end after cancel")
	}

	if err := store.Ls(context.Background(), multiblob.LsOptions{}, func(multiblob.Entry) error { return nil }); !errors.Is(err, multiblob.ErrEmptyListing) {
		t.Errorf("got error %v for empty listing, want ErrEmptyListing", err)
	}
}
