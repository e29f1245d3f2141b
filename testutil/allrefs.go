package testutil

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"

	"github.com/Connoropolous/multiblob"
)

// AllRefs writes a random set of random blobs to an empty store
// and makes sure that the right set of refs comes back in a call to Ls.
// With long set it also checks the sizes reported with each entry.
func AllRefs(ctx context.Context, t *testing.T, storeFactory func() multiblob.Store, long bool) {
	if err := quick.Check(allRefsHelper(ctx, t, storeFactory, long), nil); err != nil {
		t.Error(err)
	}
}

func allRefsHelper(ctx context.Context, t *testing.T, storeFactory func() multiblob.Store, long bool) func([][]byte) bool {
	return func(blobs [][]byte) bool {
		var (
			store = storeFactory()
			sizes = make(map[multiblob.Ref]int64)
		)
		for _, blob := range blobs {
			ref, err := multiblob.Put(ctx, store, bytes.NewReader(blob), "")
			if err != nil {
				t.Fatal(err)
			}
			sizes[ref] = int64(len(blob))
		}

		want := make([]multiblob.Ref, 0, len(sizes))
		for ref := range sizes {
			want = append(want, ref)
		}

		var got []multiblob.Ref
		opts := multiblob.LsOptions{Old: true, Meta: long}
		err := store.Ls(ctx, opts, func(e multiblob.Entry) error {
			if e.Sync {
				t.Errorf("unexpected sync marker in old-only listing")
				return nil
			}
			got = append(got, e.Ref)
			if long {
				if e.Meta == nil {
					t.Errorf("no meta for %s", e.Ref)
				} else if e.Meta.Size != sizes[e.Ref] {
					t.Errorf("got size %d for %s, want %d", e.Meta.Size, e.Ref, sizes[e.Ref])
				}
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

		if diff := cmp.Diff(want, got); diff != "" {
			t.Logf("mismatch (-want +got):\n%s", diff)
			return false
		}
		return true
	}
}
