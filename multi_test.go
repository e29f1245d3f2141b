package multiblob_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"testing/quick"

	. "github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/store/mem"
)

func TestMulti(t *testing.T) {
	ctx := context.Background()

	err := quick.Check(func(yesBlobs, noBlobs map[string]struct{}) bool {
		var (
			s       = mem.New()
			refs    []Ref
			present = make(map[Ref]int64)
		)
		for b := range yesBlobs {
			ref, err := Put(ctx, s, bytes.NewReader([]byte(b)), "")
			if err != nil {
				t.Log(err)
				return false
			}
			refs = append(refs, ref)
			present[ref] = int64(len(b))
		}

		for b := range noBlobs {
			if _, ok := yesBlobs[b]; ok {
				continue
			}
			d, err := NewDigester(DefaultAlg, DefaultCodec, "")
			if err != nil {
				t.Log(err)
				return false
			}
			d.Write([]byte(b))
			ref, err := d.Finish()
			if err != nil {
				t.Log(err)
				return false
			}
			refs = append(refs, ref)
		}

		has, err := HasMulti(ctx, s, refs)
		if err != nil {
			t.Log(err)
			return false
		}
		sizes, found, err := SizeMulti(ctx, s, refs)
		if err != nil {
			t.Log(err)
			return false
		}

		for i, ref := range refs {
			size, ok := present[ref]
			if has[i] != ok {
				t.Logf("HasMulti reports %v for %s, want %v", has[i], ref, ok)
				return false
			}
			if found[i] != ok {
				t.Logf("SizeMulti reports found=%v for %s, want %v", found[i], ref, ok)
				return false
			}
			if ok && sizes[i] != size {
				t.Logf("SizeMulti reports size %d for %s, want %d", sizes[i], ref, size)
				return false
			}
		}
		return true
	}, nil)
	if err != nil {
		t.Error(err)
	}
}

type failingGetter struct {
	Getter
	bad Ref
}

var errBad = errors.New("bad")

func (g failingGetter) Has(ctx context.Context, ref Ref) (bool, error) {
	if ref == g.bad {
		return false, errBad
	}
	return g.Getter.Has(ctx, ref)
}

func TestMultiErr(t *testing.T) {
	ctx := context.Background()
	s := mem.New()

	good, err := Put(ctx, s, bytes.NewReader([]byte("good")), "")
	if err != nil {
		t.Fatal(err)
	}
	bad, err := Put(ctx, s, bytes.NewReader([]byte("bad")), "")
	if err != nil {
		t.Fatal(err)
	}

	has, err := HasMulti(ctx, failingGetter{Getter: s, bad: bad}, []Ref{good, bad})
	var merr MultiErr
	if !errors.As(err, &merr) {
		t.Fatalf("got %T error, want MultiErr", err)
	}
	if len(merr) != 1 || !errors.Is(merr[bad], errBad) {
		t.Errorf("got %v, want a single error for %s", merr, bad)
	}
	if !has[0] {
		t.Error("good ref not reported present alongside the error")
	}

	if _, err = HasMulti(ctx, s, nil); err != nil {
		t.Errorf("got %v for an empty batch", err)
	}
}
