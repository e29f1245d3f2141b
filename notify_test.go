package multiblob

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNotifier(t *testing.T) {
	var n Notifier

	n.Publish(Meta{Ref: "before"})

	s1 := n.Subscribe()
	defer s1.Close()
	s2 := n.Subscribe()

	for _, ref := range []Ref{"a", "b", "c"} {
		n.Publish(Meta{Ref: ref})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, want := range []Ref{"a", "b", "c"} {
		m, err := s1.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if m.Ref != want {
			t.Errorf("got %s, want %s", m.Ref, want)
		}
	}

	// Closing one subscriber leaves the other intact.
	s2.Close()
	if _, err := s2.Next(ctx); !errors.Is(err, ErrSubscriptionClosed) {
		t.Errorf("got %v from a closed subscription, want ErrSubscriptionClosed", err)
	}
	s2.Close()

	n.Publish(Meta{Ref: "d"})
	m, err := s1.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m.Ref != "d" {
		t.Errorf("got %s, want d", m.Ref)
	}

	short, cancel2 := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel2()
	if _, err = s1.Next(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v waiting on an idle subscription, want context.DeadlineExceeded", err)
	}
}

func TestFeed(t *testing.T) {
	var (
		n   Notifier
		ctx = context.Background()
	)

	walk := func(f func(Entry) error) error {
		for _, ref := range []Ref{"x", "y"} {
			if err := f(Entry{Ref: ref}); err != nil {
				return err
			}
		}
		// Published mid-walk: must reach the live phase.
		n.Publish(Meta{Ref: "z", Size: 7})
		return nil
	}

	errStop := errors.New("stop")

	var got []Entry
	err := Feed(ctx, &n, LsOptions{Old: true, Live: true, Meta: true}, walk, func(e Entry) error {
		got = append(got, e)
		if e.Ref == "z" {
			return errStop
		}
		return nil
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("got %v, want errStop", err)
	}

	if len(got) != 4 {
		t.Fatalf("got %d entries, want 4", len(got))
	}
	if got[0].Ref != "x" || got[1].Ref != "y" {
		t.Errorf("got old entries %s, %s; want x, y", got[0].Ref, got[1].Ref)
	}
	if !got[2].Sync {
		t.Error("third entry is not the sync marker")
	}
	if got[3].Ref != "z" || got[3].Meta == nil || got[3].Meta.Size != 7 {
		t.Errorf("got live entry %+v, want z with size 7", got[3])
	}

	// Old only: no sync marker.
	got = nil
	err = Feed(ctx, &n, DefaultLsOptions, walk, func(e Entry) error {
		got = append(got, e)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range got {
		if e.Sync {
			t.Error("sync marker in old-only listing")
		}
	}

	if err = Feed(ctx, &n, LsOptions{}, walk, func(Entry) error { return nil }); !errors.Is(err, ErrEmptyListing) {
		t.Errorf("got %v, want ErrEmptyListing", err)
	}
}
