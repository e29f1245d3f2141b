package sqlite3

import (
	"context"
	"database/sql"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/testutil"
)

func TestStore(t *testing.T) {
	data := make([]byte, 1<<16)
	rand.New(rand.NewSource(1)).Read(data)

	ctx := context.Background()
	testutil.ReadWrite(ctx, t, newTestStore(ctx, t), data)
}

func TestAllRefs(t *testing.T) {
	ctx := context.Background()
	testutil.AllRefs(ctx, t, func() multiblob.Store { return newTestStore(ctx, t) }, true)
}

func TestLengths(t *testing.T) {
	ctx := context.Background()
	testutil.Lengths(ctx, t, newTestStore(ctx, t))
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	testutil.NotFound(ctx, t, newTestStore(ctx, t))
}

func TestMismatch(t *testing.T) {
	ctx := context.Background()
	testutil.Mismatch(ctx, t, newTestStore(ctx, t))
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	testutil.Remove(ctx, t, newTestStore(ctx, t))
}

func TestLive(t *testing.T) {
	ctx := context.Background()
	testutil.Live(ctx, t, newTestStore(ctx, t))
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blobs.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := multiblob.Put(ctx, s, strings.NewReader("durable"), "")
	if err != nil {
		t.Fatal(err)
	}
	want, err := s.Meta(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	s, err = New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Meta(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatalf("%s missing after reopening", ref)
	}
	if got.Size != want.Size || !got.Created.Equal(want.Created) {
		t.Errorf("got meta %+v after reopening, want %+v", *got, *want)
	}
}

func newTestStore(ctx context.Context, t *testing.T) *Store {
	f, err := os.CreateTemp(t.TempDir(), "multiblobsqlite3test")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	db, err := sql.Open("sqlite3", f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
