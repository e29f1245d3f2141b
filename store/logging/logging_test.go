package logging

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/store/mem"
	"github.com/Connoropolous/multiblob/testutil"
)

func TestStore(t *testing.T) {
	testutil.ReadWrite(context.Background(), t, New(mem.New()), []byte("logged blob"))
}

func TestLengths(t *testing.T) {
	testutil.Lengths(context.Background(), t, New(mem.New()))
}

func TestLog(t *testing.T) {
	buf := new(bytes.Buffer)
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	ctx := context.Background()
	s := New(mem.New())

	ref, err := multiblob.Put(ctx, s, strings.NewReader("hello"), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.Get(ctx, multiblob.GetOptions{Ref: ref, Max: multiblob.Int64(1)}); err == nil {
		t.Fatal("got no error for oversized blob")
	}
	if err = s.Rm(ctx, ref); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"Added " + ref.String(),
		"ERROR Get " + ref.String() + ", max=1",
		"Rm " + ref.String(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output lacks %q:\n%s", want, out)
		}
	}
}
