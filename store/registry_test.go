package store_test

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/Connoropolous/multiblob"
	. "github.com/Connoropolous/multiblob/store"
	"github.com/Connoropolous/multiblob/codec/cid"
	_ "github.com/Connoropolous/multiblob/store/file"
	_ "github.com/Connoropolous/multiblob/store/lru"
	_ "github.com/Connoropolous/multiblob/store/mem"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()

	conf := map[string]interface{}{
		"size": json.Number("10"),
		"nested": map[string]interface{}{
			"type":  "file",
			"root":  t.TempDir(),
			"alg":   "sha256",
			"codec": "cid",
		},
	}
	s, err := Create(ctx, "lru", conf)
	if err != nil {
		t.Fatal(err)
	}

	ref, err := multiblob.Put(ctx, s, strings.NewReader("hello"), "")
	if err != nil {
		t.Fatal(err)
	}
	h, err := cid.Codec{}.Decode(ref)
	if err != nil {
		t.Fatal(err)
	}
	if h.Alg != "sha256" {
		t.Errorf("got alg %s, want sha256", h.Alg)
	}

	_, err = Create(ctx, "nonesuch", nil)
	if err == nil {
		t.Error("got no error for unknown store type")
	} else {
		for _, key := range []string{"file", "lru", "mem"} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error %q does not mention known type %s", err, key)
			}
		}
	}
	if _, err = Create(ctx, "file", map[string]interface{}{"root": t.TempDir(), "alg": "md5"}); err == nil {
		t.Error("got no error for unknown alg")
	}
	if _, err = Create(ctx, "lru", map[string]interface{}{"size": 10}); err == nil {
		t.Error("got no error for missing nested store")
	}
}

func TestInt(t *testing.T) {
	conf := map[string]interface{}{
		"a": 1,
		"b": int64(2),
		"c": float64(3),
		"d": json.Number("4"),
		"e": "5",
	}
	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3, "d": 4} {
		got, ok := Int(conf, key)
		if !ok || got != want {
			t.Errorf("Int(%s) = %d, %v; want %d, true", key, got, ok, want)
		}
	}
	if _, ok := Int(conf, "e"); ok {
		t.Error("Int accepted a string")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if !sort.StringsAreSorted(keys) {
		t.Errorf("keys %v are not sorted", keys)
	}
	for _, want := range []string{"file", "lru", "mem"} {
		i := sort.SearchStrings(keys, want)
		if i == len(keys) || keys[i] != want {
			t.Errorf("%s missing from %v", want, keys)
		}
	}
}
