package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/store/file"
	"github.com/Connoropolous/multiblob/store/lru"
)

func TestStoreFromConfig(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	root := filepath.Join(dir, "blobs")

	configs := map[string]string{
		"conf.jsonc": `{
  // comments and trailing commas are allowed
  "type": "lru",
  "size": 100,
  "nested": {"type": "file", "root": "` + root + `", "alg": "blake3",},
}`,
		"conf.yaml": `
type: lru
size: 100
nested:
  type: file
  root: ` + root + `
  alg: blake3
`,
	}

	var refs []multiblob.Ref
	for name, text := range configs {
		t.Run(name, func(t *testing.T) {
			filename := filepath.Join(dir, name)
			if err := os.WriteFile(filename, []byte(text), 0644); err != nil {
				t.Fatal(err)
			}
			s, err := storeFromConfig(ctx, filename)
			if err != nil {
				t.Fatal(err)
			}
			if _, ok := s.(*lru.Store); !ok {
				t.Fatalf("got a %T, want *lru.Store", s)
			}
			ref, err := multiblob.Put(ctx, s, strings.NewReader("configured"), "")
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasSuffix(string(ref), ".blake3") {
				t.Errorf("got ref %s, want a blake3 ref", ref)
			}
			refs = append(refs, ref)
		})
	}

	if len(refs) == 2 && refs[0] != refs[1] {
		t.Errorf("configs disagree: %s vs. %s", refs[0], refs[1])
	}

	fs, err := file.New(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, ref := range refs {
		has, err := fs.Has(ctx, ref)
		if err != nil {
			t.Fatal(err)
		}
		if !has {
			t.Errorf("%s not in %s", ref, root)
		}
	}
}

func TestConfigErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := map[string]string{
		"notype.json":  `{"root": "x"}`,
		"badtype.json": `{"type": "nonesuch"}`,
		"broken.json":  `{"type": `,
		"empty.yaml":   ``,
	}
	for name, text := range cases {
		filename := filepath.Join(dir, name)
		if err := os.WriteFile(filename, []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := storeFromConfig(ctx, filename); err == nil {
			t.Errorf("%s: got no error", name)
		}
	}

	if _, err := storeFromConfig(ctx, filepath.Join(dir, "missing.json")); err == nil {
		t.Error("got no error for a missing config file")
	}
}
