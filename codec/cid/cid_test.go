package cid

import (
	"errors"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"

	"github.com/Connoropolous/multiblob"
)

func TestRoundTrip(t *testing.T) {
	for _, alg := range []string{"blake2s", "blake3", "sha256"} {
		t.Run(alg, func(t *testing.T) {
			f := func(data []byte) bool {
				h, err := multiblob.NewHash(alg)
				if err != nil {
					t.Fatal(err)
				}
				h.Write(data)
				want := multiblob.Hash{Alg: alg, Digest: h.Sum(nil)}

				ref, err := Codec{}.Encode(want.Digest, want.Alg)
				if err != nil {
					t.Logf("encoding: %s", err)
					return false
				}
				if !(Codec{}).IsRef(string(ref)) {
					t.Logf("%s is not a ref", ref)
					return false
				}
				got, err := Codec{}.Decode(ref)
				if err != nil {
					t.Logf("decoding %s: %s", ref, err)
					return false
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Logf("mismatch (-want +got):\n%s", diff)
					return false
				}
				return true
			}
			if err := quick.Check(f, nil); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestMalformed(t *testing.T) {
	cases := []string{
		"",
		"not a cid",
		"&yLkW1Z3x9pgOtj3VyU3hJ4pGzn4CUTsCJ2K1ZJCb0wA=.blake2s",
	}
	for _, c := range cases {
		_, err := Codec{}.Decode(multiblob.Ref(c))
		if !errors.Is(err, multiblob.ErrMalformedRef) {
			t.Errorf("decoding %q: got %v, want ErrMalformedRef", c, err)
		}
	}

	if _, err := (Codec{}).Encode([]byte{1, 2, 3}, "md5"); !errors.Is(err, multiblob.ErrMalformedRef) {
		t.Errorf("encoding with unknown algorithm: got %v, want ErrMalformedRef", err)
	}
}
