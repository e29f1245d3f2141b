package multiblob

import (
	"crypto/sha1"
	"errors"
	"strings"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"
)

func TestSigilRoundTrip(t *testing.T) {
	var c SigilCodec

	err := quick.Check(func(digest []byte, blake bool) bool {
		if len(digest) == 0 {
			digest = []byte{0}
		}
		alg := "sha256"
		if blake {
			alg = "blake2s"
		}
		ref, err := c.Encode(digest, alg)
		if err != nil {
			t.Log(err)
			return false
		}
		if !strings.HasPrefix(string(ref), "&") || !strings.HasSuffix(string(ref), "."+alg) {
			t.Logf("bad ref form %s", ref)
			return false
		}
		if !c.IsRef(string(ref)) {
			t.Logf("IsRef(%s) is false", ref)
			return false
		}
		h, err := c.Decode(ref)
		if err != nil {
			t.Log(err)
			return false
		}
		if diff := cmp.Diff(Hash{Alg: alg, Digest: digest}, h); diff != "" {
			t.Logf("mismatch (-want +got):\n%s", diff)
			return false
		}
		return true
	}, nil)
	if err != nil {
		t.Error(err)
	}
}

func TestSigilKnown(t *testing.T) {
	d, err := NewDigester("sha256", SigilCodec{}, "")
	if err != nil {
		t.Fatal(err)
	}
	d.Write([]byte("hello"))
	ref, err := d.Finish()
	if err != nil {
		t.Fatal(err)
	}
	const want = "&LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=.sha256"
	if ref != want {
		t.Errorf("got %s, want %s", ref, want)
	}
	if d.Size() != 5 {
		t.Errorf("got size %d, want 5", d.Size())
	}
}

func TestSigilMalformed(t *testing.T) {
	cases := []string{
		"",
		"LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=.sha256",
		"&LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=",
		"&LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=.",
		"&LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=.tmp",
		"&LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=.sha/256",
		"&not base64!.sha256",
		"&.sha256",
		"&LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ.sha256",
	}
	var c SigilCodec
	for _, s := range cases {
		if c.IsRef(s) {
			t.Errorf("IsRef(%q) is true", s)
		}
		if _, err := c.Decode(Ref(s)); !errors.Is(err, ErrMalformedRef) {
			t.Errorf("Decode(%q) error is %v, want ErrMalformedRef", s, err)
		}
	}
}

func TestDigesterMismatch(t *testing.T) {
	d, err := NewDigester("sha256", SigilCodec{}, "&LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=.sha256")
	if err != nil {
		t.Fatal(err)
	}
	d.Write([]byte("goodbye"))
	ref, err := d.Finish()
	var merr *MismatchError
	if !errors.As(err, &merr) {
		t.Fatalf("got %v, want MismatchError", err)
	}
	if merr.Got != ref {
		t.Errorf("MismatchError reports %s, Finish returned %s", merr.Got, ref)
	}

	// An expected ref under another algorithm never matches.
	d, err = NewDigester("blake2s", SigilCodec{}, "&LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=.sha256")
	if err != nil {
		t.Fatal(err)
	}
	d.Write([]byte("hello"))
	if _, err = d.Finish(); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("got %v, want ErrHashMismatch", err)
	}

	if _, err = NewHash("md5"); !errors.Is(err, ErrUnknownAlg) {
		t.Errorf("got %v, want ErrUnknownAlg", err)
	}
}

func TestErrors(t *testing.T) {
	lerr := &LengthError{Ref: "&x.sha256", Max: Int64(3), Actual: 5}
	if !errors.Is(lerr, ErrIncorrectLength) {
		t.Error("LengthError does not wrap ErrIncorrectLength")
	}
	const wantMsg = "incorrect blob length, requested: none, max: 3, file was: 5 for blob: &x.sha256"
	if lerr.Error() != wantMsg {
		t.Errorf("got %q, want %q", lerr.Error(), wantMsg)
	}

	under := errors.New("disk full")
	cerr := &CommitError{Kind: ErrStagingWrite, Path: "/x", Err: under}
	if !errors.Is(cerr, ErrStagingWrite) || !errors.Is(cerr, under) {
		t.Error("CommitError does not wrap both its kind and its cause")
	}
	if errors.Is(cerr, ErrRename) {
		t.Error("staging CommitError matches ErrRename")
	}

	opts := GetOptions{Ref: "&x.sha256", Size: Int64(4), Max: Int64(10)}
	if err := opts.Check(4); err != nil {
		t.Errorf("got %v for a conforming size", err)
	}
	if err := opts.Check(5); !errors.As(err, &lerr) || lerr.Actual != 5 {
		t.Errorf("got %v for a nonconforming size", err)
	}

	if err := (LsOptions{}).Validate(); !errors.Is(err, ErrEmptyListing) {
		t.Errorf("got %v, want ErrEmptyListing", err)
	}
}

func TestRegisterAlg(t *testing.T) {
	if err := RegisterAlg("sha1", sha1.New); err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, alg := range Algs() {
		if alg == "sha1" {
			found = true
		}
	}
	if !found {
		t.Errorf("sha1 missing from %v", Algs())
	}

	d, err := NewDigester("sha1", SigilCodec{}, "")
	if err != nil {
		t.Fatal(err)
	}
	d.Write([]byte("hello"))
	ref, err := d.Finish()
	if err != nil {
		t.Fatal(err)
	}
	const want = "&qvTGHdzF6KLavt4PO0gs2a6pQ00=.sha1"
	if ref != want {
		t.Errorf("got %s, want %s", ref, want)
	}

	for _, alg := range []string{"tmp", "", "sha/1"} {
		if err = RegisterAlg(alg, sha1.New); !errors.Is(err, ErrMalformedRef) {
			t.Errorf("RegisterAlg(%q) error is %v, want ErrMalformedRef", alg, err)
		}
	}
}
