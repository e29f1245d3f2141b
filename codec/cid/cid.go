// Package cid implements a multiblob.Codec that renders refs as CIDv1 strings.
//
// Each ref is a CIDv1 with the "raw" multicodec
// whose multihash carries the digest.
// Only algorithms with a multihash code in the table below can be encoded.
package cid

import (
	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
)

var _ multiblob.Codec = Codec{}

var codes = map[string]uint64{
	"blake2s": multihash.BLAKE2S_MIN + 31, // blake2s-256
	"blake3":  multihash.BLAKE3,
	"sha256":  multihash.SHA2_256,
}

var algs = make(map[uint64]string, len(codes))

func init() {
	for alg, code := range codes {
		algs[code] = alg
	}
}

// Codec is the CIDv1 codec.
type Codec struct{}

// Encode implements multiblob.Codec.Encode.
func (Codec) Encode(digest []byte, alg string) (multiblob.Ref, error) {
	code, ok := codes[alg]
	if !ok {
		return "", errors.Wrapf(multiblob.ErrMalformedRef, "no multihash code for algorithm %q", alg)
	}
	if len(digest) == 0 {
		return "", errors.Wrap(multiblob.ErrMalformedRef, "empty digest")
	}
	mh, err := multihash.Encode(digest, code)
	if err != nil {
		return "", errors.Wrapf(multiblob.ErrMalformedRef, "encoding multihash: %s", err)
	}
	return multiblob.Ref(gocid.NewCidV1(gocid.Raw, mh).String()), nil
}

// Decode implements multiblob.Codec.Decode.
func (Codec) Decode(ref multiblob.Ref) (multiblob.Hash, error) {
	c, err := gocid.Decode(string(ref))
	if err != nil {
		return multiblob.Hash{}, errors.Wrapf(multiblob.ErrMalformedRef, "%q: %s", ref, err)
	}
	if c.Version() != 1 || c.Type() != gocid.Raw {
		return multiblob.Hash{}, errors.Wrapf(multiblob.ErrMalformedRef, "%q: not a CIDv1 raw cid", ref)
	}
	if c.String() != string(ref) {
		return multiblob.Hash{}, errors.Wrapf(multiblob.ErrMalformedRef, "%q: non-canonical encoding", ref)
	}
	dm, err := multihash.Decode(c.Hash())
	if err != nil {
		return multiblob.Hash{}, errors.Wrapf(multiblob.ErrMalformedRef, "%q: %s", ref, err)
	}
	alg, ok := algs[dm.Code]
	if !ok {
		return multiblob.Hash{}, errors.Wrapf(multiblob.ErrMalformedRef, "%q: unsupported multihash %s", ref, dm.Name)
	}
	if len(dm.Digest) == 0 {
		return multiblob.Hash{}, errors.Wrapf(multiblob.ErrMalformedRef, "%q: empty digest", ref)
	}
	return multiblob.Hash{Alg: alg, Digest: dm.Digest}, nil
}

// IsRef implements multiblob.Codec.IsRef.
func (c Codec) IsRef(s string) bool {
	_, err := c.Decode(multiblob.Ref(s))
	return err == nil
}
