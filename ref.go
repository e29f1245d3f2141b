package multiblob

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

type (
	// Ref is the printable identifier of a blob.
	// It encodes a hash algorithm and the digest of the blob's content under that algorithm.
	// The exact form depends on the Codec that produced it.
	Ref string

	// Hash is the decoded form of a Ref.
	Hash struct {
		Alg    string
		Digest []byte
	}
)

func (r Ref) String() string {
	return string(r)
}

// Hex returns the digest in lowercase hex.
func (h Hash) Hex() string {
	return hex.EncodeToString(h.Digest)
}

// Equal tells whether h and other name the same algorithm and digest.
func (h Hash) Equal(other Hash) bool {
	return h.Alg == other.Alg && bytes.Equal(h.Digest, other.Digest)
}

// Codec converts between digests and printable refs.
type Codec interface {
	// Encode produces the ref for a digest computed with the named algorithm.
	Encode(digest []byte, alg string) (Ref, error)

	// Decode parses a ref.
	// It returns an error wrapping ErrMalformedRef for anything Encode could not have produced.
	Decode(Ref) (Hash, error)

	// IsRef tells whether s is a valid ref in this encoding.
	IsRef(s string) bool
}

var algRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidAlg tells whether alg can be used as an algorithm tag.
// Tags become directory names in the file store,
// so they are restricted to a safe character set,
// and "tmp" is reserved.
func ValidAlg(alg string) bool {
	return alg != "tmp" && algRegexp.MatchString(alg)
}

// SigilCodec encodes refs as "&" + base64(digest) + "." + alg.
type SigilCodec struct{}

// DefaultCodec is the Codec stores use unless configured otherwise.
var DefaultCodec Codec = SigilCodec{}

// Encode implements Codec.Encode.
func (SigilCodec) Encode(digest []byte, alg string) (Ref, error) {
	if !ValidAlg(alg) {
		return "", errors.Wrapf(ErrMalformedRef, "invalid algorithm %q", alg)
	}
	if len(digest) == 0 {
		return "", errors.Wrap(ErrMalformedRef, "empty digest")
	}
	return Ref("&" + base64.StdEncoding.EncodeToString(digest) + "." + alg), nil
}

// Decode implements Codec.Decode.
func (c SigilCodec) Decode(ref Ref) (Hash, error) {
	s := string(ref)
	if !strings.HasPrefix(s, "&") {
		return Hash{}, errors.Wrapf(ErrMalformedRef, "%q: missing & sigil", s)
	}
	dot := strings.LastIndexByte(s, '.')
	if dot < 0 {
		return Hash{}, errors.Wrapf(ErrMalformedRef, "%q: missing algorithm", s)
	}
	alg := s[dot+1:]
	if !ValidAlg(alg) {
		return Hash{}, errors.Wrapf(ErrMalformedRef, "%q: invalid algorithm", s)
	}
	digest, err := base64.StdEncoding.DecodeString(s[1:dot])
	if err != nil {
		return Hash{}, errors.Wrapf(ErrMalformedRef, "%q: decoding digest: %s", s, err)
	}
	if len(digest) == 0 {
		return Hash{}, errors.Wrapf(ErrMalformedRef, "%q: empty digest", s)
	}

	// Only the canonical spelling is accepted,
	// so that equal hashes always have equal refs.
	if canon, _ := c.Encode(digest, alg); canon != ref {
		return Hash{}, errors.Wrapf(ErrMalformedRef, "%q: non-canonical encoding", s)
	}

	return Hash{Alg: alg, Digest: digest}, nil
}

// IsRef implements Codec.IsRef.
func (c SigilCodec) IsRef(s string) bool {
	_, err := c.Decode(Ref(s))
	return err == nil
}
