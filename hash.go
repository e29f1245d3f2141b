package multiblob

import (
	"crypto/sha256"
	"hash"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2s"
)

// DefaultAlg is the hash algorithm stores use unless configured otherwise.
const DefaultAlg = "blake2s"

var (
	algMu sync.RWMutex
	algs  = map[string]func() hash.Hash{
		"blake2s": newBlake2s,
		"blake3":  func() hash.Hash { return blake3.New() },
		"sha256":  sha256.New,
	}
)

func newBlake2s() hash.Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		// Only possible with an oversized key.
		panic(err)
	}
	return h
}

// RegisterAlg makes a hash algorithm available under the given tag,
// replacing any previous registration.
func RegisterAlg(alg string, f func() hash.Hash) error {
	if !ValidAlg(alg) {
		return errors.Wrapf(ErrMalformedRef, "invalid algorithm %q", alg)
	}
	algMu.Lock()
	algs[alg] = f
	algMu.Unlock()
	return nil
}

// NewHash returns a fresh hash.Hash for the named algorithm.
func NewHash(alg string) (hash.Hash, error) {
	algMu.RLock()
	f, ok := algs[alg]
	algMu.RUnlock()
	if !ok {
		return nil, errors.Wrap(ErrUnknownAlg, alg)
	}
	return f(), nil
}

// Algs lists the registered algorithm tags in sorted order.
func Algs() []string {
	algMu.RLock()
	defer algMu.RUnlock()

	result := make([]string, 0, len(algs))
	for alg := range algs {
		result = append(result, alg)
	}
	sort.Strings(result)
	return result
}

// Digester hashes the content of a pending write
// and produces its ref when the write is complete.
// It checks the result against an expected ref, if one was given.
type Digester struct {
	alg   string
	codec Codec
	h     hash.Hash
	n     int64
	want  *Hash
	wantR Ref
}

// NewDigester produces a Digester hashing with alg and encoding with codec.
// If expected is non-empty it must decode under codec,
// and Finish fails unless the content hashes to it.
func NewDigester(alg string, codec Codec, expected Ref) (*Digester, error) {
	h, err := NewHash(alg)
	if err != nil {
		return nil, err
	}
	d := &Digester{alg: alg, codec: codec, h: h}
	if expected != "" {
		want, err := codec.Decode(expected)
		if err != nil {
			return nil, errors.Wrap(err, "decoding expected ref")
		}
		d.want = &want
		d.wantR = expected
	}
	return d, nil
}

// Write implements io.Writer.
// It never fails.
func (d *Digester) Write(p []byte) (int, error) {
	d.h.Write(p)
	d.n += int64(len(p))
	return len(p), nil
}

// Size is the number of bytes written so far.
func (d *Digester) Size() int64 {
	return d.n
}

// Finish computes the ref of the content written so far.
// If an expected ref was given and differs,
// Finish returns the computed ref together with a *MismatchError.
func (d *Digester) Finish() (Ref, error) {
	got := Hash{Alg: d.alg, Digest: d.h.Sum(nil)}
	ref, err := d.codec.Encode(got.Digest, got.Alg)
	if err != nil {
		return "", errors.Wrap(err, "encoding ref")
	}
	if d.want != nil && !d.want.Equal(got) {
		return ref, &MismatchError{Want: d.wantR, Got: ref}
	}
	return ref, nil
}
