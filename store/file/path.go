package file

import (
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
)

// Resolve returns the path at which the blob with the given ref is (or would be) stored.
func (s *Store) Resolve(ref multiblob.Ref) (string, error) {
	h, err := s.codec.Decode(ref)
	if err != nil {
		return "", err
	}
	return s.hashpath(h)
}

func (s *Store) hashpath(h multiblob.Hash) (string, error) {
	if !multiblob.ValidAlg(h.Alg) {
		return "", errors.Wrapf(multiblob.ErrMalformedRef, "invalid algorithm %q", h.Alg)
	}
	if len(h.Digest) < 2 {
		return "", errors.Wrapf(multiblob.ErrMalformedRef, "digest of %d bytes is too short", len(h.Digest))
	}
	x := h.Hex()
	return filepath.Join(s.root, h.Alg, x[:2], x[2:]), nil
}

// refFromPath is the inverse of Resolve.
func (s *Store) refFromPath(path string) (multiblob.Ref, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", errors.Wrapf(err, "relativizing %s", path)
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 3 || len(parts[1]) != 2 || !multiblob.ValidAlg(parts[0]) {
		return "", errors.Wrapf(multiblob.ErrMalformedRef, "%s is not a blob path", path)
	}
	x := parts[1] + parts[2]
	digest, err := hex.DecodeString(x)
	if err != nil || hex.EncodeToString(digest) != x {
		return "", errors.Wrapf(multiblob.ErrMalformedRef, "%s is not a blob path", path)
	}
	return s.codec.Encode(digest, parts[0])
}
