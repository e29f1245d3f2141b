package file

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
)

// statPath stats path,
// sharing the result with any concurrent callers for the same path.
// It returns nil, nil when there is no blob at path.
func (s *Store) statPath(path string) (os.FileInfo, error) {
	v, err, _ := s.probes.Do(path, func() (interface{}, error) {
		info, err := s.stat(path)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			return nil, nil
		}
		return info, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	info, _ := v.(os.FileInfo)
	return info, nil
}

func (s *Store) probe(ref multiblob.Ref) (os.FileInfo, error) {
	path, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return s.statPath(path)
}

// Has tells whether the blob with the given ref is present.
func (s *Store) Has(_ context.Context, ref multiblob.Ref) (bool, error) {
	info, err := s.probe(ref)
	return info != nil, err
}

// Size returns the size of the blob with the given ref.
func (s *Store) Size(_ context.Context, ref multiblob.Ref) (int64, bool, error) {
	info, err := s.probe(ref)
	if info == nil {
		return 0, false, err
	}
	return info.Size(), true, nil
}

// Meta describes the blob with the given ref,
// or returns nil if it is absent.
func (s *Store) Meta(_ context.Context, ref multiblob.Ref) (*multiblob.Meta, error) {
	info, err := s.probe(ref)
	if info == nil {
		return nil, err
	}
	return toMeta(ref, info), nil
}

// The rename that commits a blob preserves the staging file's mtime,
// which is the time its last byte was written.
func toMeta(ref multiblob.Ref, info os.FileInfo) *multiblob.Meta {
	return &multiblob.Meta{
		Ref:     ref,
		Size:    info.Size(),
		Created: info.ModTime(),
	}
}
