package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Connoropolous/multiblob"
)

// At most this many stats run at once when listing with metadata.
const metaParallelism = 32

// Ls lists the blobs in the store,
// follows new ones,
// or both (see multiblob.Feed).
func (s *Store) Ls(ctx context.Context, opts multiblob.LsOptions, f func(multiblob.Entry) error) error {
	return multiblob.Feed(ctx, &s.notifier, opts, func(f func(multiblob.Entry) error) error {
		return s.walk(ctx, opts.Meta, f)
	}, f)
}

// walk visits {root}/{alg}/{shard}/{rest} in lexical order.
func (s *Store) walk(ctx context.Context, long bool, f func(multiblob.Entry) error) error {
	algInfos, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading dir %s", s.root)
	}

	for _, algInfo := range algInfos {
		if !algInfo.IsDir() || !multiblob.ValidAlg(algInfo.Name()) {
			continue
		}
		algDir := filepath.Join(s.root, algInfo.Name())

		shardInfos, err := os.ReadDir(algDir)
		if err != nil {
			return errors.Wrapf(err, "reading dir %s", algDir)
		}
		for _, shardInfo := range shardInfos {
			if !shardInfo.IsDir() || len(shardInfo.Name()) != 2 {
				continue
			}
			shardDir := filepath.Join(algDir, shardInfo.Name())

			blobInfos, err := os.ReadDir(shardDir)
			if err != nil {
				return errors.Wrapf(err, "reading dir %s", shardDir)
			}

			var (
				paths []string
				refs  []multiblob.Ref
			)
			for _, blobInfo := range blobInfos {
				if blobInfo.IsDir() {
					continue
				}
				path := filepath.Join(shardDir, blobInfo.Name())
				ref, err := s.refFromPath(path)
				if err != nil {
					continue
				}
				paths = append(paths, path)
				refs = append(refs, ref)
			}

			if err = s.emit(ctx, paths, refs, long, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) emit(ctx context.Context, paths []string, refs []multiblob.Ref, long bool, f func(multiblob.Entry) error) error {
	if !long {
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f(multiblob.Entry{Ref: ref}); err != nil {
				return err
			}
		}
		return nil
	}

	metas := make([]*multiblob.Meta, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metaParallelism)
	for i := range refs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := s.statPath(paths[i])
			if err != nil {
				return err
			}
			if info != nil {
				metas[i] = toMeta(refs[i], info)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, m := range metas {
		if m == nil {
			// Removed since the directory was read.
			continue
		}
		if err := f(multiblob.Entry{Ref: refs[i], Meta: m}); err != nil {
			return err
		}
	}
	return nil
}
