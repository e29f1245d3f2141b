package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
)

// Add begins writing a new blob.
// It waits for the staging directory to be ready,
// then creates a uniquely named staging file.
// Content written to the result is hashed as it is staged.
// Close renames the staging file to the blob's path
// and notifies live listings.
func (s *Store) Add(ctx context.Context, expected multiblob.Ref) (multiblob.Writer, error) {
	d, err := multiblob.NewDigester(s.alg, s.codec, expected)
	if err != nil {
		return nil, err
	}

	if err = s.gate.wait(ctx); err != nil {
		return nil, errors.Wrap(err, "waiting for staging dir")
	}

	tmpname := filepath.Join(s.tmpdir(), fmt.Sprintf("%d-%d", time.Now().UnixNano(), s.nextSeq()))
	f, err := os.OpenFile(tmpname, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, &multiblob.CommitError{Kind: multiblob.ErrStagingWrite, Path: tmpname, Err: err}
	}

	return &writer{s: s, d: d, f: f, tmpname: tmpname}, nil
}

type writer struct {
	s       *Store
	d       *multiblob.Digester
	f       *os.File
	tmpname string

	ref  multiblob.Ref
	done bool
	err  error // sticky
}

func (w *writer) Write(p []byte) (int, error) {
	if w.done {
		return 0, multiblob.ErrWriterClosed
	}
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.f.Write(p)
	w.d.Write(p[:n])
	if err != nil {
		w.err = w.stagingErr(err)
		return n, w.err
	}
	return n, nil
}

func (w *writer) WriteString(str string) (int, error) {
	return w.Write([]byte(str))
}

// Close commits the blob.
// On failure nothing is linked into the store.
func (w *writer) Close() error {
	if w.done {
		return w.err
	}
	w.done = true
	w.err = w.commit()
	return w.err
}

func (w *writer) commit() error {
	if w.err != nil {
		w.f.Close()
		os.Remove(w.tmpname)
		return w.err
	}

	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return w.stagingErr(err)
	}
	if err := w.f.Close(); err != nil {
		return w.stagingErr(err)
	}

	ref, err := w.d.Finish()
	if err != nil {
		os.Remove(w.tmpname)
		return err
	}

	path, err := w.s.Resolve(ref)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", ref)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &multiblob.CommitError{Kind: multiblob.ErrRename, Path: path, Err: err}
	}
	if err = os.Rename(w.tmpname, path); err != nil {
		return &multiblob.CommitError{Kind: multiblob.ErrRename, Path: path, Err: err}
	}

	w.ref = ref
	w.s.notifier.Publish(multiblob.Meta{Ref: ref, Size: w.d.Size(), Created: time.Now()})
	return nil
}

func (w *writer) stagingErr(err error) error {
	return &multiblob.CommitError{Kind: multiblob.ErrStagingWrite, Path: w.tmpname, Err: err}
}

// Abort discards the staged content.
func (w *writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.err = multiblob.ErrWriterClosed
	w.f.Close()
	return errors.Wrapf(os.Remove(w.tmpname), "removing %s", w.tmpname)
}

func (w *writer) Ref() multiblob.Ref {
	return w.ref
}
