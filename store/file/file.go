// Package file implements a blob store as a file hierarchy.
//
// Blobs live at {root}/{alg}/{hex[0:2]}/{hex[2:]},
// where hex is the lowercase hex digest.
// Writes are staged in {root}/tmp and renamed into place,
// so a blob's path holds either nothing or its complete content.
// The staging directory is wiped when a Store is created;
// no other process may write beneath root while the Store is in use.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bobg/flock"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/store"
)

var _ multiblob.Store = &Store{}

// Store is a file-based implementation of a blob store.
type Store struct {
	root  string
	alg   string
	codec multiblob.Codec

	gate     gate
	counter  uint64 // staging file sequence, atomic
	notifier multiblob.Notifier
	flocker  flock.Locker

	stat   func(string) (os.FileInfo, error)
	probes singleflight.Group // coalesces stats by path
}

// Option configures a Store.
type Option func(*Store) error

// WithAlg sets the hash algorithm for new blobs.
// The default is multiblob.DefaultAlg.
func WithAlg(alg string) Option {
	return func(s *Store) error {
		if _, err := multiblob.NewHash(alg); err != nil {
			return err
		}
		s.alg = alg
		return nil
	}
}

// WithCodec sets the codec for refs.
// The default is multiblob.DefaultCodec.
func WithCodec(c multiblob.Codec) Option {
	return func(s *Store) error {
		s.codec = c
		return nil
	}
}

// WithLockDur sets how long a staging lock left behind by another process
// holds up this Store's reset of the staging directory.
// The default is one minute.
func WithLockDur(d time.Duration) Option {
	return func(s *Store) error {
		if d <= 0 {
			return errors.New("lock duration must be positive")
		}
		s.flocker.LockDur = d
		return nil
	}
}

// New produces a new Store storing data beneath root.
// It resets the staging directory in the background;
// calls to Add wait for that to finish.
func New(root string, opts ...Option) (*Store, error) {
	if root == "" {
		return nil, errors.New("root directory is required")
	}
	s := &Store{
		root:  root,
		alg:   multiblob.DefaultAlg,
		codec: multiblob.DefaultCodec,
		stat:  os.Stat,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	go func() {
		s.gate.open(s.resetStaging())
	}()

	return s, nil
}

// Root is the directory beneath which s stores data.
func (s *Store) Root() string {
	return s.root
}

// Ready waits until the staging directory has been reset,
// returning the error from doing so, if any.
func (s *Store) Ready(ctx context.Context) error {
	return s.gate.wait(ctx)
}

func (s *Store) tmpdir() string {
	return filepath.Join(s.root, "tmp")
}

func (s *Store) resetStaging() error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return errors.Wrapf(err, "ensuring path %s exists", s.root)
	}

	// The lockfile is {root}/tmp.lock.
	dir := s.tmpdir()
	if err := s.lockStaging(dir); err != nil {
		return errors.Wrapf(err, "locking %s", dir)
	}
	defer s.flocker.Unlock(dir)

	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, "removing %s", dir)
	}
	return errors.Wrapf(os.MkdirAll(dir, 0755), "creating %s", dir)
}

// Interval between attempts to take a held staging lock.
const lockRetry = 100 * time.Millisecond

// lockStaging waits out a lock held by another reset,
// or left behind by a process that died during one,
// until the lock is released or expires.
func (s *Store) lockStaging(dir string) error {
	for {
		err := s.flocker.Lock(dir)
		if !errors.Is(err, flock.ErrLocked) {
			return err
		}
		time.Sleep(lockRetry)
	}
}

func (s *Store) nextSeq() uint64 {
	return atomic.AddUint64(&s.counter, 1)
}

// gate holds callers until the staging directory is ready,
// releasing them in arrival order.
type gate struct {
	mu      sync.Mutex
	opened  bool
	err     error
	waiters []chan struct{}
}

func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	if g.opened {
		err := g.err
		g.mu.Unlock()
		return err
	}
	ch := make(chan struct{})
	g.waiters = append(g.waiters, ch)
	g.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.err
	}
}

func (g *gate) open(err error) {
	g.mu.Lock()
	g.opened = true
	g.err = err
	waiters := g.waiters
	g.waiters = nil
	g.mu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}

// Rm removes the blob with the given ref.
// A read in progress may fail or see partial content.
func (s *Store) Rm(_ context.Context, ref multiblob.Ref) error {
	path, err := s.Resolve(ref)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return errors.Wrapf(multiblob.ErrNotFound, "removing %s", ref)
	}
	return errors.Wrapf(err, "removing %s", path)
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (multiblob.Store, error) {
		root, ok := conf["root"].(string)
		if !ok {
			root, ok = conf["dir"].(string)
		}
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		alg, err := store.Alg(conf)
		if err != nil {
			return nil, err
		}
		codec, err := store.Codec(conf)
		if err != nil {
			return nil, err
		}
		return New(root, WithAlg(alg), WithCodec(codec))
	})
}
