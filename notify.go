package multiblob

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrSubscriptionClosed is the error returned by Next after Close.
var ErrSubscriptionClosed = errors.New("subscription closed")

// Notifier broadcasts the Meta of newly committed blobs to its subscribers.
// A subscriber sees only what is published after it subscribes.
// Publish never blocks:
// each subscription queues notifications until they are consumed.
// The zero Notifier is ready to use.
type Notifier struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Publish delivers m to every current subscriber.
func (n *Notifier) Publish(m Meta) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for s := range n.subs {
		s.push(m)
	}
}

// Subscribe attaches a new subscriber.
// The caller must Close it when done.
func (n *Notifier) Subscribe() *Subscription {
	s := &Subscription{
		n:      n,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	n.mu.Lock()
	if n.subs == nil {
		n.subs = make(map[*Subscription]struct{})
	}
	n.subs[s] = struct{}{}
	n.mu.Unlock()

	return s
}

// Subscription is one subscriber's view of a Notifier.
type Subscription struct {
	n      *Notifier
	signal chan struct{} // capacity 1; nonempty when queue may be nonempty
	done   chan struct{}
	once   sync.Once

	mu    sync.Mutex // protects queue
	queue []Meta
}

func (s *Subscription) push(m Meta) {
	s.mu.Lock()
	s.queue = append(s.queue, m)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Next waits for the next notification.
func (s *Subscription) Next(ctx context.Context) (Meta, error) {
	for {
		select {
		case <-s.done:
			return Meta{}, ErrSubscriptionClosed
		default:
		}

		s.mu.Lock()
		if len(s.queue) > 0 {
			m := s.queue[0]
			s.queue[0] = Meta{}
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return m, nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return Meta{}, ctx.Err()
		case <-s.done:
			return Meta{}, ErrSubscriptionClosed
		case <-s.signal:
		}
	}
}

// Close detaches s from its Notifier.
// Other subscribers are unaffected.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.n.mu.Lock()
		delete(s.n.subs, s)
		s.n.mu.Unlock()
		close(s.done)
	})
}

// Feed implements the Ls contract for a store
// given a function that lists its existing blobs
// and the Notifier its writes publish to.
//
// With both opts.Old and opts.Live,
// the subscription is attached before walk starts,
// so blobs committed during the walk are queued rather than missed.
// Such a blob may be reported both by walk and by the live feed.
func Feed(ctx context.Context, n *Notifier, opts LsOptions, walk func(func(Entry) error) error, f func(Entry) error) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	var sub *Subscription
	if opts.Live {
		sub = n.Subscribe()
		defer sub.Close()
	}

	if opts.Old {
		if err := walk(f); err != nil {
			return err
		}
		if !opts.Live {
			return nil
		}
		if err := f(Entry{Sync: true}); err != nil {
			return err
		}
	}

	for {
		m, err := sub.Next(ctx)
		if err != nil {
			return err
		}
		e := Entry{Ref: m.Ref}
		if opts.Meta {
			e.Meta = &m
		}
		if err = f(e); err != nil {
			return err
		}
	}
}
