// Package memory is the in-process change transport. It fits a single replica; use the
// redis or amqp transport when several replicas serve the same restaurants.
package memory

import (
	"context"
	"errors"
	"sync"

	"kitchen/internal/core/ports"
)

// DefaultBuffer is the per-subscription queue length.
const DefaultBuffer = 64

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = errors.New("notifier is closed")

// Notifier fans events out to subscriptions in the same process. A subscriber that
// falls behind loses events once its buffer is full; since events only hint that a
// re-fetch is due, one queued event is as good as many.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	buffer int
	closed bool
}

func New(buffer int) *Notifier {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Notifier{
		subs:   make(map[*subscription]struct{}),
		buffer: buffer,
	}
}

// Publish never blocks on slow subscribers.
func (n *Notifier) Publish(_ context.Context, event ports.Event) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for sub := range n.subs {
		if !sub.filter.Matches(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscription that ends when ctx is done or Close is called.
func (n *Notifier) Subscribe(ctx context.Context, filter ports.Filter) (ports.Subscription, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, ErrClosed
	}

	sub := &subscription{
		notifier: n,
		filter:   filter,
		events:   make(chan ports.Event, n.buffer),
		done:     make(chan struct{}),
	}
	n.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()

	return sub, nil
}

// Close ends every subscription.
func (n *Notifier) Close() error {
	n.mu.Lock()
	n.closed = true
	subs := make([]*subscription, 0, len(n.subs))
	for sub := range n.subs {
		subs = append(subs, sub)
	}
	n.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}

func (n *Notifier) remove(sub *subscription) {
	n.mu.Lock()
	delete(n.subs, sub)
	n.mu.Unlock()
}

type subscription struct {
	notifier *Notifier
	filter   ports.Filter
	events   chan ports.Event
	done     chan struct{}
	once     sync.Once
}

func (s *subscription) Events() <-chan ports.Event {
	return s.events
}

// Close detaches the subscription before closing its channel, so Publish never
// sends on a closed channel.
func (s *subscription) Close() error {
	s.once.Do(func() {
		s.notifier.remove(s)
		close(s.done)
		close(s.events)
	})
	return nil
}
