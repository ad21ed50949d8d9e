// Package redisnotify carries change events over Redis PUBLISH/SUBSCRIBE, one channel
// per restaurant, so that every replica's kitchen displays see every commit.
package redisnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"kitchen/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	DefaultPrefix = "kitchen:changes"
	defaultBuffer = 64
)

// Notifier implements ports.Notifier on top of a go-redis client.
type Notifier struct {
	client redis.UniversalClient
	prefix string
	logger zerolog.Logger
}

func New(client redis.UniversalClient, prefix string, logger zerolog.Logger) *Notifier {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Notifier{client: client, prefix: prefix, logger: logger}
}

// Connect parses a redis:// URL and verifies connectivity.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (n *Notifier) Publish(ctx context.Context, event ports.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding change event: %w", err)
	}
	if err = n.client.Publish(ctx, n.channel(event.RestaurantID.String()), payload).Err(); err != nil {
		return fmt.Errorf("publishing change event: %w", err)
	}
	return nil
}

// Subscribe listens on the restaurant's channel, or on every restaurant when the
// filter names none. The subscription is confirmed before Subscribe returns.
func (n *Notifier) Subscribe(ctx context.Context, filter ports.Filter) (ports.Subscription, error) {
	var pubsub *redis.PubSub
	if filter.RestaurantID != nil {
		pubsub = n.client.Subscribe(ctx, n.channel(filter.RestaurantID.String()))
	} else {
		pubsub = n.client.PSubscribe(ctx, n.channel("*"))
	}

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribing to change events: %w", err)
	}

	sub := &subscription{
		pubsub:   pubsub,
		filter:   filter,
		logger:   n.logger,
		events:   make(chan ports.Event, defaultBuffer),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go sub.run(ctx)
	return sub, nil
}

func (n *Notifier) channel(restaurant string) string {
	return n.prefix + ":" + restaurant
}

type subscription struct {
	pubsub   *redis.PubSub
	filter   ports.Filter
	logger   zerolog.Logger
	events   chan ports.Event
	done     chan struct{}
	finished chan struct{}
	once     sync.Once
	closeErr error
}

func (s *subscription) Events() <-chan ports.Event {
	return s.events
}

// Close stops delivery and waits until the Events channel is closed.
func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	<-s.finished
	return s.closeErr
}

func (s *subscription) run(ctx context.Context) {
	defer close(s.finished)
	defer close(s.events)
	defer func() {
		s.closeErr = s.pubsub.Close()
	}()

	messages := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var event ports.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("malformed change event dropped")
				continue
			}
			if !s.filter.Matches(event) {
				continue
			}

			select {
			case s.events <- event:
			default:
			}
		}
	}
}
