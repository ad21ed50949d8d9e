// Package amqpnotify fans change events out through a RabbitMQ topic exchange.
//
// Routing keys have the shape "<restaurantId>.<table>.<op>", so a display bound to
// one restaurant uses "<restaurantId>.#" and an operator console uses "#".
package amqpnotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"kitchen/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	DefaultExchange = "kitchen.changes"
	defaultBuffer   = 64
)

var ErrNotAcknowledged = errors.New("change event was not acknowledged by the broker")

// Notifier implements ports.Notifier with publisher confirms on a dedicated channel.
type Notifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   zerolog.Logger
	mu       sync.Mutex
}

func Dial(url, exchange string, logger zerolog.Logger) (*Notifier, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	if err = ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enabling publisher confirms: %w", err)
	}

	return &Notifier{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

func (n *Notifier) Publish(ctx context.Context, event ports.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding change event: %w", err)
	}

	n.mu.Lock()
	confirmation, err := n.channel.PublishWithDeferredConfirmWithContext(ctx, n.exchange, routingKey(event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	n.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publishing change event: %w", err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("waiting for publisher confirm: %w", err)
	}
	if !acked {
		return ErrNotAcknowledged
	}
	return nil
}

// Subscribe declares an exclusive auto-delete queue bound to the filter's key.
func (n *Notifier) Subscribe(ctx context.Context, filter ports.Filter) (ports.Subscription, error) {
	ch, err := n.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declaring subscription queue: %w", err)
	}

	if err = ch.QueueBind(queue.Name, bindingKey(filter), n.exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("binding subscription queue: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consuming subscription queue: %w", err)
	}

	sub := &subscription{
		channel:  ch,
		filter:   filter,
		logger:   n.logger,
		events:   make(chan ports.Event, defaultBuffer),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go sub.run(ctx, deliveries)
	return sub, nil
}

func (n *Notifier) Close() error {
	if n.conn.IsClosed() {
		return nil
	}
	return n.conn.Close()
}

func routingKey(e ports.Event) string {
	return e.RestaurantID.String() + "." + e.Table + "." + e.Op
}

func bindingKey(f ports.Filter) string {
	restaurant := "*"
	if f.RestaurantID != nil {
		restaurant = f.RestaurantID.String()
	}
	table := "*"
	if f.Table != "" {
		table = f.Table
	}
	if restaurant == "*" && table == "*" {
		return "#"
	}
	return restaurant + "." + table + ".*"
}

type subscription struct {
	channel  *amqp.Channel
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

func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	<-s.finished
	return s.closeErr
}

func (s *subscription) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	defer close(s.finished)
	defer close(s.events)
	defer func() {
		if !s.channel.IsClosed() {
			s.closeErr = s.channel.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}

			var event ports.Event
			if err := json.Unmarshal(d.Body, &event); err != nil {
				s.logger.Warn().Err(err).Str("routing_key", d.RoutingKey).Msg("malformed change event dropped")
				continue
			}
			if event.OccurredAt.IsZero() {
				event.OccurredAt = time.Now().UTC()
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
