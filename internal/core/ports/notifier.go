package ports

import (
	"context"
	"time"

	"kitchen/internal/core/domain/model/kernel"
)

const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TableSessions   = "sessions"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event hints that a record changed. It is never authoritative: subscribers re-read
// the store. Delivery is at-least-once and unordered.
type Event struct {
	Table        string      `json:"table"`
	Op           string      `json:"op"`
	RecordID     kernel.UUID `json:"recordId"`
	RestaurantID kernel.UUID `json:"restaurantId"`
	OccurredAt   time.Time   `json:"occurredAt"`
}

// Filter narrows a subscription. Zero fields match everything.
type Filter struct {
	Table        string
	RestaurantID *kernel.UUID
}

// Matches reports whether the event passes the filter.
func (f Filter) Matches(e Event) bool {
	if f.Table != "" && f.Table != e.Table {
		return false
	}
	if f.RestaurantID != nil && !f.RestaurantID.IsEqual(e.RestaurantID) {
		return false
	}
	return true
}

// Subscription delivers events until Close is called or the context passed to
// Subscribe is done. Close is idempotent and closes the Events channel.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Notifier fans committed changes out to subscribers.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, filter Filter) (Subscription, error)
}
