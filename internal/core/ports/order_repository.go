// Package ports defines the contracts between the kitchen core and its infrastructure:
// repositories bound to a unit of work, and the change notifier.
package ports

import (
	"context"
	"errors"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
)

// ErrItemAlreadyClaimed is returned by ClaimRepository.AddAll when another claim
// record for one of the items won the race.
var ErrItemAlreadyClaimed = errors.New("item already claimed")

// OrderRepository persists Order aggregates with their items.
//
// The mutating methods other than Add are guarded writes: each applies only when the
// row still matches the expected state and reports how many rows it changed. Zero
// means another writer got there first; callers turn that into an outcome.
type OrderRepository interface {
	// Add persists a new order together with all its items.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get loads an order with its items. Missing orders yield errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate is Get with the order row locked until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetItem loads a single item. Missing items yield errs.ObjectNotFoundError.
	GetItem(ctx context.Context, id kernel.UUID) (*order.Item, error)

	// ListByStatus returns orders in any of the statuses, oldest first. A nil
	// restaurant lists every restaurant.
	ListByStatus(ctx context.Context, restaurantID *kernel.UUID, statuses ...order.Status) ([]*order.Order, error)

	// ClaimItems hands the listed items of the order to the worker, touching only
	// items that are still pending and unowned.
	ClaimItems(ctx context.Context, orderID, workerID kernel.UUID, itemIDs []kernel.UUID, at time.Time) (int64, error)

	// ReleaseItems returns every item of the order held by the worker to pending.
	ReleaseItems(ctx context.Context, orderID, workerID kernel.UUID) (int64, error)

	// CompleteItem marks the item completed if the worker still holds it.
	CompleteItem(ctx context.Context, itemID, workerID kernel.UUID, at time.Time) (int64, error)

	// CompareAndSetStatus moves the order from one status to another and reports
	// whether the order was still in the expected status.
	CompareAndSetStatus(ctx context.Context, orderID kernel.UUID, from, to order.Status, at time.Time) (bool, error)
}
