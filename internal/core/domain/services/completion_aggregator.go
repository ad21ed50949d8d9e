package services

import (
	"time"

	"kitchen/internal/core/domain/model/order"
)

// CompletionAggregator decides when an order is ready for the table.
//
// Business rules:
//   - An order is Ready iff it has at least one item and every item is completed
//   - Ready, Served and Cancelled never regress
//   - Otherwise the current status is kept; claim and release own the
//     Pending and Preparing transitions
//
// Because the decision is recomputed from item state every time, running it
// again after a failed or duplicated run converges on the same answer.
//
// Example usage:
//
//	aggregator := services.NewCompletionAggregator()
//	changed, err := aggregator.Aggregate(o, time.Now())
//	if err != nil {
//	    return err
//	}
//	if changed {
//	    // persist o.Status() guarded on the previous status
//	}
type CompletionAggregator struct{}

func NewCompletionAggregator() CompletionAggregator {
	return CompletionAggregator{}
}

// NextStatus computes the order status implied by the item statuses.
func (CompletionAggregator) NextStatus(current order.Status, items []order.ItemStatus) order.Status {
	if !current.IsActive() || len(items) == 0 {
		return current
	}

	for _, status := range items {
		if status != order.ItemCompleted {
			return current
		}
	}

	return order.Ready
}

// Aggregate applies NextStatus to the order and reports whether the status changed.
func (a CompletionAggregator) Aggregate(o *order.Order, now time.Time) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}

	next := a.NextStatus(o.Status(), o.ItemStatuses())
	if next == o.Status() {
		return false, nil
	}

	if err := o.ChangeStatus(next, now); err != nil {
		return false, err
	}
	return true, nil
}
