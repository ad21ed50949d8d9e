package commands

import (
	"errors"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/guard"
)

var ErrReconcileOrderStatusesCommandIsNotConstructed = errors.New(
	"ReconcileOrderStatusesCommand must be created via NewReconcileOrderStatusesCommand constructor",
)

// ReconcileOrderStatusesCommand re-runs the completion aggregation over active orders.
type ReconcileOrderStatusesCommand struct {
	restaurantID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewReconcileOrderStatusesCommand limits the run to one restaurant, or covers all
// of them when restaurantID is nil.
func NewReconcileOrderStatusesCommand(restaurantID *kernel.UUID) (ReconcileOrderStatusesCommand, error) {
	if restaurantID != nil {
		if err := restaurantID.Validate(); err != nil {
			return ReconcileOrderStatusesCommand{}, err
		}
	}

	return ReconcileOrderStatusesCommand{
		restaurantID: restaurantID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ReconcileOrderStatusesCommand) Validate() error {
	return c.guard.Validate(ErrReconcileOrderStatusesCommandIsNotConstructed)
}

func (c ReconcileOrderStatusesCommand) RestaurantID() *kernel.UUID {
	return c.restaurantID
}
