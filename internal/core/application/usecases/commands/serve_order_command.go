package commands

import (
	"errors"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/guard"
)

var ErrServeOrderCommandIsNotConstructed = errors.New(
	"ServeOrderCommand must be created via NewServeOrderCommand constructor",
)

// ServeOrderCommand records that staff brought a ready order to its table.
type ServeOrderCommand struct {
	orderID      kernel.UUID
	restaurantID kernel.UUID

	guard guard.ConstructorGuard
}

func NewServeOrderCommand(orderID, restaurantID kernel.UUID) (ServeOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), restaurantID.Validate()); err != nil {
		return ServeOrderCommand{}, err
	}

	return ServeOrderCommand{
		orderID:      orderID,
		restaurantID: restaurantID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ServeOrderCommand) Validate() error {
	return c.guard.Validate(ErrServeOrderCommandIsNotConstructed)
}

func (c ServeOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ServeOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}
