package commands

import (
	"errors"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/guard"
)

var ErrReleaseOrderCommandIsNotConstructed = errors.New(
	"ReleaseOrderCommand must be created via NewReleaseOrderCommand constructor",
)

// ReleaseOrderCommand gives a worker's claimed items of an order back to the kitchen.
type ReleaseOrderCommand struct {
	orderID  kernel.UUID
	workerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewReleaseOrderCommand(orderID, workerID kernel.UUID) (ReleaseOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), workerID.Validate()); err != nil {
		return ReleaseOrderCommand{}, err
	}

	return ReleaseOrderCommand{
		orderID:  orderID,
		workerID: workerID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ReleaseOrderCommand) Validate() error {
	return c.guard.Validate(ErrReleaseOrderCommandIsNotConstructed)
}

func (c ReleaseOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ReleaseOrderCommand) WorkerID() kernel.UUID {
	return c.workerID
}
