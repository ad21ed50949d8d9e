package commands

import (
	"errors"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/guard"
)

var ErrMarkItemCompletedCommandIsNotConstructed = errors.New(
	"MarkItemCompletedCommand must be created via NewMarkItemCompletedCommand constructor",
)

// MarkItemCompletedCommand reports that the worker finished preparing one item.
type MarkItemCompletedCommand struct {
	itemID   kernel.UUID
	workerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewMarkItemCompletedCommand(itemID, workerID kernel.UUID) (MarkItemCompletedCommand, error) {
	if err := errors.Join(itemID.Validate(), workerID.Validate()); err != nil {
		return MarkItemCompletedCommand{}, err
	}

	return MarkItemCompletedCommand{
		itemID:   itemID,
		workerID: workerID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c MarkItemCompletedCommand) Validate() error {
	return c.guard.Validate(ErrMarkItemCompletedCommandIsNotConstructed)
}

func (c MarkItemCompletedCommand) ItemID() kernel.UUID {
	return c.itemID
}

func (c MarkItemCompletedCommand) WorkerID() kernel.UUID {
	return c.workerID
}
