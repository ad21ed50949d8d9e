package commands

import (
	"errors"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/guard"
)

var ErrOpenSessionCommandIsNotConstructed = errors.New(
	"OpenSessionCommand must be created via NewOpenSessionCommand constructor",
)

// OpenSessionCommand registers a kitchen device for a worker at a restaurant.
type OpenSessionCommand struct {
	workerID     kernel.UUID
	restaurantID kernel.UUID
	station      *string

	guard guard.ConstructorGuard
}

func NewOpenSessionCommand(workerID, restaurantID kernel.UUID, station *string) (OpenSessionCommand, error) {
	cmd := OpenSessionCommand{
		guard: guard.NewConstructorGuard(),
	}

	normalized, stationErr := normalizeStation(station)
	if err := errors.Join(workerID.Validate(), restaurantID.Validate(), stationErr); err != nil {
		return OpenSessionCommand{}, err
	}

	cmd.workerID = workerID
	cmd.restaurantID = restaurantID
	cmd.station = normalized
	return cmd, nil
}

func (c OpenSessionCommand) Validate() error {
	return c.guard.Validate(ErrOpenSessionCommandIsNotConstructed)
}

func (c OpenSessionCommand) WorkerID() kernel.UUID {
	return c.workerID
}

func (c OpenSessionCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

func (c OpenSessionCommand) Station() *string {
	return c.station
}
