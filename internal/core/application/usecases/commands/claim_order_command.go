package commands

import (
	"errors"
	"strings"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/session"
	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/guard"
)

var ErrClaimOrderCommandIsNotConstructed = errors.New(
	"ClaimOrderCommand must be created via NewClaimOrderCommand constructor",
)

// ClaimOrderCommand asks for every open item of an order on behalf of a kitchen worker.
// The worker's session at the restaurant is opened or refreshed as part of the claim.
//
// Example:
//
//	station := "grill"
//	cmd, err := NewClaimOrderCommand(orderID, workerID, restaurantID, &station)
//	if err != nil {
//	    return err
//	}
//	outcome, err := handler.Handle(ctx, cmd)
type ClaimOrderCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	workerID     kernel.UUID
	restaurantID kernel.UUID
	station      *string

	guard guard.ConstructorGuard
}

// NewClaimOrderCommand validates the identifiers and the optional station label.
func NewClaimOrderCommand(orderID, workerID, restaurantID kernel.UUID, station *string) (ClaimOrderCommand, error) {
	cmd := ClaimOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderID.Validate(),
		workerID.Validate(),
		restaurantID.Validate(),
		cmd.setStation(station),
	); err != nil {
		return ClaimOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.workerID = workerID
	cmd.restaurantID = restaurantID
	return cmd, nil
}

func (c ClaimOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
}

func (c ClaimOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ClaimOrderCommand) WorkerID() kernel.UUID {
	return c.workerID
}

func (c ClaimOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

func (c ClaimOrderCommand) Station() *string {
	return c.station
}

func (c *ClaimOrderCommand) setStation(station *string) error {
	value, err := normalizeStation(station)
	if err != nil {
		return err
	}
	c.station = value
	return nil
}

func normalizeStation(station *string) (*string, error) {
	if station == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*station)
	if value == "" {
		return nil, nil
	}
	if len(value) > session.MaxStationLength {
		return nil, errs.NewValueIsOutOfRangeError("station length", len(value), 1, session.MaxStationLength)
	}
	return &value, nil
}
