package commands

import (
	"errors"
	"strings"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrPlaceOrderCommandIsNotConstructed = errors.New(
		"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
	)
	ErrOrderHasNoItems = errors.New("order must contain at least one item")
)

// PlaceOrderItem is one checkout line.
type PlaceOrderItem struct {
	MenuItemID   kernel.UUID
	Quantity     int
	UnitPrice    decimal.Decimal
	Instructions string
}

// PlaceOrderCommand is a table's checkout: the order and all its items are created
// together, pending, or not at all.
//
// Example:
//
//	cmd, err := NewPlaceOrderCommand(kernel.NewUUID(), restaurantID, tableID, "", "no nuts", []PlaceOrderItem{
//	    {MenuItemID: burgerID, Quantity: 2, UnitPrice: decimal.RequireFromString("9.50")},
//	})
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	restaurantID kernel.UUID
	tableID      kernel.UUID
	number       string
	instructions string
	items        []PlaceOrderItem

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand validates identifiers and the shape of each line. Prices
// and quantities are checked again when the domain items are built.
func NewPlaceOrderCommand(
	orderID, restaurantID, tableID kernel.UUID,
	number, instructions string,
	items []PlaceOrderItem,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderID.Validate(),
		restaurantID.Validate(),
		tableID.Validate(),
		cmd.setNumber(number),
		cmd.setItems(items),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.restaurantID = restaurantID
	cmd.tableID = tableID
	cmd.instructions = strings.TrimSpace(instructions)
	return cmd, nil
}

func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c PlaceOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

func (c PlaceOrderCommand) TableID() kernel.UUID {
	return c.tableID
}

// Number is the display number; empty means the handler assigns one.
func (c PlaceOrderCommand) Number() string {
	return c.number
}

func (c PlaceOrderCommand) Instructions() string {
	return c.instructions
}

func (c PlaceOrderCommand) Items() []PlaceOrderItem {
	items := make([]PlaceOrderItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *PlaceOrderCommand) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if len(number) > order.MaxNumberLength {
		return errs.NewValueIsOutOfRangeError("order number length", len(number), 0, order.MaxNumberLength)
	}
	c.number = number
	return nil
}

func (c *PlaceOrderCommand) setItems(items []PlaceOrderItem) error {
	if len(items) == 0 {
		return ErrOrderHasNoItems
	}

	var err error
	for _, item := range items {
		err = errors.Join(err, item.MenuItemID.Validate())
	}
	if err != nil {
		return err
	}

	c.items = make([]PlaceOrderItem, len(items))
	copy(c.items, items)
	return nil
}
