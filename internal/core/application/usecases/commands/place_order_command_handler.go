package commands

import (
	"context"
	"fmt"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
)

// PlaceOrderCommandHandler persists a checkout as one pending order with pending items.
// The total is derived from the lines, never taken from the caller.
type PlaceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewPlaceOrderCommandHandler(uowFactory OrderUoWFactory) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{uowFactory: uowFactory}
}

func (h PlaceOrderCommandHandler) Handle(ctx context.Context, command PlaceOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	lines := command.Items()
	items := make([]*order.Item, 0, len(lines))
	for _, line := range lines {
		item, err := order.NewItem(kernel.NewUUID(), line.MenuItemID, line.Quantity, line.UnitPrice, line.Instructions)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	number := command.Number()
	if number == "" {
		number = fmt.Sprintf("ORD-%d", now.UnixMilli())
	}

	o, err := order.NewOrder(
		command.OrderID(),
		command.RestaurantID(),
		command.TableID(),
		number,
		command.Instructions(),
		items,
		now,
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}
