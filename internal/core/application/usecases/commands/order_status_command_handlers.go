package commands

import (
	"context"
	"errors"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/pkg/errs"
)

// ServeOrderCommandHandler moves a Ready order to Served.
type ServeOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewServeOrderCommandHandler(uowFactory OrderUoWFactory) ServeOrderCommandHandler {
	return ServeOrderCommandHandler{uowFactory: uowFactory}
}

// Handle fails with errs.ValueIsInvalidError when the order is not Ready.
func (h ServeOrderCommandHandler) Handle(ctx context.Context, command ServeOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}
	return transitionOrder(ctx, h.uowFactory.Create(), command.OrderID(), command.RestaurantID(), order.Served)
}

// CancelOrderCommandHandler moves a Pending order to Cancelled. Orders the kitchen
// has started on cannot be cancelled.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewCancelOrderCommandHandler(uowFactory OrderUoWFactory) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{uowFactory: uowFactory}
}

// Handle fails with errs.ValueIsInvalidError when the order is not Pending.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, command CancelOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}
	return transitionOrder(ctx, h.uowFactory.Create(), command.OrderID(), command.RestaurantID(), order.Cancelled)
}

// transitionOrder applies a staff transition. Orders of other restaurants are
// reported as missing. A guarded write that loses to a concurrent status change
// yields errs.VersionIsInvalidError.
func transitionOrder(
	ctx context.Context,
	uow OrderUoW,
	orderID, restaurantID kernel.UUID,
	target order.Status,
) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := time.Now().UTC()
	orderRepo := uow.OrderRepository()

	o, err := orderRepo.GetForUpdate(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.BelongsTo(restaurantID) {
		return errs.NewObjectNotFoundError("order", orderID.String())
	}

	previous := o.Status()
	if previous == target {
		return nil
	}
	if err = o.ChangeStatus(target, now); err != nil {
		return err
	}

	ok, err := orderRepo.CompareAndSetStatus(ctx, orderID, previous, target, now)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewVersionIsInvalidErrorWithCause("order status", errors.New("order changed concurrently"))
	}

	return uow.Commit(ctx)
}
