package commands

import (
	"context"
	"errors"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/core/domain/services"
	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// MarkItemCompletedCommandHandler completes an item held by the worker and then
// lets the CompletionAggregator decide whether the order is ready. The item is
// completed on the loaded entity first; the stored write is guarded on the same
// owner and status.
//
// The item update commits on its own. The aggregation runs in a second
// transaction; if it fails the handler still reports Completed together with a
// transient error, and the next aggregation (a retry of the same command or the
// reconcile job) converges because it recomputes from item state.
//
// Repeating the command for an item the same worker already completed is
// Completed again and re-runs the aggregation.
//
// Example:
//
//	outcome, err := handler.Handle(ctx, cmd)
//	if outcome == Completed && errs.IsTransient(err) {
//	    // the item is done; order status will catch up
//	}
type MarkItemCompletedCommandHandler struct {
	uowFactory UoWFactory
	aggregator services.CompletionAggregator
	metrics    *metrics.CoordinatorMetrics
	logger     zerolog.Logger
}

func NewMarkItemCompletedCommandHandler(
	uowFactory UoWFactory,
	aggregator services.CompletionAggregator,
	m *metrics.CoordinatorMetrics,
	logger zerolog.Logger,
) MarkItemCompletedCommandHandler {
	return MarkItemCompletedCommandHandler{uowFactory: uowFactory, aggregator: aggregator, metrics: m, logger: logger}
}

func (h MarkItemCompletedCommandHandler) Handle(
	ctx context.Context,
	command MarkItemCompletedCommand,
) (CompleteOutcome, error) {
	if err := command.Validate(); err != nil {
		return CompleteUnknown, err
	}

	now := time.Now().UTC()
	outcome, orderID, err := h.complete(ctx, command, now)
	if err != nil {
		return CompleteUnknown, err
	}

	h.metrics.ObserveCompletion(outcome.String())
	if outcome != Completed {
		return outcome, nil
	}

	if _, err = aggregateOrder(ctx, h.uowFactory.Create(), h.aggregator, orderID, now); err != nil {
		h.logger.Warn().Err(err).
			Str("order_id", orderID.String()).
			Str("item_id", command.ItemID().String()).
			Msg("order status not aggregated after completion")
		if !errs.IsTransient(err) {
			err = errs.NewTransientStoreError("aggregate order status", err)
		}
		return Completed, err
	}

	return Completed, nil
}

func (h MarkItemCompletedCommandHandler) complete(
	ctx context.Context,
	command MarkItemCompletedCommand,
	now time.Time,
) (CompleteOutcome, kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CompleteUnknown, kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	item, err := orderRepo.GetItem(ctx, command.ItemID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return CompleteNotFound, kernel.UUID{}, nil
	}
	if err != nil {
		return CompleteUnknown, kernel.UUID{}, err
	}

	if item.IsCompletedBy(command.WorkerID()) {
		return Completed, item.OrderID(), nil
	}
	err = item.Complete(command.WorkerID(), now)
	if errors.Is(err, order.ErrNotItemOwner) {
		return CompleteUnauthorized, kernel.UUID{}, nil
	}
	if err != nil {
		return CompleteUnknown, kernel.UUID{}, err
	}

	n, err := orderRepo.CompleteItem(ctx, command.ItemID(), command.WorkerID(), now)
	if err != nil {
		return CompleteUnknown, kernel.UUID{}, err
	}
	if n == 0 {
		current, getErr := orderRepo.GetItem(ctx, command.ItemID())
		if getErr != nil {
			return CompleteUnknown, kernel.UUID{}, getErr
		}
		if current.IsCompletedBy(command.WorkerID()) {
			return Completed, current.OrderID(), nil
		}
		return CompleteUnauthorized, kernel.UUID{}, nil
	}

	if _, err = uow.ClaimRepository().DeleteByItem(ctx, command.ItemID()); err != nil {
		return CompleteUnknown, kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CompleteUnknown, kernel.UUID{}, err
	}
	return Completed, item.OrderID(), nil
}
