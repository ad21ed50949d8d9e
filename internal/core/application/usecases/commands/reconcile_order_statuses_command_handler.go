package commands

import (
	"context"
	"fmt"
	"time"

	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/core/domain/services"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// ReconcileOrderStatusesCommandHandler heals orders whose aggregation was lost,
// for example when a completion committed but the follow-up transaction failed.
// Each order is aggregated in its own transaction.
type ReconcileOrderStatusesCommandHandler struct {
	uowFactory OrderUoWFactory
	aggregator services.CompletionAggregator
	logger     zerolog.Logger
}

func NewReconcileOrderStatusesCommandHandler(
	uowFactory OrderUoWFactory,
	aggregator services.CompletionAggregator,
	logger zerolog.Logger,
) ReconcileOrderStatusesCommandHandler {
	return ReconcileOrderStatusesCommandHandler{uowFactory: uowFactory, aggregator: aggregator, logger: logger}
}

// Handle returns how many orders changed status.
func (h ReconcileOrderStatusesCommandHandler) Handle(
	ctx context.Context,
	command ReconcileOrderStatusesCommand,
) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	active, err := h.uowFactory.Create().OrderRepository().
		ListByStatus(ctx, command.RestaurantID(), order.Pending, order.Preparing)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	var (
		changed int
		result  error
	)
	for _, o := range active {
		if h.aggregator.NextStatus(o.Status(), o.ItemStatuses()) == o.Status() {
			continue
		}

		ok, aggErr := aggregateOrder(ctx, h.uowFactory.Create(), h.aggregator, o.ID(), now)
		if aggErr != nil {
			result = multierr.Append(result, fmt.Errorf("order %s: %w", o.ID(), aggErr))
			continue
		}
		if ok {
			changed++
			h.logger.Info().Str("order_id", o.ID().String()).Msg("order status reconciled")
		}
	}

	return changed, result
}
