package commands

import (
	"context"
	"errors"
	"time"

	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// ReleaseOrderCommandHandler returns the worker's claimed items to Pending and
// deletes the matching claim records. When no item of the order is held or
// finished afterwards, the order falls back to Pending.
//
// Releasing an order the worker holds nothing on, or an order that does not
// exist, is ReleaseNoOp and changes nothing.
type ReleaseOrderCommandHandler struct {
	uowFactory UoWFactory
	metrics    *metrics.CoordinatorMetrics
	logger     zerolog.Logger
}

func NewReleaseOrderCommandHandler(
	uowFactory UoWFactory,
	m *metrics.CoordinatorMetrics,
	logger zerolog.Logger,
) ReleaseOrderCommandHandler {
	return ReleaseOrderCommandHandler{uowFactory: uowFactory, metrics: m, logger: logger}
}

func (h ReleaseOrderCommandHandler) Handle(ctx context.Context, command ReleaseOrderCommand) (ReleaseOutcome, error) {
	if err := command.Validate(); err != nil {
		return ReleaseUnknown, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ReleaseUnknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	released, err := releaseWorkerItems(ctx, uow, command.OrderID(), command.WorkerID(), time.Now().UTC())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return ReleaseUnknown, err
	}

	outcome := ReleaseNoOp
	if released {
		if err = uow.Commit(ctx); err != nil {
			return ReleaseUnknown, err
		}
		outcome = Released
	}

	h.metrics.ObserveRelease(outcome.String())
	h.logger.Debug().
		Str("order_id", command.OrderID().String()).
		Str("worker_id", command.WorkerID().String()).
		Stringer("outcome", outcome).
		Msg("release handled")
	return outcome, nil
}
