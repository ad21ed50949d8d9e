package commands

import (
	"context"
	"errors"
	"time"

	"kitchen/internal/core/domain/model/claim"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/core/ports"
	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// ClaimOrderCommandHandler hands an order's open items to one kitchen worker.
//
// Everything happens in one transaction. The worker's session row is locked and
// reopened before the order row is locked, the same order logout and the reaper
// use. The items are taken with a guarded update that only touches items that are
// still pending and unowned, claim records are inserted under a unique item index,
// and the order advances from Pending to Preparing. Any
// shortfall in the guarded update or a duplicate claim record turns the attempt
// into ClaimConflict and rolls everything back.
//
// Example:
//
//	outcome, err := handler.Handle(ctx, cmd)
//	switch {
//	case err != nil:
//	    return err
//	case outcome == ClaimConflict:
//	    // somebody else is already preparing it
//	}
type ClaimOrderCommandHandler struct {
	uowFactory UoWFactory
	metrics    *metrics.CoordinatorMetrics
	logger     zerolog.Logger
}

func NewClaimOrderCommandHandler(
	uowFactory UoWFactory,
	m *metrics.CoordinatorMetrics,
	logger zerolog.Logger,
) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{uowFactory: uowFactory, metrics: m, logger: logger}
}

// Handle returns Claimed, ClaimConflict or ClaimNotFound. Errors are reserved for
// invalid commands and store failures.
func (h ClaimOrderCommandHandler) Handle(ctx context.Context, command ClaimOrderCommand) (ClaimOutcome, error) {
	if err := command.Validate(); err != nil {
		return ClaimUnknown, err
	}

	outcome, err := h.claim(ctx, command, time.Now().UTC())
	if err != nil {
		return ClaimUnknown, err
	}

	h.metrics.ObserveClaim(outcome.String())
	h.logger.Debug().
		Str("order_id", command.OrderID().String()).
		Str("worker_id", command.WorkerID().String()).
		Stringer("outcome", outcome).
		Msg("claim handled")
	return outcome, nil
}

func (h ClaimOrderCommandHandler) claim(ctx context.Context, command ClaimOrderCommand, now time.Time) (ClaimOutcome, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ClaimUnknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	sessionRepo := uow.SessionRepository()
	claimRepo := uow.ClaimRepository()

	stored, err := openSession(ctx, sessionRepo, command.WorkerID(), command.RestaurantID(), command.Station(), now)
	if err != nil {
		return ClaimUnknown, err
	}

	o, err := orderRepo.GetForUpdate(ctx, command.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ClaimNotFound, nil
	}
	if err != nil {
		return ClaimUnknown, err
	}
	if !o.BelongsTo(command.RestaurantID()) || len(o.Items()) == 0 {
		return ClaimNotFound, nil
	}

	itemIDs, err := o.Claim(command.WorkerID(), now)
	if errors.Is(err, order.ErrClaimedByOther) || errors.Is(err, order.ErrOrderNotClaimable) {
		return ClaimConflict, nil
	}
	if err != nil {
		return ClaimUnknown, err
	}

	if len(itemIDs) > 0 {
		n, claimErr := orderRepo.ClaimItems(ctx, command.OrderID(), command.WorkerID(), itemIDs, now)
		if claimErr != nil {
			return ClaimUnknown, claimErr
		}
		if n != int64(len(itemIDs)) {
			return ClaimConflict, nil
		}

		claims := make([]*claim.Claim, 0, len(itemIDs))
		for _, itemID := range itemIDs {
			c, newErr := claim.NewClaim(command.OrderID(), itemID, command.WorkerID(), stored.ID(), now)
			if newErr != nil {
				return ClaimUnknown, newErr
			}
			claims = append(claims, c)
		}

		claimErr = claimRepo.AddAll(ctx, claims)
		if errors.Is(claimErr, ports.ErrItemAlreadyClaimed) {
			return ClaimConflict, nil
		}
		if claimErr != nil {
			return ClaimUnknown, claimErr
		}

		if _, claimErr = orderRepo.CompareAndSetStatus(ctx, command.OrderID(), order.Pending, order.Preparing, now); claimErr != nil {
			return ClaimUnknown, claimErr
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return ClaimUnknown, err
	}
	return Claimed, nil
}
