package commands

import (
	"context"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/core/domain/model/session"
	"kitchen/internal/core/domain/services"
	"kitchen/internal/core/ports"
	"kitchen/internal/pkg/errs"
)

// openSession reactivates the worker's session at the restaurant, or creates it,
// inside the caller's transaction. An existing row is locked before it is written;
// callers that go on to lock orders do so afterwards. A nil station keeps the one
// already recorded.
func openSession(
	ctx context.Context,
	repo ports.SessionRepository,
	workerID, restaurantID kernel.UUID,
	station *string,
	now time.Time,
) (*session.Session, error) {
	existing, err := repo.FindByWorkerForUpdate(ctx, workerID, restaurantID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		candidate, newErr := session.NewSession(kernel.NewUUID(), workerID, restaurantID, station, now)
		if newErr != nil {
			return nil, newErr
		}
		return repo.Upsert(ctx, candidate)
	}

	if err = existing.Reopen(station, now); err != nil {
		return nil, err
	}
	if err = repo.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// releaseWorkerItems hands the worker's claimed items of the order back to the pool
// inside the caller's transaction. When nothing on the order is held or finished any
// more, the order falls back from Preparing to Pending. It reports whether any item
// was released.
func releaseWorkerItems(
	ctx context.Context,
	uow UoW,
	orderID, workerID kernel.UUID,
	now time.Time,
) (bool, error) {
	orderRepo := uow.OrderRepository()

	o, err := orderRepo.GetForUpdate(ctx, orderID)
	if err != nil {
		return false, err
	}

	held := o.HeldItemIDs(workerID)
	if len(held) == 0 {
		return false, nil
	}
	for _, itemID := range held {
		item, _ := o.Item(itemID)
		if err = item.Release(workerID); err != nil {
			return false, err
		}
	}

	n, err := orderRepo.ReleaseItems(ctx, orderID, workerID)
	if err != nil {
		return false, err
	}
	if n != int64(len(held)) {
		return false, errs.NewVersionIsInvalidError("order items")
	}

	if _, err = uow.ClaimRepository().DeleteByWorker(ctx, orderID, workerID); err != nil {
		return false, err
	}

	if o.Status() == order.Preparing && o.AllItemsPending() {
		if _, err = orderRepo.CompareAndSetStatus(ctx, orderID, order.Preparing, order.Pending, now); err != nil {
			return false, err
		}
	}
	return true, nil
}

// closeSession deactivates the session and releases every order the worker holds
// through it, inside the caller's transaction. Callers lock the session row with
// GetForUpdate first, so session and order locks are taken in the same order as a
// claim takes them.
func closeSession(ctx context.Context, uow UoW, s *session.Session, now time.Time) (int, error) {
	if _, err := uow.SessionRepository().Deactivate(ctx, s.ID()); err != nil {
		return 0, err
	}

	orderIDs, err := uow.ClaimRepository().OrderIDsBySession(ctx, s.ID())
	if err != nil {
		return 0, err
	}

	released := 0
	for _, orderID := range orderIDs {
		ok, releaseErr := releaseWorkerItems(ctx, uow, orderID, s.WorkerID(), now)
		if releaseErr != nil {
			return 0, releaseErr
		}
		if ok {
			released++
		}
	}
	return released, nil
}

// aggregateOrder recomputes the order status from its items in a transaction of
// its own and persists a change guarded on the status it was computed from.
func aggregateOrder(
	ctx context.Context,
	uow OrderUoW,
	aggregator services.CompletionAggregator,
	orderID kernel.UUID,
	now time.Time,
) (bool, error) {
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, orderID)
	if err != nil {
		return false, err
	}

	previous := o.Status()
	changed, err := aggregator.Aggregate(o, now)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	ok, err := orderRepo.CompareAndSetStatus(ctx, orderID, previous, o.Status(), now)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, errs.NewVersionIsInvalidError("order status")
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
