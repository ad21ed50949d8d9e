package commands

import (
	"context"
	"time"

	"kitchen/internal/core/domain/model/session"
	"kitchen/internal/pkg/metrics"
)

// OpenSessionCommandHandler upserts the worker's session at the restaurant.
// Reopening reactivates the existing row, keeping its id, and refreshes the
// heartbeat. The station changes only when the command carries one.
type OpenSessionCommandHandler struct {
	uowFactory SessionUoWFactory
	metrics    *metrics.CoordinatorMetrics
}

func NewOpenSessionCommandHandler(uowFactory SessionUoWFactory, m *metrics.CoordinatorMetrics) OpenSessionCommandHandler {
	return OpenSessionCommandHandler{uowFactory: uowFactory, metrics: m}
}

func (h OpenSessionCommandHandler) Handle(ctx context.Context, command OpenSessionCommand) (*session.Session, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stored, err := openSession(
		ctx,
		uow.SessionRepository(),
		command.WorkerID(),
		command.RestaurantID(),
		command.Station(),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.metrics.IncSessionOpened()
	return stored, nil
}
