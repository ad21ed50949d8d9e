package commands

import (
	"context"
	"time"

	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// CloseSessionCommandHandler deactivates a session and releases every order its
// worker holds claims on, as one transaction. If any release fails nothing is
// committed and the session stays active.
type CloseSessionCommandHandler struct {
	uowFactory UoWFactory
	metrics    *metrics.CoordinatorMetrics
	logger     zerolog.Logger
}

func NewCloseSessionCommandHandler(
	uowFactory UoWFactory,
	m *metrics.CoordinatorMetrics,
	logger zerolog.Logger,
) CloseSessionCommandHandler {
	return CloseSessionCommandHandler{uowFactory: uowFactory, metrics: m, logger: logger}
}

// Handle returns the number of orders that had items released.
func (h CloseSessionCommandHandler) Handle(ctx context.Context, command CloseSessionCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	s, err := uow.SessionRepository().GetForUpdate(ctx, command.SessionID())
	if err != nil {
		return 0, err
	}
	if command.WorkerID() != nil && !s.WorkerID().IsEqual(*command.WorkerID()) {
		return 0, errs.NewObjectNotFoundError("session", command.SessionID().String())
	}

	released, err := closeSession(ctx, uow, s, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	h.metrics.IncSessionClosed("logout")
	h.logger.Info().
		Str("session_id", s.ID().String()).
		Str("worker_id", s.WorkerID().String()).
		Int("released_orders", released).
		Msg("session closed")
	return released, nil
}
