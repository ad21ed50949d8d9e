package commands

import (
	"context"
	"time"

	"kitchen/internal/core/domain/model/session"
	"kitchen/internal/pkg/errs"
)

// HeartbeatSessionCommandHandler refreshes last_heartbeat with one guarded update.
// It never touches orders, so it cannot block claims or releases.
//
// Errors:
//   - errs.ObjectNotFoundError when the session does not exist
//   - errs.StaleSessionError when the session is closed or missed its window;
//     the worker has to open it again
type HeartbeatSessionCommandHandler struct {
	uowFactory SessionUoWFactory
	window     time.Duration
}

func NewHeartbeatSessionCommandHandler(uowFactory SessionUoWFactory, window time.Duration) HeartbeatSessionCommandHandler {
	if window <= 0 {
		window = session.DefaultLivenessWindow
	}
	return HeartbeatSessionCommandHandler{uowFactory: uowFactory, window: window}
}

func (h HeartbeatSessionCommandHandler) Handle(ctx context.Context, command HeartbeatSessionCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.SessionRepository()
	ok, err := repo.Heartbeat(ctx, command.SessionID(), now, now.Add(-h.window))
	if err != nil {
		return err
	}
	if !ok {
		if _, err = repo.Get(ctx, command.SessionID()); err != nil {
			return err
		}
		return errs.NewStaleSessionError(command.SessionID().String())
	}

	return uow.Commit(ctx)
}
