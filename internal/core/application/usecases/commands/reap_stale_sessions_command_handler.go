package commands

import (
	"context"
	"time"

	"kitchen/internal/core/domain/model/session"
	"kitchen/internal/pkg/metrics"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// ReapStaleSessionsCommandHandler closes lapsed sessions one transaction at a time,
// releasing their claims exactly like a logout. Liveness is re-checked on the
// locked session row, so a session revived by a heartbeat or a claim after the
// listing is left alone. Failures are collected and
// the remaining sessions are still processed.
type ReapStaleSessionsCommandHandler struct {
	uowFactory UoWFactory
	window     time.Duration
	metrics    *metrics.CoordinatorMetrics
	logger     zerolog.Logger
}

func NewReapStaleSessionsCommandHandler(
	uowFactory UoWFactory,
	window time.Duration,
	m *metrics.CoordinatorMetrics,
	logger zerolog.Logger,
) ReapStaleSessionsCommandHandler {
	if window <= 0 {
		window = session.DefaultLivenessWindow
	}
	return ReapStaleSessionsCommandHandler{uowFactory: uowFactory, window: window, metrics: m, logger: logger}
}

// Handle returns how many sessions were closed.
func (h ReapStaleSessionsCommandHandler) Handle(ctx context.Context, command ReapStaleSessionsCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	stale, err := h.uowFactory.Create().SessionRepository().ListStale(ctx, now.Add(-h.window))
	if err != nil {
		return 0, err
	}

	var (
		closed int
		result error
	)
	for _, s := range stale {
		ok, reapErr := h.reap(ctx, s, now)
		if reapErr != nil {
			result = multierr.Append(result, reapErr)
			continue
		}
		if ok {
			closed++
		}
	}

	return closed, result
}

func (h ReapStaleSessionsCommandHandler) reap(ctx context.Context, candidate *session.Session, now time.Time) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	s, err := uow.SessionRepository().GetForUpdate(ctx, candidate.ID())
	if err != nil {
		return false, err
	}
	if s.Status() != session.Active || s.IsLive(now, h.window) {
		return false, nil
	}

	released, err := closeSession(ctx, uow, s, now)
	if err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	h.metrics.IncSessionClosed("stale")
	h.logger.Info().
		Str("session_id", s.ID().String()).
		Str("worker_id", s.WorkerID().String()).
		Time("last_heartbeat", s.LastHeartbeat()).
		Int("released_orders", released).
		Msg("stale session reaped")
	return true, nil
}
