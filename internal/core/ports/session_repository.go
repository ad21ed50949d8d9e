package ports

import (
	"context"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/session"
)

// SessionRepository persists worker sessions, one row per worker and restaurant.
type SessionRepository interface {
	// Upsert inserts the session or reactivates the existing row for the same worker
	// and restaurant, refreshing heartbeat and, when the session has one, station.
	// It returns the stored session, whose id is the existing one on reactivation.
	Upsert(ctx context.Context, s *session.Session) (*session.Session, error)

	// Save writes station, status and heartbeat of a stored session.
	Save(ctx context.Context, s *session.Session) error

	// Get loads a session. Missing sessions yield errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*session.Session, error)

	// GetForUpdate is Get holding the row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*session.Session, error)

	// FindByWorker returns the worker's session at the restaurant, or nil.
	FindByWorker(ctx context.Context, workerID, restaurantID kernel.UUID) (*session.Session, error)

	// FindByWorkerForUpdate is FindByWorker holding the row lock until the transaction ends.
	FindByWorkerForUpdate(ctx context.Context, workerID, restaurantID kernel.UUID) (*session.Session, error)

	// Heartbeat sets last_heartbeat to now if the session is active and its previous
	// heartbeat is not older than notBefore.
	Heartbeat(ctx context.Context, id kernel.UUID, now, notBefore time.Time) (bool, error)

	// Deactivate marks an active session inactive.
	Deactivate(ctx context.Context, id kernel.UUID) (bool, error)

	// ListByRestaurant returns every session of the restaurant, most recent heartbeat first.
	ListByRestaurant(ctx context.Context, restaurantID kernel.UUID) ([]*session.Session, error)

	// ListStale returns active sessions whose last heartbeat is older than cutoff.
	ListStale(ctx context.Context, cutoff time.Time) ([]*session.Session, error)
}
