package queries

import (
	"context"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListSessionsQueryHandler reads sessions, most recent heartbeat first. A session is
// live when it is active and heartbeated within the window.
type ListSessionsQueryHandler struct {
	db     *gorm.DB
	window time.Duration
}

func NewListSessionsQueryHandler(db *gorm.DB, window time.Duration) ListSessionsQueryHandler {
	if window <= 0 {
		window = session.DefaultLivenessWindow
	}
	return ListSessionsQueryHandler{db: db, window: window}
}

func (h ListSessionsQueryHandler) Handle(ctx context.Context, query ListSessionsQuery) ([]SessionView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			worker_id,
			station,
			status,
			last_heartbeat,
			created_at
		FROM sessions
		WHERE restaurant_id = ?
		ORDER BY last_heartbeat DESC
	`, query.RestaurantID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	sessions := make([]SessionView, 0)
	for rows.Next() {
		var (
			view         SessionView
			id, workerID uuid.UUID
		)

		if err = rows.Scan(&id, &workerID, &view.Station, &view.Status, &view.LastHeartbeat, &view.CreatedAt); err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if view.WorkerID, err = kernel.UUIDFromBytes(workerID[:]); err != nil {
			return nil, err
		}
		view.LastHeartbeat = view.LastHeartbeat.UTC()
		view.CreatedAt = view.CreatedAt.UTC()
		view.Live = view.Status == session.Active.String() && session.IsLive(view.LastHeartbeat, now, h.window)
		sessions = append(sessions, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
