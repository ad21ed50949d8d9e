package sessionrepo

import (
	"context"
	"errors"
	"time"

	"kitchen/internal/adapters/out/postgres/cas"
	"kitchen/internal/adapters/out/postgres/storeerr"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/session"
	"kitchen/internal/core/ports"
	"kitchen/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionRepository implements ports.SessionRepository using GORM.
type GormSessionRepository struct {
	db      *gorm.DB
	tracker changeTracker
}

type changeTracker interface {
	TrackChange(event ports.Event)
}

func NewGormSessionRepository(db *gorm.DB, tracker changeTracker) *GormSessionRepository {
	return &GormSessionRepository{db: db, tracker: tracker}
}

// Upsert inserts the session or reactivates the worker's existing row at the
// restaurant. The stored session is returned; on reactivation it keeps its id, and
// a session without a station keeps the station already stored.
func (r *GormSessionRepository) Upsert(ctx context.Context, s *session.Session) (*session.Session, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	dto := fromDomain(s)
	updates := append(
		clause.AssignmentColumns([]string{"status", "last_heartbeat"}),
		clause.Assignment{
			Column: clause.Column{Name: "station"},
			Value:  gorm.Expr("COALESCE(excluded.station, sessions.station)"),
		},
	)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "worker_id"}, {Name: "restaurant_id"}},
		DoUpdates: updates,
	}).Create(&dto).Error
	if err != nil {
		return nil, storeerr.Wrap("upsert session", err)
	}

	stored, err := r.FindByWorker(ctx, s.WorkerID(), s.RestaurantID())
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errs.NewObjectNotFoundError("session", s.ID().String())
	}

	op := ports.OpUpdate
	if stored.ID().IsEqual(s.ID()) {
		op = ports.OpInsert
	}
	r.track(op, stored, s.LastHeartbeat())
	return stored, nil
}

// Save writes the station, status and heartbeat of a stored session.
func (r *GormSessionRepository) Save(ctx context.Context, s *session.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dto := fromDomain(s)
	result := r.db.WithContext(ctx).Model(&SessionDTO{}).
		Where("id = ?", s.ID().Bytes()).
		Updates(map[string]any{
			"station":        dto.Station,
			"status":         dto.Status,
			"last_heartbeat": dto.LastHeartbeat,
		})
	if result.Error != nil {
		return storeerr.Wrap("save session", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("session", s.ID().String())
	}

	r.track(ports.OpUpdate, s, s.LastHeartbeat())
	return nil
}

func (r *GormSessionRepository) Get(ctx context.Context, id kernel.UUID) (*session.Session, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate locks the session row before loading it. SQLite ignores the lock
// clause; its writers are serialised by the connection pool instead.
func (r *GormSessionRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*session.Session, error) {
	return r.get(ctx, id, true)
}

func (r *GormSessionRepository) get(ctx context.Context, id kernel.UUID, lock bool) (*session.Session, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dto SessionDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("session", id.String())
		}
		return nil, storeerr.Wrap("get session", err)
	}
	return toDomain(dto)
}

// FindByWorker returns nil, nil when the worker never opened a session at the restaurant.
func (r *GormSessionRepository) FindByWorker(ctx context.Context, workerID, restaurantID kernel.UUID) (*session.Session, error) {
	return r.findByWorker(ctx, workerID, restaurantID, false)
}

// FindByWorkerForUpdate is FindByWorker holding the row lock until the transaction ends.
func (r *GormSessionRepository) FindByWorkerForUpdate(ctx context.Context, workerID, restaurantID kernel.UUID) (*session.Session, error) {
	return r.findByWorker(ctx, workerID, restaurantID, true)
}

func (r *GormSessionRepository) findByWorker(ctx context.Context, workerID, restaurantID kernel.UUID, lock bool) (*session.Session, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dtos []SessionDTO
	err := db.
		Where("worker_id = ? AND restaurant_id = ?", workerID.Bytes(), restaurantID.Bytes()).
		Limit(1).
		Find(&dtos).Error
	if err != nil {
		return nil, storeerr.Wrap("find session", err)
	}
	if len(dtos) == 0 {
		return nil, nil
	}
	return toDomain(dtos[0])
}

// Heartbeat refreshes an active session whose last heartbeat is not older than
// notBefore. It never touches orders or items.
func (r *GormSessionRepository) Heartbeat(ctx context.Context, id kernel.UUID, now, notBefore time.Time) (bool, error) {
	guard := cas.Where(
		cas.Eq("id", id.Bytes()),
		cas.Eq("status", session.Active.String()),
		cas.Gte("last_heartbeat", notBefore),
	)

	n, err := cas.Update(ctx, r.db, &SessionDTO{}, guard, map[string]any{"last_heartbeat": now})
	if err != nil {
		return false, storeerr.Wrap("heartbeat session", err)
	}
	return n > 0, nil
}

func (r *GormSessionRepository) Deactivate(ctx context.Context, id kernel.UUID) (bool, error) {
	guard := cas.Where(
		cas.Eq("id", id.Bytes()),
		cas.Eq("status", session.Active.String()),
	)

	n, err := cas.Update(ctx, r.db, &SessionDTO{}, guard, map[string]any{"status": session.Inactive.String()})
	if err != nil {
		return false, storeerr.Wrap("deactivate session", err)
	}
	if n == 0 {
		return false, nil
	}

	closed, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	r.track(ports.OpUpdate, closed, time.Now().UTC())
	return true, nil
}

func (r *GormSessionRepository) ListByRestaurant(ctx context.Context, restaurantID kernel.UUID) ([]*session.Session, error) {
	var dtos []SessionDTO
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID.Bytes()).
		Order("last_heartbeat DESC").
		Find(&dtos).Error
	if err != nil {
		return nil, storeerr.Wrap("list sessions", err)
	}
	return toDomainList(dtos)
}

func (r *GormSessionRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*session.Session, error) {
	var dtos []SessionDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND last_heartbeat < ?", session.Active.String(), cutoff).
		Order("last_heartbeat ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, storeerr.Wrap("list stale sessions", err)
	}
	return toDomainList(dtos)
}

func (r *GormSessionRepository) track(op string, s *session.Session, at time.Time) {
	if r.tracker == nil {
		return
	}
	r.tracker.TrackChange(ports.Event{
		Table:        ports.TableSessions,
		Op:           op,
		RecordID:     s.ID(),
		RestaurantID: s.RestaurantID(),
		OccurredAt:   at,
	})
}

func toDomainList(dtos []SessionDTO) ([]*session.Session, error) {
	sessions := make([]*session.Session, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
