// Package sessionrepo persists worker sessions, one row per worker and restaurant.
package sessionrepo

import (
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/session"

	"github.com/google/uuid"
)

type SessionDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkerID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sessions_worker_restaurant,priority:1"`
	RestaurantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sessions_worker_restaurant,priority:2;index"`
	Station       *string   `gorm:"size:32"`
	Status        string    `gorm:"size:16;not null"`
	LastHeartbeat time.Time `gorm:"not null;index"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (SessionDTO) TableName() string {
	return "sessions"
}

func fromDomain(s *session.Session) SessionDTO {
	return SessionDTO{
		ID:            s.ID().Bytes(),
		WorkerID:      s.WorkerID().Bytes(),
		RestaurantID:  s.RestaurantID().Bytes(),
		Station:       s.Station(),
		Status:        s.Status().String(),
		LastHeartbeat: s.LastHeartbeat(),
		CreatedAt:     s.CreatedAt(),
	}
}

func toDomain(dto SessionDTO) (*session.Session, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	workerID, err := kernel.UUIDFromBytes(dto.WorkerID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}
	status, err := session.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return session.RestoreSession(session.State{
		ID:            id,
		WorkerID:      workerID,
		RestaurantID:  restaurantID,
		Station:       dto.Station,
		Status:        status,
		LastHeartbeat: dto.LastHeartbeat,
		CreatedAt:     dto.CreatedAt,
	})
}
