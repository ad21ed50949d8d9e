// Package claimrepo persists claim records. The item id is the primary key, so the
// store itself refuses a second claim on the same item.
package claimrepo

import (
	"context"
	"time"

	"kitchen/internal/adapters/out/postgres/cas"
	"kitchen/internal/adapters/out/postgres/storeerr"
	"kitchen/internal/core/domain/model/claim"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClaimDTO struct {
	ItemID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	WorkerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index"`
	ClaimedAt time.Time `gorm:"not null"`
}

func (ClaimDTO) TableName() string {
	return "claims"
}

// GormClaimRepository implements ports.ClaimRepository using GORM.
type GormClaimRepository struct {
	db *gorm.DB
}

func NewGormClaimRepository(db *gorm.DB) *GormClaimRepository {
	return &GormClaimRepository{db: db}
}

// AddAll inserts the claims in one statement. A unique violation means a concurrent
// claimer won and is reported as ports.ErrItemAlreadyClaimed.
func (r *GormClaimRepository) AddAll(ctx context.Context, claims []*claim.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	dtos := make([]ClaimDTO, 0, len(claims))
	for _, c := range claims {
		if err := c.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, ClaimDTO{
			ItemID:    c.ItemID().Bytes(),
			OrderID:   c.OrderID().Bytes(),
			WorkerID:  c.WorkerID().Bytes(),
			SessionID: c.SessionID().Bytes(),
			ClaimedAt: c.ClaimedAt(),
		})
	}

	if err := r.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		if storeerr.IsUniqueViolation(err) {
			return ports.ErrItemAlreadyClaimed
		}
		return storeerr.Wrap("add claims", err)
	}
	return nil
}

func (r *GormClaimRepository) DeleteByWorker(ctx context.Context, orderID, workerID kernel.UUID) (int64, error) {
	n, err := cas.Delete(ctx, r.db, &ClaimDTO{}, cas.Where(
		cas.Eq("order_id", orderID.Bytes()),
		cas.Eq("worker_id", workerID.Bytes()),
	))
	if err != nil {
		return 0, storeerr.Wrap("delete worker claims", err)
	}
	return n, nil
}

func (r *GormClaimRepository) DeleteByItem(ctx context.Context, itemID kernel.UUID) (int64, error) {
	n, err := cas.Delete(ctx, r.db, &ClaimDTO{}, cas.Where(cas.Eq("item_id", itemID.Bytes())))
	if err != nil {
		return 0, storeerr.Wrap("delete item claim", err)
	}
	return n, nil
}

// OrderIDsBySession lists distinct orders with claims held under the session.
func (r *GormClaimRepository) OrderIDsBySession(ctx context.Context, sessionID kernel.UUID) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&ClaimDTO{}).
		Where("session_id = ?", sessionID.Bytes()).
		Distinct("order_id").
		Order("order_id").
		Pluck("order_id", &raw).Error
	if err != nil {
		return nil, storeerr.Wrap("list session claims", err)
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, v := range raw {
		id, idErr := kernel.UUIDFromBytes(v[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, id)
	}
	return ids, nil
}
