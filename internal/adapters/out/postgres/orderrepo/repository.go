package orderrepo

import (
	"context"
	"errors"
	"time"

	"kitchen/internal/adapters/out/postgres/cas"
	"kitchen/internal/adapters/out/postgres/storeerr"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/core/ports"
	"kitchen/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db          *gorm.DB
	tracker     changeTracker
	restaurants map[uuid.UUID]kernel.UUID
}

// changeTracker records committed-to-be changes for publication after commit.
type changeTracker interface {
	TrackChange(event ports.Event)
}

func NewGormOrderRepository(db *gorm.DB, tracker changeTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:          db,
		tracker:     tracker,
		restaurants: make(map[uuid.UUID]kernel.UUID),
	}
}

// Add saves a new order with its items.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return storeerr.Wrap("add order", err)
	}

	r.restaurants[dto.ID] = aggregate.RestaurantID()
	r.track(ports.TableOrders, ports.OpInsert, aggregate.ID(), aggregate.RestaurantID(), aggregate.CreatedAt())
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate locks the order row before loading it. SQLite ignores the lock
// clause; its writers are serialised by the connection pool instead.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, id, true)
}

func (r *GormOrderRepository) get(ctx context.Context, id kernel.UUID, lock bool) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	if lock {
		var locked OrderDTO
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, "id = ?", id.Bytes()).Error
		if err != nil {
			return nil, r.notFound(err, id, "lock order")
		}
	}

	var dto OrderDTO
	err := db.Preload("Items", orderItems).First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		return nil, r.notFound(err, id, "get order")
	}

	r.restaurants[dto.ID] = mustUUID(dto.RestaurantID)
	return toDomain(dto)
}

func (r *GormOrderRepository) GetItem(ctx context.Context, id kernel.UUID) (*order.Item, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderItemDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order item", id.String())
		}
		return nil, storeerr.Wrap("get order item", err)
	}

	return itemToDomain(dto)
}

// ListByStatus returns matching orders oldest first.
func (r *GormOrderRepository) ListByStatus(
	ctx context.Context,
	restaurantID *kernel.UUID,
	statuses ...order.Status,
) ([]*order.Order, error) {
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, status.String())
	}

	query := r.db.WithContext(ctx).Preload("Items", orderItems).Where("status IN ?", names)
	if restaurantID != nil {
		query = query.Where("restaurant_id = ?", restaurantID.Bytes())
	}

	var dtos []OrderDTO
	if err := query.Order("created_at ASC").Order("id ASC").Find(&dtos).Error; err != nil {
		return nil, storeerr.Wrap("list orders", err)
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ClaimItems sets the owner on items that are still pending and unowned.
func (r *GormOrderRepository) ClaimItems(
	ctx context.Context,
	orderID, workerID kernel.UUID,
	itemIDs []kernel.UUID,
	at time.Time,
) (int64, error) {
	guard := cas.Where(
		cas.Eq("order_id", orderID.Bytes()),
		cas.In("id", rawIDs(itemIDs)...),
		cas.IsNull("claimed_by"),
		cas.Eq("status", order.ItemPending.String()),
	)

	n, err := cas.Update(ctx, r.db, &OrderItemDTO{}, guard, map[string]any{
		"status":     order.ItemClaimed.String(),
		"claimed_by": workerID.Bytes(),
		"claimed_at": at,
	})
	if err != nil {
		return 0, storeerr.Wrap("claim items", err)
	}

	if n > 0 {
		if err = r.trackItems(ctx, orderID, itemIDs, at); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// ReleaseItems returns the worker's claimed items of the order to the pending pool.
func (r *GormOrderRepository) ReleaseItems(ctx context.Context, orderID, workerID kernel.UUID) (int64, error) {
	guard := cas.Where(
		cas.Eq("order_id", orderID.Bytes()),
		cas.Eq("claimed_by", workerID.Bytes()),
		cas.Eq("status", order.ItemClaimed.String()),
	)

	var held []uuid.UUID
	err := r.db.WithContext(ctx).Model(&OrderItemDTO{}).Scopes(guard.Scope).Pluck("id", &held).Error
	if err != nil {
		return 0, storeerr.Wrap("find held items", err)
	}
	if len(held) == 0 {
		return 0, nil
	}

	ids := make([]any, 0, len(held))
	for _, id := range held {
		ids = append(ids, id)
	}

	n, err := cas.Update(ctx, r.db, &OrderItemDTO{}, guard.And(cas.In("id", ids...)), map[string]any{
		"status":     order.ItemPending.String(),
		"claimed_by": nil,
		"claimed_at": nil,
	})
	if err != nil {
		return 0, storeerr.Wrap("release items", err)
	}

	if n > 0 {
		released := make([]kernel.UUID, 0, len(held))
		for _, id := range held {
			released = append(released, mustUUID(id))
		}
		if err = r.trackItems(ctx, orderID, released, time.Now().UTC()); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// CompleteItem completes an item only while the worker still holds it.
func (r *GormOrderRepository) CompleteItem(ctx context.Context, itemID, workerID kernel.UUID, at time.Time) (int64, error) {
	guard := cas.Where(
		cas.Eq("id", itemID.Bytes()),
		cas.Eq("claimed_by", workerID.Bytes()),
		cas.Eq("status", order.ItemClaimed.String()),
	)

	n, err := cas.Update(ctx, r.db, &OrderItemDTO{}, guard, map[string]any{
		"status":       order.ItemCompleted.String(),
		"completed_at": at,
	})
	if err != nil {
		return 0, storeerr.Wrap("complete item", err)
	}

	if n > 0 {
		var orderIDs []uuid.UUID
		err = r.db.WithContext(ctx).Model(&OrderItemDTO{}).Where("id = ?", itemID.Bytes()).Pluck("order_id", &orderIDs).Error
		if err != nil {
			return 0, storeerr.Wrap("find item order", err)
		}
		if len(orderIDs) == 1 {
			if err = r.trackItems(ctx, mustUUID(orderIDs[0]), []kernel.UUID{itemID}, at); err != nil {
				return 0, err
			}
		}
	}
	return n, nil
}

// CompareAndSetStatus moves the order from one status to another.
func (r *GormOrderRepository) CompareAndSetStatus(
	ctx context.Context,
	orderID kernel.UUID,
	from, to order.Status,
	at time.Time,
) (bool, error) {
	guard := cas.Where(
		cas.Eq("id", orderID.Bytes()),
		cas.Eq("status", from.String()),
	)

	n, err := cas.Update(ctx, r.db, &OrderDTO{}, guard, map[string]any{
		"status":     to.String(),
		"updated_at": at,
	})
	if err != nil {
		return false, storeerr.Wrap("set order status", err)
	}
	if n == 0 {
		return false, nil
	}

	restaurantID, err := r.restaurantOf(ctx, orderID)
	if err != nil {
		return false, err
	}
	r.track(ports.TableOrders, ports.OpUpdate, orderID, restaurantID, at)
	return true, nil
}

func (r *GormOrderRepository) trackItems(ctx context.Context, orderID kernel.UUID, itemIDs []kernel.UUID, at time.Time) error {
	restaurantID, err := r.restaurantOf(ctx, orderID)
	if err != nil {
		return err
	}
	for _, id := range itemIDs {
		r.track(ports.TableOrderItems, ports.OpUpdate, id, restaurantID, at)
	}
	return nil
}

func (r *GormOrderRepository) restaurantOf(ctx context.Context, orderID kernel.UUID) (kernel.UUID, error) {
	if id, ok := r.restaurants[orderID.Bytes()]; ok {
		return id, nil
	}

	var raw []uuid.UUID
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", orderID.Bytes()).Pluck("restaurant_id", &raw).Error
	if err != nil {
		return kernel.UUID{}, storeerr.Wrap("find order restaurant", err)
	}
	if len(raw) == 0 {
		return kernel.UUID{}, errs.NewObjectNotFoundError("order", orderID.String())
	}

	id := mustUUID(raw[0])
	r.restaurants[orderID.Bytes()] = id
	return id, nil
}

func (r *GormOrderRepository) track(table, op string, recordID, restaurantID kernel.UUID, at time.Time) {
	if r.tracker == nil {
		return
	}
	r.tracker.TrackChange(ports.Event{
		Table:        table,
		Op:           op,
		RecordID:     recordID,
		RestaurantID: restaurantID,
		OccurredAt:   at,
	})
}

func (r *GormOrderRepository) notFound(err error, id kernel.UUID, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return storeerr.Wrap(op, err)
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func rawIDs(ids []kernel.UUID) []any {
	raw := make([]any, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}
	return raw
}

func mustUUID(raw uuid.UUID) kernel.UUID {
	id, _ := kernel.UUIDFromBytes(raw[:])
	return id
}
