// Package orderrepo maps the Order aggregate onto the orders and order_items tables and
// implements the guarded item and status writes of the claim protocol.
package orderrepo

import (
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the row of the orders table.
type OrderDTO struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID       `gorm:"type:uuid;not null;index:idx_orders_restaurant_status,priority:1"`
	TableID      uuid.UUID       `gorm:"type:uuid;not null"`
	Number       string          `gorm:"size:32;not null"`
	Total        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status       string          `gorm:"size:16;not null;index:idx_orders_restaurant_status,priority:2"`
	Instructions string          `gorm:"size:500"`
	CreatedAt    time.Time       `gorm:"not null;index"`
	UpdatedAt    time.Time       `gorm:"not null"`
	Items        []OrderItemDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is the row of the order_items table. Position keeps the checkout order.
type OrderItemDTO struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null"`
	MenuItemID   uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Instructions string          `gorm:"size:500"`
	Status       string          `gorm:"size:16;not null"`
	ClaimedBy    *uuid.UUID      `gorm:"type:uuid;index"`
	ClaimedAt    *time.Time
	CompletedAt  *time.Time
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) OrderDTO {
	items := o.Items()
	dto := OrderDTO{
		ID:           o.ID().Bytes(),
		RestaurantID: o.RestaurantID().Bytes(),
		TableID:      o.TableID().Bytes(),
		Number:       o.Number(),
		Total:        o.Total(),
		Status:       o.Status().String(),
		Instructions: o.Instructions(),
		CreatedAt:    o.CreatedAt(),
		UpdatedAt:    o.UpdatedAt(),
		Items:        make([]OrderItemDTO, 0, len(items)),
	}

	for position, item := range items {
		dto.Items = append(dto.Items, itemFromDomain(item, position))
	}
	return dto
}

func itemFromDomain(item *order.Item, position int) OrderItemDTO {
	var claimedBy *uuid.UUID
	if id := item.ClaimedBy(); id != nil {
		raw := id.Bytes()
		claimedBy = &raw
	}

	return OrderItemDTO{
		ID:           item.ID().Bytes(),
		OrderID:      item.OrderID().Bytes(),
		Position:     position,
		MenuItemID:   item.MenuItemID().Bytes(),
		Quantity:     item.Quantity(),
		UnitPrice:    item.UnitPrice(),
		Instructions: item.Instructions(),
		Status:       item.Status().String(),
		ClaimedBy:    claimedBy,
		ClaimedAt:    item.ClaimedAt(),
		CompletedAt:  item.CompletedAt(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	ids, err := uuids(dto.ID, dto.RestaurantID, dto.TableID)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	items := make([]*order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(order.State{
		ID:           ids[0],
		RestaurantID: ids[1],
		TableID:      ids[2],
		Number:       dto.Number,
		Total:        dto.Total,
		Status:       status,
		Instructions: dto.Instructions,
		CreatedAt:    dto.CreatedAt,
		UpdatedAt:    dto.UpdatedAt,
		Items:        items,
	})
}

func itemToDomain(dto OrderItemDTO) (*order.Item, error) {
	ids, err := uuids(dto.ID, dto.OrderID, dto.MenuItemID)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseItemStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var claimedBy *kernel.UUID
	if dto.ClaimedBy != nil {
		worker, workerErr := kernel.UUIDFromBytes(dto.ClaimedBy[:])
		if workerErr != nil {
			return nil, workerErr
		}
		claimedBy = &worker
	}

	return order.RestoreItem(order.ItemState{
		ID:           ids[0],
		OrderID:      ids[1],
		MenuItemID:   ids[2],
		Quantity:     dto.Quantity,
		UnitPrice:    dto.UnitPrice,
		Instructions: dto.Instructions,
		Status:       status,
		ClaimedBy:    claimedBy,
		ClaimedAt:    dto.ClaimedAt,
		CompletedAt:  dto.CompletedAt,
	})
}

func uuids(raw ...uuid.UUID) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
