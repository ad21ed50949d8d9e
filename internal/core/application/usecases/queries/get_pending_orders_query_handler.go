package queries

import (
	"context"

	"kitchen/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetPendingOrdersQueryHandler reads open orders with their items.
type GetPendingOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetPendingOrdersQueryHandler(db *gorm.DB) GetPendingOrdersQueryHandler {
	return GetPendingOrdersQueryHandler{db: db}
}

// Handle returns an empty slice, never nil, when the kitchen has nothing to do.
func (h GetPendingOrdersQueryHandler) Handle(ctx context.Context, query GetPendingOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := scanOrders(ctx, h.db, selectOrders+`
		WHERE restaurant_id = ? AND status IN ?
		ORDER BY created_at ASC, id ASC
	`, query.RestaurantID().Bytes(), []string{order.Pending.String(), order.Preparing.String()})
	if err != nil {
		return nil, err
	}

	if err = attachItems(ctx, h.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}
