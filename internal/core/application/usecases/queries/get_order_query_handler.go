package queries

import (
	"context"

	"kitchen/internal/pkg/errs"

	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError for unknown orders and for orders of
// other restaurants alike.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	orders, err := scanOrders(ctx, h.db, selectOrders+`
		WHERE id = ? AND restaurant_id = ?
	`, query.OrderID().Bytes(), query.RestaurantID().Bytes())
	if err != nil {
		return OrderView{}, err
	}
	if len(orders) == 0 {
		return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	if err = attachItems(ctx, h.db, orders); err != nil {
		return OrderView{}, err
	}
	return orders[0], nil
}
