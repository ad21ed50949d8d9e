package queries

import (
	"errors"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/guard"
)

var ErrGetPendingOrdersQueryIsNotConstructed = errors.New(
	"GetPendingOrdersQuery must be created via NewGetPendingOrdersQuery constructor",
)

// GetPendingOrdersQuery lists the kitchen's open work at one restaurant: orders
// that are pending or being prepared, oldest first.
//
// Example:
//
//	query, err := NewGetPendingOrdersQuery(restaurantID)
//	if err != nil {
//	    return err
//	}
//	orders, err := handler.Handle(ctx, query)
type GetPendingOrdersQuery struct {
	restaurantID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetPendingOrdersQuery(restaurantID kernel.UUID) (GetPendingOrdersQuery, error) {
	if err := restaurantID.Validate(); err != nil {
		return GetPendingOrdersQuery{}, err
	}
	return GetPendingOrdersQuery{restaurantID: restaurantID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPendingOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingOrdersQueryIsNotConstructed)
}

func (q GetPendingOrdersQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}
