// Package queries contains the read side of the kitchen service. Handlers read
// straight from the store with SQL and return flat views; kitchen displays call
// them again whenever a change event arrives.
package queries

import (
	"context"
	"time"

	"kitchen/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderView is an order as shown on a kitchen display.
type OrderView struct {
	ID           kernel.UUID     `json:"id"`
	RestaurantID kernel.UUID     `json:"restaurantId"`
	TableID      kernel.UUID     `json:"tableId"`
	Number       string          `json:"number"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	Instructions string          `json:"instructions,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Items        []ItemView      `json:"items"`
}

// ItemView is one line of an order with its claim state.
type ItemView struct {
	ID           kernel.UUID     `json:"id"`
	MenuItemID   kernel.UUID     `json:"menuItemId"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Instructions string          `json:"instructions,omitempty"`
	Status       string          `json:"status"`
	ClaimedBy    *kernel.UUID    `json:"claimedBy,omitempty"`
	ClaimedAt    *time.Time      `json:"claimedAt,omitempty"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

const selectOrders = `
	SELECT
		id,
		restaurant_id,
		table_id,
		number,
		total,
		status,
		instructions,
		created_at,
		updated_at
	FROM orders
`

func scanOrders(ctx context.Context, db *gorm.DB, query string, args ...any) ([]OrderView, error) {
	rows, err := db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderView, 0)
	for rows.Next() {
		var (
			view                    OrderView
			id, restaurant, tableID uuid.UUID
			instructions            *string
		)

		err = rows.Scan(
			&id,
			&restaurant,
			&tableID,
			&view.Number,
			&view.Total,
			&view.Status,
			&instructions,
			&view.CreatedAt,
			&view.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if view.RestaurantID, err = kernel.UUIDFromBytes(restaurant[:]); err != nil {
			return nil, err
		}
		if view.TableID, err = kernel.UUIDFromBytes(tableID[:]); err != nil {
			return nil, err
		}
		if instructions != nil {
			view.Instructions = *instructions
		}
		view.CreatedAt = view.CreatedAt.UTC()
		view.UpdatedAt = view.UpdatedAt.UTC()
		view.Items = make([]ItemView, 0)
		orders = append(orders, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of every order in one round trip.
func attachItems(ctx context.Context, db *gorm.DB, orders []OrderView) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID.Bytes())
		index[o.ID.Bytes()] = i
	}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			menu_item_id,
			quantity,
			unit_price,
			instructions,
			status,
			claimed_by,
			claimed_at,
			completed_at
		FROM order_items
		WHERE order_id IN ?
		ORDER BY order_id, position
	`, ids).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item                ItemView
			id, orderID, menuID uuid.UUID
			claimedBy           uuid.NullUUID
			instructions        *string
		)

		err = rows.Scan(
			&id,
			&orderID,
			&menuID,
			&item.Quantity,
			&item.UnitPrice,
			&instructions,
			&item.Status,
			&claimedBy,
			&item.ClaimedAt,
			&item.CompletedAt,
		)
		if err != nil {
			return err
		}

		if item.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return err
		}
		if item.MenuItemID, err = kernel.UUIDFromBytes(menuID[:]); err != nil {
			return err
		}
		if claimedBy.Valid {
			owner, ownerErr := kernel.UUIDFromBytes(claimedBy.UUID[:])
			if ownerErr != nil {
				return ownerErr
			}
			item.ClaimedBy = &owner
		}
		if instructions != nil {
			item.Instructions = *instructions
		}

		i, ok := index[orderID]
		if !ok {
			continue
		}
		orders[i].Items = append(orders[i].Items, item)
	}

	return rows.Err()
}
