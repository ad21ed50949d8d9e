package commands_test

import (
	"testing"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, restaurantID kernel.UUID, itemCount int) *order.Order {
	t.Helper()

	items := make([]*order.Item, 0, itemCount)
	for range itemCount {
		item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), 1, decimal.RequireFromString("5.00"), "")
		require.NoError(t, err)
		items = append(items, item)
	}

	o, err := order.NewOrder(kernel.NewUUID(), restaurantID, kernel.NewUUID(), "ORD-1", "", items, time.Now().UTC())
	require.NoError(t, err)
	return o
}
