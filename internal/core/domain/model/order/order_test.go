package order_test

import (
	"testing"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newItem(t *testing.T, qty int, price string) *order.Item {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), qty, decimal.RequireFromString(price), "")
	require.NoError(t, err)
	return item
}

func newOrder(t *testing.T, items ...*order.Item) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "ORD-1", "", items, testNow)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should create pending order with computed total", func(t *testing.T) {
		items := []*order.Item{newItem(t, 2, "9.50"), newItem(t, 1, "3.25")}

		o := newOrder(t, items...)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.Pending, o.Status())
		assert.True(t, decimal.RequireFromString("22.25").Equal(o.Total()))
		assert.Equal(t, testNow, o.CreatedAt())
		for _, item := range o.Items() {
			assert.True(t, item.OrderID().IsEqual(o.ID()))
		}
	})

	t.Run("should require items and identifiers", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, kernel.UUID{}, kernel.UUID{}, "", "", nil, testNow)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "restaurant id")
		assert.Contains(t, err.Error(), "table id")
		assert.Contains(t, err.Error(), "order number")
		assert.Contains(t, err.Error(), "items")
	})

	t.Run("should reject unconstructed item", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "ORD-2", "", []*order.Item{{}}, testNow)
		require.ErrorIs(t, err, order.ErrItemIsNotConstructed)
	})
}

func TestOrder_ValidateZeroValue(t *testing.T) {
	var o *order.Order
	require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	require.ErrorIs(t, (&order.Order{}).Validate(), order.ErrOrderIsNotConstructed)
}

func TestRestoreOrder(t *testing.T) {
	orderID := kernel.NewUUID()
	item, err := order.RestoreItem(order.ItemState{
		ID:         kernel.NewUUID(),
		OrderID:    orderID,
		MenuItemID: kernel.NewUUID(),
		Quantity:   1,
		UnitPrice:  decimal.NewFromInt(10),
		Status:     order.ItemCompleted,
	})
	require.NoError(t, err)

	state := order.State{
		ID:           orderID,
		RestaurantID: kernel.NewUUID(),
		TableID:      kernel.NewUUID(),
		Number:       "ORD-9",
		Total:        decimal.NewFromInt(8),
		Status:       order.Ready,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
		Items:        []*order.Item{item},
	}

	t.Run("keeps stored values", func(t *testing.T) {
		o, err := order.RestoreOrder(state)

		require.NoError(t, err)
		assert.Equal(t, order.Ready, o.Status())
		assert.True(t, decimal.NewFromInt(8).Equal(o.Total()))
		assert.True(t, o.BelongsTo(state.RestaurantID))
		assert.False(t, o.BelongsTo(kernel.NewUUID()))
	})

	t.Run("rejects foreign items", func(t *testing.T) {
		foreign := state
		foreign.ID = kernel.NewUUID()

		_, err := order.RestoreOrder(foreign)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		broken := state
		broken.Status = order.Unknown

		_, err := order.RestoreOrder(broken)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestOrder_Claim(t *testing.T) {
	worker := kernel.NewUUID()
	other := kernel.NewUUID()

	t.Run("claims every pending item and starts preparing", func(t *testing.T) {
		o := newOrder(t, newItem(t, 1, "1"), newItem(t, 1, "1"))

		ids, err := o.Claim(worker, testNow)

		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.Equal(t, order.Preparing, o.Status())
		assert.Len(t, o.HeldItemIDs(worker), 2)
	})

	t.Run("re-claim by owner is idempotent", func(t *testing.T) {
		o := newOrder(t, newItem(t, 1, "1"))
		_, err := o.Claim(worker, testNow)
		require.NoError(t, err)

		ids, err := o.Claim(worker, testNow)

		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.NotNil(t, ids)
	})

	t.Run("conflicts when another worker holds an item", func(t *testing.T) {
		o := newOrder(t, newItem(t, 1, "1"))
		_, err := o.Claim(other, testNow)
		require.NoError(t, err)

		ids, err := o.Claim(worker, testNow)

		require.ErrorIs(t, err, order.ErrClaimedByOther)
		assert.Nil(t, ids)
		assert.Empty(t, o.HeldItemIDs(worker))
	})

	t.Run("finished orders are not claimable", func(t *testing.T) {
		o := newOrder(t, newItem(t, 1, "1"))
		require.NoError(t, o.ChangeStatus(order.Cancelled, testNow))

		_, err := o.Claim(worker, testNow)
		require.ErrorIs(t, err, order.ErrOrderNotClaimable)
	})

	t.Run("picks up items left over by a finished worker", func(t *testing.T) {
		first, second := newItem(t, 1, "1"), newItem(t, 1, "1")
		o := newOrder(t, first, second)
		_, err := o.Claim(other, testNow)
		require.NoError(t, err)
		require.NoError(t, first.Complete(other, testNow))
		require.NoError(t, second.Release(other))

		ids, err := o.Claim(worker, testNow)

		require.NoError(t, err)
		require.Len(t, ids, 1)
		assert.True(t, ids[0].IsEqual(second.ID()))
	})
}

func TestOrder_ChangeStatus(t *testing.T) {
	o := newOrder(t, newItem(t, 1, "1"))
	later := testNow.Add(time.Minute)

	require.NoError(t, o.ChangeStatus(order.Pending, later))
	assert.Equal(t, testNow, o.UpdatedAt())

	require.NoError(t, o.ChangeStatus(order.Preparing, later))
	require.NoError(t, o.ChangeStatus(order.Ready, later))
	assert.Equal(t, later, o.UpdatedAt())

	require.ErrorIs(t, o.ChangeStatus(order.Pending, later), errs.ErrValueIsInvalid)
	require.ErrorIs(t, o.ChangeStatus(order.Cancelled, later), errs.ErrValueIsInvalid)
	require.ErrorIs(t, o.ChangeStatus(order.Unknown, later), errs.ErrValueIsInvalid)
	require.NoError(t, o.ChangeStatus(order.Served, later))
	assert.Equal(t, order.Served, o.Status())
}

func TestOrder_AllItemsPending(t *testing.T) {
	item := newItem(t, 1, "1")
	o := newOrder(t, item, newItem(t, 1, "1"))
	worker := kernel.NewUUID()

	assert.True(t, o.AllItemsPending())
	_, err := o.Claim(worker, testNow)
	require.NoError(t, err)
	assert.False(t, o.AllItemsPending())

	got, ok := o.Item(item.ID())
	require.True(t, ok)
	assert.Same(t, item, got)
	assert.Equal(t, []order.ItemStatus{order.ItemClaimed, order.ItemClaimed}, o.ItemStatuses())
}
