package memory_test

import (
	"context"
	"testing"
	"time"

	"kitchen/internal/adapters/out/notifier/memory"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(table string, restaurantID kernel.UUID) ports.Event {
	return ports.Event{
		Table:        table,
		Op:           ports.OpUpdate,
		RecordID:     kernel.NewUUID(),
		RestaurantID: restaurantID,
		OccurredAt:   time.Now().UTC(),
	}
}

func TestPublish_DeliversMatchingEvents(t *testing.T) {
	ctx := t.Context()
	n := memory.New(8)
	restaurant := kernel.NewUUID()

	sub, err := n.Subscribe(ctx, ports.Filter{Table: ports.TableOrders, RestaurantID: &restaurant})
	require.NoError(t, err)
	defer sub.Close()

	want := event(ports.TableOrders, restaurant)
	require.NoError(t, n.Publish(ctx, event(ports.TableOrders, kernel.NewUUID())))
	require.NoError(t, n.Publish(ctx, event(ports.TableSessions, restaurant)))
	require.NoError(t, n.Publish(ctx, want))

	select {
	case got := <-sub.Events():
		assert.True(t, got.RecordID.IsEqual(want.RecordID))
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case got := <-sub.Events():
		t.Fatalf("unexpected event %+v", got)
	default:
	}
}

func TestPublish_CoalescesWhenBufferIsFull(t *testing.T) {
	ctx := t.Context()
	n := memory.New(1)

	sub, err := n.Subscribe(ctx, ports.Filter{})
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, n.Publish(ctx, event(ports.TableOrders, kernel.NewUUID())))
	}

	assert.Len(t, sub.Events(), 1)
}

func TestSubscription_EndsWithContext(t *testing.T) {
	n := memory.New(4)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := n.Subscribe(ctx, ports.Filter{})
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "channel is closed on teardown")
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}

	require.NoError(t, sub.Close(), "close is idempotent")
	require.NoError(t, n.Publish(context.Background(), event(ports.TableOrders, kernel.NewUUID())))
}

func TestClose_EndsAllSubscriptions(t *testing.T) {
	n := memory.New(4)

	sub, err := n.Subscribe(t.Context(), ports.Filter{})
	require.NoError(t, err)

	require.NoError(t, n.Close())
	_, ok := <-sub.Events()
	assert.False(t, ok)

	_, err = n.Subscribe(t.Context(), ports.Filter{})
	require.ErrorIs(t, err, memory.ErrClosed)
}
