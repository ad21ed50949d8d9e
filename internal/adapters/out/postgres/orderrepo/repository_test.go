package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"kitchen/internal/adapters/out/postgres/orderrepo"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/core/ports"
	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type recordingTracker struct {
	events []ports.Event
}

func (r *recordingTracker) TrackChange(event ports.Event) {
	r.events = append(r.events, event)
}

type OrderRepositoryTestSuite struct {
	suite.Suite
	db         *gorm.DB
	tracker    *recordingTracker
	repository *orderrepo.GormOrderRepository
	now        time.Time
}

func TestOrderRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryTestSuite))
}

func (suite *OrderRepositoryTestSuite) SetupTest() {
	suite.db = testdb.SQLite(suite.T())
	suite.tracker = &recordingTracker{}
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
	suite.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (suite *OrderRepositoryTestSuite) createOrder(restaurantID kernel.UUID, itemCount int, createdAt time.Time) *order.Order {
	items := make([]*order.Item, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), i+1, decimal.RequireFromString("2.50"), "")
		suite.Require().NoError(err)
		items = append(items, item)
	}

	o, err := order.NewOrder(kernel.NewUUID(), restaurantID, kernel.NewUUID(), "ORD-1", "window seat", items, createdAt)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), o))
	return o
}

func (suite *OrderRepositoryTestSuite) TestAdd_RoundTripsOrderWithItems() {
	ctx := context.Background()
	o := suite.createOrder(kernel.NewUUID(), 3, suite.now)

	loaded, err := suite.repository.Get(ctx, o.ID())

	suite.Require().NoError(err)
	suite.Equal(order.Pending, loaded.Status())
	suite.True(decimal.RequireFromString("15").Equal(loaded.Total()))
	suite.Equal("window seat", loaded.Instructions())
	suite.Require().Len(loaded.Items(), 3)
	for i, item := range loaded.Items() {
		suite.True(item.ID().IsEqual(o.Items()[i].ID()), "items keep checkout order")
		suite.Equal(order.ItemPending, item.Status())
	}

	suite.Require().Len(suite.tracker.events, 1)
	suite.Equal(ports.TableOrders, suite.tracker.events[0].Table)
	suite.Equal(ports.OpInsert, suite.tracker.events[0].Op)
	suite.True(suite.tracker.events[0].RestaurantID.IsEqual(o.RestaurantID()))
}

func (suite *OrderRepositoryTestSuite) TestGet_Missing() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repository.GetForUpdate(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repository.GetItem(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryTestSuite) TestClaimItems_OnlyTouchesUnclaimedPendingItems() {
	ctx := context.Background()
	o := suite.createOrder(kernel.NewUUID(), 2, suite.now)
	first, second := o.Items()[0].ID(), o.Items()[1].ID()
	alice, bob := kernel.NewUUID(), kernel.NewUUID()

	n, err := suite.repository.ClaimItems(ctx, o.ID(), alice, []kernel.UUID{first}, suite.now)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)

	n, err = suite.repository.ClaimItems(ctx, o.ID(), bob, []kernel.UUID{first, second}, suite.now)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n, "the guard skips the item alice holds")

	item, err := suite.repository.GetItem(ctx, first)
	suite.Require().NoError(err)
	suite.True(item.IsHeldBy(alice))

	n, err = suite.repository.ClaimItems(ctx, kernel.NewUUID(), bob, []kernel.UUID{first}, suite.now)
	suite.Require().NoError(err)
	suite.Zero(n, "items of another order are never touched")
}

func (suite *OrderRepositoryTestSuite) TestReleaseItems() {
	ctx := context.Background()
	o := suite.createOrder(kernel.NewUUID(), 2, suite.now)
	alice, bob := kernel.NewUUID(), kernel.NewUUID()
	ids := []kernel.UUID{o.Items()[0].ID(), o.Items()[1].ID()}

	_, err := suite.repository.ClaimItems(ctx, o.ID(), alice, ids, suite.now)
	suite.Require().NoError(err)
	_, err = suite.repository.CompleteItem(ctx, ids[0], alice, suite.now)
	suite.Require().NoError(err)

	n, err := suite.repository.ReleaseItems(ctx, o.ID(), bob)
	suite.Require().NoError(err)
	suite.Zero(n)

	n, err = suite.repository.ReleaseItems(ctx, o.ID(), alice)
	suite.Require().NoError(err)
	suite.Equal(int64(1), n, "completed items stay completed")

	loaded, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal([]order.ItemStatus{order.ItemCompleted, order.ItemPending}, loaded.ItemStatuses())
	suite.Nil(loaded.Items()[1].ClaimedBy())
}

func (suite *OrderRepositoryTestSuite) TestCompleteItem_RequiresOwnership() {
	ctx := context.Background()
	o := suite.createOrder(kernel.NewUUID(), 1, suite.now)
	itemID := o.Items()[0].ID()
	alice, bob := kernel.NewUUID(), kernel.NewUUID()

	_, err := suite.repository.ClaimItems(ctx, o.ID(), alice, []kernel.UUID{itemID}, suite.now)
	suite.Require().NoError(err)

	n, err := suite.repository.CompleteItem(ctx, itemID, bob, suite.now)
	suite.Require().NoError(err)
	suite.Zero(n)

	events := len(suite.tracker.events)
	n, err = suite.repository.CompleteItem(ctx, itemID, alice, suite.now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Equal(int64(1), n)
	suite.Require().Len(suite.tracker.events, events+1)
	suite.Equal(ports.TableOrderItems, suite.tracker.events[events].Table)

	item, err := suite.repository.GetItem(ctx, itemID)
	suite.Require().NoError(err)
	suite.True(item.IsCompletedBy(alice))
	suite.Require().NotNil(item.CompletedAt())

	n, err = suite.repository.CompleteItem(ctx, itemID, alice, suite.now)
	suite.Require().NoError(err)
	suite.Zero(n, "completion is not repeated")
}

func (suite *OrderRepositoryTestSuite) TestCompareAndSetStatus() {
	ctx := context.Background()
	o := suite.createOrder(kernel.NewUUID(), 1, suite.now)

	ok, err := suite.repository.CompareAndSetStatus(ctx, o.ID(), order.Preparing, order.Ready, suite.now)
	suite.Require().NoError(err)
	suite.False(ok)

	ok, err = suite.repository.CompareAndSetStatus(ctx, o.ID(), order.Pending, order.Preparing, suite.now.Add(time.Second))
	suite.Require().NoError(err)
	suite.True(ok)

	loaded, err := suite.repository.GetForUpdate(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Preparing, loaded.Status())
}

func (suite *OrderRepositoryTestSuite) TestListByStatus_OldestFirstPerRestaurant() {
	ctx := context.Background()
	restaurant := kernel.NewUUID()
	newer := suite.createOrder(restaurant, 1, suite.now.Add(time.Minute))
	older := suite.createOrder(restaurant, 1, suite.now)
	served := suite.createOrder(restaurant, 1, suite.now.Add(-time.Hour))
	suite.createOrder(kernel.NewUUID(), 1, suite.now)

	_, err := suite.repository.CompareAndSetStatus(ctx, served.ID(), order.Pending, order.Cancelled, suite.now)
	suite.Require().NoError(err)

	orders, err := suite.repository.ListByStatus(ctx, &restaurant, order.Pending, order.Preparing)
	suite.Require().NoError(err)
	suite.Require().Len(orders, 2)
	suite.True(orders[0].IsEqual(older))
	suite.True(orders[1].IsEqual(newer))

	all, err := suite.repository.ListByStatus(ctx, nil, order.Pending)
	suite.Require().NoError(err)
	suite.Len(all, 3)
}
