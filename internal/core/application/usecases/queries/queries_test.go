package queries_test

import (
	"context"
	"testing"
	"time"

	"kitchen/internal/adapters/out/postgres/orderrepo"
	"kitchen/internal/adapters/out/postgres/sessionrepo"
	"kitchen/internal/core/application/usecases/queries"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/core/domain/model/session"
	"kitchen/internal/pkg/errs"
	"kitchen/internal/pkg/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// QueriesTestSuite runs the same assertions against SQLite and PostgreSQL.
type QueriesTestSuite struct {
	suite.Suite
	open    func() *gorm.DB
	cleanup func()
	db      *gorm.DB

	restaurant kernel.UUID
}

func TestQueriesSQLite(t *testing.T) {
	s := new(QueriesTestSuite)
	s.open = func() *gorm.DB { return testdb.SQLite(s.T()) }
	suite.Run(t, s)
}

func TestQueriesPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}

	ctx := context.Background()
	pg, err := testdb.StartPostgres(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, pg.Terminate(ctx))
	})

	s := new(QueriesTestSuite)
	s.open = func() *gorm.DB {
		require.NoError(s.T(), pg.Truncate())
		return pg.DB
	}
	suite.Run(t, s)
}

func (suite *QueriesTestSuite) SetupTest() {
	suite.db = suite.open()
	suite.restaurant = kernel.NewUUID()
}

func (suite *QueriesTestSuite) addOrder(restaurant kernel.UUID, createdAt time.Time, items int, prepare func(o *order.Order)) *order.Order {
	lines := make([]*order.Item, 0, items)
	for i := range items {
		item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), i+1, decimal.RequireFromString("2.50"), "")
		suite.Require().NoError(err)
		lines = append(lines, item)
	}

	o, err := order.NewOrder(kernel.NewUUID(), restaurant, kernel.NewUUID(), "ORD-7", "allergy: sesame", lines, createdAt)
	suite.Require().NoError(err)
	if prepare != nil {
		prepare(o)
	}

	suite.Require().NoError(orderrepo.NewGormOrderRepository(suite.db, nil).Add(context.Background(), o))
	return o
}

func (suite *QueriesTestSuite) TestGetPendingOrders_OpenWorkOldestFirst() {
	now := time.Now().UTC().Truncate(time.Second)
	worker := kernel.NewUUID()

	newer := suite.addOrder(suite.restaurant, now, 1, nil)
	older := suite.addOrder(suite.restaurant, now.Add(-time.Minute), 2, func(o *order.Order) {
		_, err := o.Claim(worker, now)
		suite.Require().NoError(err)
	})
	suite.addOrder(suite.restaurant, now.Add(-2*time.Minute), 1, func(o *order.Order) {
		_, err := o.Claim(worker, now)
		suite.Require().NoError(err)
		suite.Require().NoError(o.Items()[0].Complete(worker, now))
		suite.Require().NoError(o.ChangeStatus(order.Ready, now))
	})
	suite.addOrder(kernel.NewUUID(), now.Add(-3*time.Minute), 1, nil)

	query, err := queries.NewGetPendingOrdersQuery(suite.restaurant)
	suite.Require().NoError(err)

	result, err := queries.NewGetPendingOrdersQueryHandler(suite.db).Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Require().Len(result, 2)

	suite.True(result[0].ID.IsEqual(older.ID()))
	suite.Equal("preparing", result[0].Status)
	suite.Require().Len(result[0].Items, 2)
	suite.Equal(1, result[0].Items[0].Quantity)
	suite.Equal(2, result[0].Items[1].Quantity)
	suite.Require().NotNil(result[0].Items[0].ClaimedBy)
	suite.True(result[0].Items[0].ClaimedBy.IsEqual(worker))
	suite.True(decimal.RequireFromString("7.50").Equal(result[0].Total))

	suite.True(result[1].ID.IsEqual(newer.ID()))
	suite.Equal("pending", result[1].Status)
	suite.Equal("allergy: sesame", result[1].Instructions)
	suite.Nil(result[1].Items[0].ClaimedBy)
}

func (suite *QueriesTestSuite) TestGetPendingOrders_Empty() {
	query, err := queries.NewGetPendingOrdersQuery(suite.restaurant)
	suite.Require().NoError(err)

	result, err := queries.NewGetPendingOrdersQueryHandler(suite.db).Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *QueriesTestSuite) TestGetOrder() {
	o := suite.addOrder(suite.restaurant, time.Now().UTC(), 3, nil)
	handler := queries.NewGetOrderQueryHandler(suite.db)

	query, err := queries.NewGetOrderQuery(o.ID(), suite.restaurant)
	suite.Require().NoError(err)
	view, err := handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.True(view.ID.IsEqual(o.ID()))
	suite.Len(view.Items, 3)
	suite.Equal("ORD-7", view.Number)

	foreign, err := queries.NewGetOrderQuery(o.ID(), kernel.NewUUID())
	suite.Require().NoError(err)
	_, err = handler.Handle(context.Background(), foreign)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueriesTestSuite) TestListSessions_ComputesLiveness() {
	ctx := context.Background()
	now := time.Now().UTC()
	repo := sessionrepo.NewGormSessionRepository(suite.db, nil)

	station := "pass"
	live, err := session.NewSession(kernel.NewUUID(), kernel.NewUUID(), suite.restaurant, &station, now)
	suite.Require().NoError(err)
	_, err = repo.Upsert(ctx, live)
	suite.Require().NoError(err)

	lapsed, err := session.NewSession(kernel.NewUUID(), kernel.NewUUID(), suite.restaurant, nil, now.Add(-time.Hour))
	suite.Require().NoError(err)
	_, err = repo.Upsert(ctx, lapsed)
	suite.Require().NoError(err)

	query, err := queries.NewListSessionsQuery(suite.restaurant)
	suite.Require().NoError(err)
	views, err := queries.NewListSessionsQueryHandler(suite.db, time.Minute).Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Require().Len(views, 2)

	suite.True(views[0].ID.IsEqual(live.ID()))
	suite.True(views[0].Live)
	suite.Require().NotNil(views[0].Station)
	suite.Equal("pass", *views[0].Station)

	suite.True(views[1].ID.IsEqual(lapsed.ID()))
	suite.False(views[1].Live)
	suite.Equal("active", views[1].Status)
}

func TestQueries_NotConstructed(t *testing.T) {
	_, err := queries.NewGetPendingOrdersQueryHandler(nil).Handle(t.Context(), queries.GetPendingOrdersQuery{})
	assert.ErrorIs(t, err, queries.ErrGetPendingOrdersQueryIsNotConstructed)

	_, err = queries.NewGetOrderQueryHandler(nil).Handle(t.Context(), queries.GetOrderQuery{})
	assert.ErrorIs(t, err, queries.ErrGetOrderQueryIsNotConstructed)

	_, err = queries.NewListSessionsQueryHandler(nil, 0).Handle(t.Context(), queries.ListSessionsQuery{})
	assert.ErrorIs(t, err, queries.ErrListSessionsQueryIsNotConstructed)

	_, err = queries.NewGetPendingOrdersQuery(kernel.UUID{})
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}
