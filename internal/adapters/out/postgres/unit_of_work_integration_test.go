package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kitchen/internal/adapters/out/notifier/memory"
	"kitchen/internal/adapters/out/postgres"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/domain/model/order"
	"kitchen/internal/core/ports"
	"kitchen/internal/pkg/testdb"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

// UnitOfWorkIntegrationTestSuite runs the unit of work against a real PostgreSQL,
// where exclusion between workers comes from row locks.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	pg       *testdb.PostgresContainer
	notifier *memory.Notifier
	factory  *postgres.GormUnitOfWorkFactory
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL container tests in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	pg, err := testdb.StartPostgres(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
	suite.notifier = memory.New(memory.DefaultBuffer)
	suite.factory = postgres.NewGormUnitOfWorkFactory(pg.DB, suite.notifier, zerolog.Nop())
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.notifier != nil {
		suite.Require().NoError(suite.notifier.Close())
	}
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) add(o *order.Order) {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))
}

// tryClaim locks the order, then claims whatever is still pending. It wins only
// if every item of the order was taken by this worker.
func (suite *UnitOfWorkIntegrationTestSuite) tryClaim(orderID, workerID kernel.UUID) (bool, error) {
	ctx := context.Background()
	uow := suite.factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return false, err
	}
	ids := make([]kernel.UUID, 0, len(o.Items()))
	for _, item := range o.Items() {
		if item.Status() == order.ItemPending {
			ids = append(ids, item.ID())
		}
	}
	if len(ids) != len(o.Items()) {
		return false, nil
	}

	n, err := uow.OrderRepository().ClaimItems(ctx, orderID, workerID, ids, time.Now().UTC())
	if err != nil {
		return false, err
	}
	if n != int64(len(ids)) {
		return false, nil
	}
	return true, uow.Commit(ctx)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentClaims_RowLockAdmitsOneWorker() {
	o := newOrder(suite.T(), kernel.NewUUID(), 3)
	suite.add(o)

	const workers = 8
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		errs    = make(chan error, workers)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := suite.tryClaim(o.ID(), kernel.NewUUID())
			if err != nil {
				errs <- err
				return
			}
			if won {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		suite.Require().NoError(err)
	}
	suite.Equal(int32(1), winners.Load())

	stored, err := suite.factory.Create().OrderRepository().Get(context.Background(), o.ID())
	suite.Require().NoError(err)
	holder := stored.Items()[0].ClaimedBy()
	suite.Require().NotNil(holder)
	for _, item := range stored.Items() {
		suite.Equal(order.ItemClaimed, item.Status())
		suite.True(item.IsHeldBy(*holder))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PublishesToSubscribers() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	restaurant := kernel.NewUUID()
	sub, err := suite.notifier.Subscribe(ctx, ports.Filter{RestaurantID: &restaurant})
	suite.Require().NoError(err)
	defer func() {
		_ = sub.Close()
	}()

	o := newOrder(suite.T(), restaurant, 1)
	suite.add(o)

	select {
	case event := <-sub.Events():
		suite.Equal(ports.TableOrders, event.Table)
		suite.True(event.RecordID.IsEqual(o.ID()))
	case <-time.After(2 * time.Second):
		suite.FailNow("no change event received")
	}
}
