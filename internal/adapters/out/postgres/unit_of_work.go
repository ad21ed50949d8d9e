// Package postgres provides the GORM-based Unit of Work and database plumbing of the
// kitchen service. The same code runs on PostgreSQL in production and on SQLite for
// development and tests.
//
// A unit of work wraps one database transaction. Repositories obtained from it record
// every change they make; the changes are published to the Notifier only after a
// successful Commit, so subscribers never observe uncommitted state.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	if _, err := uow.OrderRepository().ClaimItems(ctx, orderID, workerID, ids, now); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides isolated transactions
//   - Multiple goroutines should use separate UnitOfWork instances
//   - Mutual exclusion between workers comes from row locks and guarded writes
package postgres

import (
	"context"
	"time"

	"kitchen/internal/adapters/out/postgres/claimrepo"
	"kitchen/internal/adapters/out/postgres/orderrepo"
	"kitchen/internal/adapters/out/postgres/sessionrepo"
	"kitchen/internal/adapters/out/postgres/storeerr"
	"kitchen/internal/core/ports"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const publishTimeout = 5 * time.Second

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool
// and one notifier.
type GormUnitOfWorkFactory struct {
	db       *gorm.DB
	notifier ports.Notifier
	logger   zerolog.Logger
}

// NewGormUnitOfWorkFactory creates a factory. A nil notifier disables publication.
//
// Example:
//
//	db, err := postgres.Open(ctx, postgres.Options{Driver: "postgres", DSN: dsn})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := postgres.NewGormUnitOfWorkFactory(db, notifier, logger)
func NewGormUnitOfWorkFactory(db *gorm.DB, notifier ports.Notifier, logger zerolog.Logger) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, notifier: notifier, logger: logger}
}

// Create produces a fresh unit of work with no transaction and no tracked changes.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:       f.db,
		notifier: f.notifier,
		logger:   f.logger,
		changes:  make([]ports.Event, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and the change events it produced.
type GormUnitOfWork struct {
	db       *gorm.DB
	tx       *gorm.DB
	notifier ports.Notifier
	logger   zerolog.Logger
	changes  []ports.Event
}

// Begin starts the transaction. Calling it again while a transaction is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storeerr.Wrap("begin transaction", tx.Error)
	}

	uow.tx = tx
	return nil
}

// Commit makes the changes permanent and then publishes the tracked events. Publish
// failures are logged, not returned: the data is committed and events are only hints.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.changes = uow.changes[:0]
		return storeerr.Wrap("commit transaction", err)
	}

	uow.publish(ctx)
	return nil
}

// Rollback discards the transaction and every tracked change.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	uow.changes = uow.changes[:0]
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) SessionRepository() ports.SessionRepository {
	return sessionrepo.NewGormSessionRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) ClaimRepository() ports.ClaimRepository {
	return claimrepo.NewGormClaimRepository(uow.conn())
}

// TrackChange registers an event for publication after commit. Repositories call it.
func (uow *GormUnitOfWork) TrackChange(event ports.Event) {
	uow.changes = append(uow.changes, event)
}

// TrackedChanges returns the events waiting for commit.
func (uow *GormUnitOfWork) TrackedChanges() []ports.Event {
	changes := make([]ports.Event, len(uow.changes))
	copy(changes, uow.changes)
	return changes
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) publish(ctx context.Context) {
	changes := uow.changes
	uow.changes = make([]ports.Event, 0)
	if uow.notifier == nil || len(changes) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, event := range changes {
		if err := uow.notifier.Publish(ctx, event); err != nil {
			uow.logger.Warn().Err(err).
				Str("table", event.Table).
				Str("op", event.Op).
				Str("record_id", event.RecordID.String()).
				Msg("change event not published")
		}
	}
}
