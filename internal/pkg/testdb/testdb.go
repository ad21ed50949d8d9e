// Package testdb opens migrated databases for tests: an isolated in-memory SQLite
// database per test, or a throwaway PostgreSQL container.
package testdb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"kitchen/internal/adapters/out/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// SQLite returns a migrated in-memory database private to the test.
func SQLite(t testing.TB) *gorm.DB {
	t.Helper()

	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())

	db, err := postgres.Open(ctx, postgres.Options{Driver: postgres.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, db, postgres.DriverSQLite))

	t.Cleanup(func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// PostgresContainer is a running PostgreSQL with the schema applied.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	DB        *gorm.DB
	DSN       string
}

// StartPostgres runs postgres:15-alpine and applies the goose migrations.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	db, err := postgres.Open(ctx, postgres.Options{Driver: postgres.DriverPostgres, DSN: dsn, MaxOpenConns: 16})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err = postgres.Migrate(ctx, db, postgres.DriverPostgres); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &PostgresContainer{Container: container, DB: db, DSN: dsn}, nil
}

// Truncate empties every table between tests.
func (p *PostgresContainer) Truncate() error {
	return p.DB.Exec("TRUNCATE TABLE claims, order_items, orders, sessions CASCADE").Error
}

func (p *PostgresContainer) Terminate(ctx context.Context) error {
	if sqlDB, err := p.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return p.Container.Terminate(ctx)
}
