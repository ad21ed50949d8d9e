package storeerr_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"kitchen/internal/adapters/out/postgres/storeerr"
	"kitchen/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"bad conn", driver.ErrBadConn, true},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", errors.New("database is locked"), true},
		{"not found", gorm.ErrRecordNotFound, false},
		{"cancelled by caller", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, storeerr.IsTransient(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	require.NoError(t, storeerr.Wrap("op", nil))

	plain := errors.New("syntax error")
	assert.Same(t, plain, storeerr.Wrap("op", plain))

	wrapped := storeerr.Wrap("claim order", &pgconn.PgError{Code: "40001"})
	require.ErrorIs(t, wrapped, errs.ErrTransientStore)
	assert.True(t, errs.IsTransient(wrapped))

	var target *errs.TransientStoreError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "claim order", target.Op)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, storeerr.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, storeerr.IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, storeerr.IsUniqueViolation(errors.New("UNIQUE constraint failed: claims.item_id")))
	assert.False(t, storeerr.IsUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, storeerr.IsUniqueViolation(nil))
}
