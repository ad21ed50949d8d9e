package claimrepo_test

import (
	"context"
	"testing"
	"time"

	"kitchen/internal/adapters/out/postgres/claimrepo"
	"kitchen/internal/core/domain/model/claim"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/ports"
	"kitchen/internal/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClaim(t *testing.T, orderID, itemID, workerID, sessionID kernel.UUID) *claim.Claim {
	t.Helper()
	c, err := claim.NewClaim(orderID, itemID, workerID, sessionID, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return c
}

func TestAddAll_RejectsSecondClaimOnItem(t *testing.T) {
	ctx := context.Background()
	repo := claimrepo.NewGormClaimRepository(testdb.SQLite(t))
	orderID, itemID := kernel.NewUUID(), kernel.NewUUID()

	require.NoError(t, repo.AddAll(ctx, []*claim.Claim{newClaim(t, orderID, itemID, kernel.NewUUID(), kernel.NewUUID())}))

	err := repo.AddAll(ctx, []*claim.Claim{newClaim(t, orderID, itemID, kernel.NewUUID(), kernel.NewUUID())})
	require.ErrorIs(t, err, ports.ErrItemAlreadyClaimed)

	require.NoError(t, repo.AddAll(ctx, nil))
}

func TestDeleteAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := claimrepo.NewGormClaimRepository(testdb.SQLite(t))
	worker, session := kernel.NewUUID(), kernel.NewUUID()
	orderA, orderB := kernel.NewUUID(), kernel.NewUUID()
	itemA1, itemA2, itemB := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	require.NoError(t, repo.AddAll(ctx, []*claim.Claim{
		newClaim(t, orderA, itemA1, worker, session),
		newClaim(t, orderA, itemA2, worker, session),
		newClaim(t, orderB, itemB, worker, session),
	}))

	orders, err := repo.OrderIDsBySession(ctx, session)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	n, err := repo.DeleteByItem(ctx, itemB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByWorker(ctx, orderA, kernel.NewUUID())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteByWorker(ctx, orderA, worker)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	orders, err = repo.OrderIDsBySession(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
