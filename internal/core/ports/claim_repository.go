package ports

import (
	"context"

	"kitchen/internal/core/domain/model/claim"
	"kitchen/internal/core/domain/model/kernel"
)

// ClaimRepository persists claim records. Storage keeps at most one claim per item.
type ClaimRepository interface {
	// AddAll inserts the claims; a duplicate item yields ErrItemAlreadyClaimed.
	AddAll(ctx context.Context, claims []*claim.Claim) error

	// DeleteByWorker removes the worker's claims on the order.
	DeleteByWorker(ctx context.Context, orderID, workerID kernel.UUID) (int64, error)

	// DeleteByItem removes the claim on the item, if any.
	DeleteByItem(ctx context.Context, itemID kernel.UUID) (int64, error)

	// OrderIDsBySession lists the orders with items claimed under the session.
	OrderIDsBySession(ctx context.Context, sessionID kernel.UUID) ([]kernel.UUID, error)
}
