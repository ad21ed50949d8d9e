// Package claim holds the record of a worker holding an order item. A claim exists
// exactly while its item is claimed; storage keeps at most one claim per item.
package claim

import (
	"errors"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/errs"
)

var ErrClaimIsNotConstructed = errors.New("Claim must be created via NewClaim")

type Claim struct {
	orderID   kernel.UUID
	itemID    kernel.UUID
	workerID  kernel.UUID
	sessionID kernel.UUID
	claimedAt time.Time

	isConstructed bool
}

func NewClaim(orderID, itemID, workerID, sessionID kernel.UUID, claimedAt time.Time) (*Claim, error) {
	if err := errors.Join(
		required("order id", orderID),
		required("item id", itemID),
		required("worker id", workerID),
		required("session id", sessionID),
	); err != nil {
		return nil, err
	}

	return &Claim{
		orderID:       orderID,
		itemID:        itemID,
		workerID:      workerID,
		sessionID:     sessionID,
		claimedAt:     claimedAt,
		isConstructed: true,
	}, nil
}

func (c *Claim) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrClaimIsNotConstructed
	}
	return nil
}

func (c *Claim) OrderID() kernel.UUID   { return c.orderID }
func (c *Claim) ItemID() kernel.UUID    { return c.itemID }
func (c *Claim) WorkerID() kernel.UUID  { return c.workerID }
func (c *Claim) SessionID() kernel.UUID { return c.sessionID }
func (c *Claim) ClaimedAt() time.Time   { return c.claimedAt }

func required(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}
