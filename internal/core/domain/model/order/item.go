package order

import (
	"errors"
	"fmt"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MaxInstructionsLength bounds the free-text special instructions on orders and items.
const MaxInstructionsLength = 500

var (
	ErrItemIsNotConstructed = errors.New("Item must be created via NewItem or RestoreItem")

	// ErrItemNotClaimable is returned when claiming an item that is not pending.
	ErrItemNotClaimable = errors.New("item is not claimable")

	// ErrNotItemOwner is returned when a worker touches an item it does not hold.
	ErrNotItemOwner = errors.New("item is claimed by another worker")
)

// Item is a line of an Order. Items carry no restaurant of their own; they are
// reachable only through the order that owns them.
type Item struct {
	id           kernel.UUID
	orderID      kernel.UUID
	menuItemID   kernel.UUID
	quantity     int
	unitPrice    decimal.Decimal
	instructions string
	status       ItemStatus
	claimedBy    *kernel.UUID
	claimedAt    *time.Time
	completedAt  *time.Time

	isConstructed bool
}

// NewItem creates a pending, unclaimed item. The order id is assigned when the item is
// attached to an Order through NewOrder.
//
// Example:
//
//	item, err := order.NewItem(kernel.NewUUID(), burgerID, 2, decimal.RequireFromString("9.50"), "no onions")
func NewItem(id, menuItemID kernel.UUID, quantity int, unitPrice decimal.Decimal, instructions string) (*Item, error) {
	item := &Item{
		status:        ItemPending,
		isConstructed: true,
	}

	if err := errors.Join(
		item.setID(id),
		item.setMenuItemID(menuItemID),
		item.setQuantity(quantity),
		item.setUnitPrice(unitPrice),
		item.setInstructions(instructions),
	); err != nil {
		return nil, err
	}

	return item, nil
}

// ItemState carries persisted item fields into RestoreItem.
type ItemState struct {
	ID           kernel.UUID
	OrderID      kernel.UUID
	MenuItemID   kernel.UUID
	Quantity     int
	UnitPrice    decimal.Decimal
	Instructions string
	Status       ItemStatus
	ClaimedBy    *kernel.UUID
	ClaimedAt    *time.Time
	CompletedAt  *time.Time
}

// RestoreItem rebuilds an item from storage and checks the claim invariant:
// a claimed item has an owner, a pending item has none.
func RestoreItem(state ItemState) (*Item, error) {
	item, err := NewItem(state.ID, state.MenuItemID, state.Quantity, state.UnitPrice, state.Instructions)
	if err != nil {
		return nil, err
	}

	if err = errors.Join(state.OrderID.Validate(), state.Status.Validate()); err != nil {
		return nil, err
	}

	if state.Status == ItemClaimed && state.ClaimedBy == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("claimed by", errors.New("claimed item has no owner"))
	}
	if state.Status == ItemPending && state.ClaimedBy != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("claimed by", errors.New("pending item has an owner"))
	}

	item.orderID = state.OrderID
	item.status = state.Status
	item.claimedBy = state.ClaimedBy
	item.claimedAt = state.ClaimedAt
	item.completedAt = state.CompletedAt
	return item, nil
}

func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

func (i *Item) ID() kernel.UUID { return i.id }
func (i *Item) OrderID() kernel.UUID { return i.orderID }
func (i *Item) MenuItemID() kernel.UUID { return i.menuItemID }
func (i *Item) Quantity() int { return i.quantity }
func (i *Item) UnitPrice() decimal.Decimal { return i.unitPrice }
func (i *Item) Instructions() string { return i.instructions }
func (i *Item) Status() ItemStatus { return i.status }
func (i *Item) ClaimedBy() *kernel.UUID { return i.claimedBy }
func (i *Item) ClaimedAt() *time.Time { return i.claimedAt }
func (i *Item) CompletedAt() *time.Time { return i.completedAt }
func (i *Item) Subtotal() decimal.Decimal { return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity))) }

// IsHeldBy reports whether the worker currently holds the claim on the item.
func (i *Item) IsHeldBy(workerID kernel.UUID) bool {
	return i.status == ItemClaimed && i.claimedBy != nil && i.claimedBy.IsEqual(workerID)
}

// IsCompletedBy reports whether the worker finished the item.
func (i *Item) IsCompletedBy(workerID kernel.UUID) bool {
	return i.status == ItemCompleted && i.claimedBy != nil && i.claimedBy.IsEqual(workerID)
}

// Claim hands a pending item to the worker.
func (i *Item) Claim(workerID kernel.UUID, now time.Time) error {
	if err := workerID.Validate(); err != nil {
		return err
	}
	if i.status != ItemPending {
		return fmt.Errorf("%w: item %s is %s", ErrItemNotClaimable, i.id, i.status)
	}

	i.status = ItemClaimed
	i.claimedBy = &workerID
	i.claimedAt = &now
	return nil
}

// Release returns an item held by the worker to the pending pool.
func (i *Item) Release(workerID kernel.UUID) error {
	if !i.IsHeldBy(workerID) {
		return fmt.Errorf("%w: item %s", ErrNotItemOwner, i.id)
	}

	i.status = ItemPending
	i.claimedBy = nil
	i.claimedAt = nil
	return nil
}

// Complete marks an item held by the worker as done. The owner stays recorded.
func (i *Item) Complete(workerID kernel.UUID, now time.Time) error {
	if !i.IsHeldBy(workerID) {
		return fmt.Errorf("%w: item %s", ErrNotItemOwner, i.id)
	}

	i.status = ItemCompleted
	i.completedAt = &now
	return nil
}

func (i *Item) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Item) setMenuItemID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("menu item id", err)
	}
	i.menuItemID = id
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity is invalid", fmt.Errorf("%d is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("unit price is invalid", fmt.Errorf("%s is negative", price))
	}
	i.unitPrice = price
	return nil
}

func (i *Item) setInstructions(instructions string) error {
	if len(instructions) > MaxInstructionsLength {
		return errs.NewValueIsOutOfRangeError("instructions length", len(instructions), 0, MaxInstructionsLength)
	}
	i.instructions = instructions
	return nil
}
