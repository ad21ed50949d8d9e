package order

import (
	"errors"
	"fmt"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MaxNumberLength bounds the display order number.
const MaxNumberLength = 32

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderNotClaimable is returned when an order has nothing left for the kitchen.
	ErrOrderNotClaimable = errors.New("order is not claimable")

	// ErrClaimedByOther is returned when another worker already holds an item of the order.
	ErrClaimedByOther = errors.New("order is already being prepared by another worker")
)

// Order is the aggregate root of a customer's checkout: a table's order with its items.
//
// Order follows these invariants:
//   - Must have valid order, restaurant and table identifiers
//   - Must have at least one item, and every item belongs to this order
//   - Total equals the sum of quantity times unit price over the items
//   - Status changes follow the Status state machine
//
// Concurrent claims are not arbitrated here. The aggregate plans a mutation on a
// snapshot; repositories apply it with guarded writes and report whether it won.
type Order struct {
	id           kernel.UUID
	restaurantID kernel.UUID
	tableID      kernel.UUID
	number       string
	total        decimal.Decimal
	status       Status
	instructions string
	createdAt    time.Time
	updatedAt    time.Time
	items        []*Item

	isConstructed bool
}

// NewOrder creates a pending order from freshly built items.
//
// Parameters:
//   - id, restaurantID, tableID: identifiers (must be valid UUIDs)
//   - number: human-readable order number shown on kitchen displays
//   - instructions: optional special instructions for the whole order
//   - items: at least one item built with NewItem
//   - now: creation time
//
// Example:
//
//	burger, _ := order.NewItem(kernel.NewUUID(), burgerID, 2, decimal.RequireFromString("9.50"), "")
//	o, err := order.NewOrder(kernel.NewUUID(), restaurantID, tableID, "ORD-1042", "", []*order.Item{burger}, time.Now())
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(
	id, restaurantID, tableID kernel.UUID,
	number, instructions string,
	items []*Item,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setRestaurantID(restaurantID),
		o.setTableID(tableID),
		o.setNumber(number),
		o.setInstructions(instructions),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	for _, item := range o.items {
		item.orderID = o.id
		o.total = o.total.Add(item.Subtotal())
	}

	return o, nil
}

// State carries persisted order fields into RestoreOrder.
type State struct {
	ID           kernel.UUID
	RestaurantID kernel.UUID
	TableID      kernel.UUID
	Number       string
	Total        decimal.Decimal
	Status       Status
	Instructions string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []*Item
}

// RestoreOrder rebuilds an order loaded from storage. The stored total is kept as is;
// prices may have been adjusted after checkout.
func RestoreOrder(state State) (*Order, error) {
	o := &Order{
		total:         state.Total,
		createdAt:     state.CreatedAt,
		updatedAt:     state.UpdatedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(state.ID),
		o.setRestaurantID(state.RestaurantID),
		o.setTableID(state.TableID),
		o.setNumber(state.Number),
		o.setInstructions(state.Instructions),
		o.setItems(state.Items),
		state.Status.Validate(),
	); err != nil {
		return nil, err
	}

	for _, item := range o.items {
		if !item.orderID.IsEqual(o.id) {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"items",
				fmt.Errorf("item %s belongs to order %s", item.id, item.orderID),
			)
		}
	}

	o.status = state.Status
	return o, nil
}

// Validate ensures the Order was built through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) RestaurantID() kernel.UUID {
	return o.restaurantID
}

func (o *Order) TableID() kernel.UUID {
	return o.tableID
}

func (o *Order) Number() string {
	return o.number
}

func (o *Order) Total() decimal.Decimal {
	return o.total
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) Instructions() string {
	return o.instructions
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Items returns a copy of the item slice; the items themselves are shared.
func (o *Order) Items() []*Item {
	items := make([]*Item, len(o.items))
	copy(items, o.items)
	return items
}

// Item looks up an item of this order by id.
func (o *Order) Item(id kernel.UUID) (*Item, bool) {
	for _, item := range o.items {
		if item.id.IsEqual(id) {
			return item, true
		}
	}
	return nil, false
}

// ItemStatuses lists the status of every item, in item order.
func (o *Order) ItemStatuses() []ItemStatus {
	statuses := make([]ItemStatus, 0, len(o.items))
	for _, item := range o.items {
		statuses = append(statuses, item.status)
	}
	return statuses
}

// BelongsTo reports whether the order was placed at the restaurant.
func (o *Order) BelongsTo(restaurantID kernel.UUID) bool {
	return o.restaurantID.IsEqual(restaurantID)
}

// AllItemsPending reports whether nobody holds or finished any item.
func (o *Order) AllItemsPending() bool {
	for _, item := range o.items {
		if item.status != ItemPending {
			return false
		}
	}
	return true
}

// HeldItemIDs returns the ids of items the worker currently holds.
func (o *Order) HeldItemIDs(workerID kernel.UUID) []kernel.UUID {
	var ids []kernel.UUID
	for _, item := range o.items {
		if item.IsHeldBy(workerID) {
			ids = append(ids, item.id)
		}
	}
	return ids
}

// Claim hands every pending item to the worker and moves the order to Preparing.
// It returns the ids of the items that changed hands; an empty result with a nil
// error means the worker already holds everything still open.
//
// Claim fails with ErrOrderNotClaimable when the order is finished or nothing is
// left for the worker, and with ErrClaimedByOther when any item is held by
// someone else. On failure the order is left untouched.
//
// Example:
//
//	ids, err := o.Claim(workerID, now)
//	if errors.Is(err, order.ErrClaimedByOther) {
//	    return ClaimConflict, nil
//	}
func (o *Order) Claim(workerID kernel.UUID, now time.Time) ([]kernel.UUID, error) {
	if err := workerID.Validate(); err != nil {
		return nil, err
	}
	if o.status.IsFinished() {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotClaimable, o.id, o.status)
	}

	var pending []*Item
	holdsAny := false
	for _, item := range o.items {
		switch {
		case item.IsHeldBy(workerID):
			holdsAny = true
		case item.status == ItemClaimed:
			return nil, fmt.Errorf("%w: item %s", ErrClaimedByOther, item.id)
		case item.status == ItemPending:
			pending = append(pending, item)
		}
	}

	if len(pending) == 0 {
		if holdsAny {
			return []kernel.UUID{}, nil
		}
		return nil, fmt.Errorf("%w: order %s has no open items", ErrOrderNotClaimable, o.id)
	}

	next, err := o.status.Prepare()
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(pending))
	for _, item := range pending {
		if err = item.Claim(workerID, now); err != nil {
			return nil, err
		}
		ids = append(ids, item.id)
	}

	o.status = next
	o.updatedAt = now
	return ids, nil
}

// ChangeStatus moves the order to next through the matching Status transition.
// Setting the current status again is a no-op.
func (o *Order) ChangeStatus(next Status, now time.Time) error {
	if next == o.status {
		return nil
	}

	var (
		changed Status
		err     error
	)
	switch next {
	case Pending:
		changed, err = o.status.Reset()
	case Preparing:
		changed, err = o.status.Prepare()
	case Ready:
		changed, err = o.status.MarkReady()
	case Served:
		changed, err = o.status.Serve()
	case Cancelled:
		changed, err = o.status.Cancel()
	default:
		err = next.Validate()
		if err == nil {
			err = transitionError(o.status, "change to "+next.String())
		}
	}
	if err != nil {
		return err
	}

	o.status = changed
	o.updatedAt = now
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurant id", err)
	}
	o.restaurantID = id
	return nil
}

func (o *Order) setTableID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("table id", err)
	}
	o.tableID = id
	return nil
}

func (o *Order) setNumber(number string) error {
	if number == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	if len(number) > MaxNumberLength {
		return errs.NewValueIsOutOfRangeError("order number length", len(number), 1, MaxNumberLength)
	}
	o.number = number
	return nil
}

func (o *Order) setInstructions(instructions string) error {
	if len(instructions) > MaxInstructionsLength {
		return errs.NewValueIsOutOfRangeError("instructions length", len(instructions), 0, MaxInstructionsLength)
	}
	o.instructions = instructions
	return nil
}

func (o *Order) setItems(items []*Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = items
	return nil
}
