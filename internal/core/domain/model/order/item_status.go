package order

import (
	"fmt"

	"kitchen/internal/pkg/errs"
)

// ItemStatus is the state of a single order item.
//
//	ItemPending ──claim──> ItemClaimed ──complete──> ItemCompleted
//	     ^                     │
//	     └──────release────────┘
type ItemStatus int

const (
	ItemUnknown ItemStatus = iota
	ItemPending
	ItemClaimed
	ItemCompleted
)

func getItemStatusStrings() map[ItemStatus]string {
	return map[ItemStatus]string{
		ItemUnknown:   "unknown",
		ItemPending:   "pending",
		ItemClaimed:   "claimed",
		ItemCompleted: "completed",
	}
}

// ParseItemStatus maps the persisted representation back to an ItemStatus.
func ParseItemStatus(s string) (ItemStatus, error) {
	for status, str := range getItemStatusStrings() {
		if status != ItemUnknown && str == s {
			return status, nil
		}
	}
	return ItemUnknown, errs.NewValueIsInvalidErrorWithCause("item status is invalid", fmt.Errorf("%q is not a valid item status", s))
}

func (s ItemStatus) Validate() error {
	if s <= ItemUnknown || s > ItemCompleted {
		return errs.NewValueIsInvalidErrorWithCause("item status is invalid", fmt.Errorf("%d is not a valid item status", s))
	}
	return nil
}

func (s ItemStatus) String() string {
	if str, ok := getItemStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}
