package order

import (
	"fmt"

	"kitchen/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Preparing ──> Ready ──> Served
//	   │  <──────┘
//	   └──> Cancelled
//
// Preparing falls back to Pending only when every item is pending again.
// Served and Cancelled are staff transitions; the rest are derived from items.
type Status int

const (
	// Unknown catches uninitialised Status values.
	Unknown Status = iota

	// Pending orders are placed but no item has been picked up yet.
	Pending

	// Preparing orders have at least one item claimed or completed.
	Preparing

	// Ready orders have every item completed.
	Ready

	// Served is final; staff handed the order to the table.
	Served

	// Cancelled is final; only pending orders can be cancelled.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Preparing: "preparing",
		Ready:     "ready",
		Served:    "served",
		Cancelled: "cancelled",
	}
}

// ParseStatus maps the persisted representation back to a Status.
//
// Example:
//
//	status, err := order.ParseStatus(dto.Status)
//	if err != nil {
//	    return nil, err
//	}
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the Status is one of the known lifecycle states.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted, lower-case name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsActive reports whether the kitchen still has work on the order.
func (s Status) IsActive() bool {
	return s == Pending || s == Preparing
}

// IsFinished reports whether no item can be claimed anymore.
func (s Status) IsFinished() bool {
	return s == Ready || s == Served || s == Cancelled
}

// Prepare transitions Pending to Preparing. Preparing stays Preparing so that
// several workers can pick up items of the same order one after another.
func (s Status) Prepare() (Status, error) {
	if s != Pending && s != Preparing {
		return 0, transitionError(s, "prepare")
	}
	return Preparing, nil
}

// Reset transitions Preparing back to Pending once all items are released.
func (s Status) Reset() (Status, error) {
	if s != Preparing && s != Pending {
		return 0, transitionError(s, "reset")
	}
	return Pending, nil
}

// MarkReady transitions an active order to Ready.
func (s Status) MarkReady() (Status, error) {
	if !s.IsActive() {
		return 0, transitionError(s, "mark ready")
	}
	return Ready, nil
}

// Serve transitions Ready to Served.
func (s Status) Serve() (Status, error) {
	if s != Ready {
		return 0, transitionError(s, "serve")
	}
	return Served, nil
}

// Cancel transitions Pending to Cancelled. Orders already in the kitchen cannot be cancelled.
func (s Status) Cancel() (Status, error) {
	if s != Pending {
		return 0, transitionError(s, "cancel")
	}
	return Cancelled, nil
}

func transitionError(s Status, action string) error {
	return errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%s is not a valid status to %s", s.String(), action),
	)
}
