package session

import (
	"fmt"

	"kitchen/internal/pkg/errs"
)

// Status tells whether a worker session may hold claims.
type Status int

const (
	Unknown Status = iota
	Active
	Inactive
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	default:
		return "unknown"
	}
}

func (s Status) Validate() error {
	if s != Active && s != Inactive {
		return errs.NewValueIsInvalidErrorWithCause("session status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// ParseStatus maps the persisted representation back to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "active":
		return Active, nil
	case "inactive":
		return Inactive, nil
	default:
		return Unknown, errs.NewValueIsInvalidErrorWithCause("session status is invalid", fmt.Errorf("%q is not a valid status", s))
	}
}
