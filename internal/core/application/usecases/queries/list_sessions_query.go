package queries

import (
	"errors"
	"time"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/guard"
)

var ErrListSessionsQueryIsNotConstructed = errors.New(
	"ListSessionsQuery must be created via NewListSessionsQuery constructor",
)

// ListSessionsQuery lists the worker sessions of a restaurant.
type ListSessionsQuery struct {
	restaurantID kernel.UUID

	guard guard.ConstructorGuard
}

func NewListSessionsQuery(restaurantID kernel.UUID) (ListSessionsQuery, error) {
	if err := restaurantID.Validate(); err != nil {
		return ListSessionsQuery{}, err
	}
	return ListSessionsQuery{restaurantID: restaurantID, guard: guard.NewConstructorGuard()}, nil
}

func (q ListSessionsQuery) Validate() error {
	return q.guard.Validate(ErrListSessionsQueryIsNotConstructed)
}

func (q ListSessionsQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}

// SessionView is a session with its liveness computed at read time.
type SessionView struct {
	ID            kernel.UUID `json:"id"`
	WorkerID      kernel.UUID `json:"workerId"`
	Station       *string     `json:"station,omitempty"`
	Status        string      `json:"status"`
	LastHeartbeat time.Time   `json:"lastHeartbeat"`
	CreatedAt     time.Time   `json:"createdAt"`
	Live          bool        `json:"live"`
}
