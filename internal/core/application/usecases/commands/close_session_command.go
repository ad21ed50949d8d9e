package commands

import (
	"errors"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/guard"
)

var ErrCloseSessionCommandIsNotConstructed = errors.New(
	"CloseSessionCommand must be created via NewCloseSessionCommand constructor",
)

// CloseSessionCommand ends a session and hands its claimed work back to the kitchen.
type CloseSessionCommand struct {
	sessionID kernel.UUID
	workerID  *kernel.UUID

	guard guard.ConstructorGuard
}

// NewCloseSessionCommand builds the command. A non-nil workerID restricts the
// close to that worker's own session.
func NewCloseSessionCommand(sessionID kernel.UUID, workerID *kernel.UUID) (CloseSessionCommand, error) {
	if err := sessionID.Validate(); err != nil {
		return CloseSessionCommand{}, err
	}
	if workerID != nil {
		if err := workerID.Validate(); err != nil {
			return CloseSessionCommand{}, err
		}
	}

	return CloseSessionCommand{
		sessionID: sessionID,
		workerID:  workerID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CloseSessionCommand) Validate() error {
	return c.guard.Validate(ErrCloseSessionCommandIsNotConstructed)
}

func (c CloseSessionCommand) SessionID() kernel.UUID {
	return c.sessionID
}

func (c CloseSessionCommand) WorkerID() *kernel.UUID {
	return c.workerID
}
