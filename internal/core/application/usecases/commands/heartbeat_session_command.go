package commands

import (
	"errors"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/guard"
)

var ErrHeartbeatSessionCommandIsNotConstructed = errors.New(
	"HeartbeatSessionCommand must be created via NewHeartbeatSessionCommand constructor",
)

// HeartbeatSessionCommand keeps a session alive.
type HeartbeatSessionCommand struct {
	sessionID kernel.UUID

	guard guard.ConstructorGuard
}

func NewHeartbeatSessionCommand(sessionID kernel.UUID) (HeartbeatSessionCommand, error) {
	if err := sessionID.Validate(); err != nil {
		return HeartbeatSessionCommand{}, err
	}

	return HeartbeatSessionCommand{
		sessionID: sessionID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c HeartbeatSessionCommand) Validate() error {
	return c.guard.Validate(ErrHeartbeatSessionCommandIsNotConstructed)
}

func (c HeartbeatSessionCommand) SessionID() kernel.UUID {
	return c.sessionID
}
