package commands

import (
	"errors"

	"kitchen/internal/pkg/guard"
)

var ErrReapStaleSessionsCommandIsNotConstructed = errors.New(
	"ReapStaleSessionsCommand must be created via NewReapStaleSessionsCommand constructor",
)

// ReapStaleSessionsCommand closes every session that missed its liveness window.
type ReapStaleSessionsCommand struct {
	guard guard.ConstructorGuard
}

func NewReapStaleSessionsCommand() ReapStaleSessionsCommand {
	return ReapStaleSessionsCommand{guard: guard.NewConstructorGuard()}
}

func (c ReapStaleSessionsCommand) Validate() error {
	return c.guard.Validate(ErrReapStaleSessionsCommandIsNotConstructed)
}
