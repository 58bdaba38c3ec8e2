package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrSetCourierOfflineCommandIsNotConstructed = errors.New(
	"SetCourierOfflineCommand must be created via NewSetCourierOfflineCommand constructor",
)

// SetCourierOfflineCommand represents a courier going offline. A courier
// holding a pending offer or an active order cannot go offline.
type SetCourierOfflineCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewSetCourierOfflineCommand creates a command for a courier going offline.
func NewSetCourierOfflineCommand(courierID kernel.UUID) (SetCourierOfflineCommand, error) {
	cmd := SetCourierOfflineCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setCourierID(courierID); err != nil {
		return SetCourierOfflineCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSetCourierOfflineCommandIsNotConstructed if validation fails.
func (c SetCourierOfflineCommand) Validate() error {
	return c.guard.Validate(ErrSetCourierOfflineCommandIsNotConstructed)
}

// CourierID returns the identifier of the courier.
func (c SetCourierOfflineCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *SetCourierOfflineCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
