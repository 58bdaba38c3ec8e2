package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrMarkOrderPickedUpCommandIsNotConstructed = errors.New(
	"MarkOrderPickedUpCommand must be created via NewMarkOrderPickedUpCommand constructor",
)

// MarkOrderPickedUpCommand represents the assigned courier reporting that
// the package is collected. The tracking leg switches from pickup to
// dropoff on this transition.
type MarkOrderPickedUpCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewMarkOrderPickedUpCommand creates a command for a pickup report.
func NewMarkOrderPickedUpCommand(orderID kernel.UUID, courierID kernel.UUID) (MarkOrderPickedUpCommand, error) {
	cmd := MarkOrderPickedUpCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCourierID(courierID),
	); err != nil {
		return MarkOrderPickedUpCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrMarkOrderPickedUpCommandIsNotConstructed if validation fails.
func (c MarkOrderPickedUpCommand) Validate() error {
	return c.guard.Validate(ErrMarkOrderPickedUpCommandIsNotConstructed)
}

// OrderID returns the identifier of the picked up order.
func (c MarkOrderPickedUpCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the identifier of the reporting courier.
func (c MarkOrderPickedUpCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *MarkOrderPickedUpCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *MarkOrderPickedUpCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
