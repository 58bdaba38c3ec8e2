package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCompleteOrderCommandIsNotConstructed = errors.New(
	"CompleteOrderCommand must be created via NewCompleteOrderCommand constructor",
)

// CompleteOrderCommand represents the assigned courier reporting delivery.
// Completion releases the courier back to Available and stops tracking.
type CompleteOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCompleteOrderCommand creates a command for a delivery report.
func NewCompleteOrderCommand(orderID kernel.UUID, courierID kernel.UUID) (CompleteOrderCommand, error) {
	cmd := CompleteOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCourierID(courierID),
	); err != nil {
		return CompleteOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCompleteOrderCommandIsNotConstructed if validation fails.
func (c CompleteOrderCommand) Validate() error {
	return c.guard.Validate(ErrCompleteOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the delivered order.
func (c CompleteOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the identifier of the delivering courier.
func (c CompleteOrderCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *CompleteOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CompleteOrderCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
