package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrDispatchOrderCommandIsNotConstructed = errors.New(
	"DispatchOrderCommand must be created via NewDispatchOrderCommand constructor",
)

// DispatchOrderCommand triggers the offer protocol for a pending order.
// Without an explicit order id, the handler picks the oldest pending order,
// which is how the periodic dispatch sweep operates.
//
// Example:
//
//	cmd := NewDispatchOrderCommand()
//	handler := NewDispatchOrderCommandHandler(uowFactory, dispatcher)
//	err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrNoOrderFound) {
//	    // nothing pending, try again on the next tick
//	}
type DispatchOrderCommand struct {
	orderID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewDispatchOrderCommand creates a command that dispatches the oldest
// pending order.
func NewDispatchOrderCommand() DispatchOrderCommand {
	return DispatchOrderCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// NewDispatchOrderCommandForOrder creates a command that dispatches a
// specific pending order.
func NewDispatchOrderCommandForOrder(orderID kernel.UUID) (DispatchOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return DispatchOrderCommand{}, err
	}
	return DispatchOrderCommand{
		orderID: &orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through a constructor.
// Returns ErrDispatchOrderCommandIsNotConstructed if validation fails.
func (c DispatchOrderCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOrderCommandIsNotConstructed)
}

// OrderID returns the targeted order id, or nil for the oldest pending.
func (c DispatchOrderCommand) OrderID() *kernel.UUID {
	return c.orderID
}
