package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to register a new delivery order.
// Encapsulates the order identity and its pickup and dropoff coordinates.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewCreateOrderCommand(orderID, pickup, dropoff)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
//	fmt.Printf("Order %s registered and awaiting dispatch", orderID)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	pickup  kernel.Location
	dropoff kernel.Location

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new delivery order.
// Validates that the order ID and both locations are valid.
// Returns an error if any validation fails.
func NewCreateOrderCommand(orderID kernel.UUID, pickup kernel.Location, dropoff kernel.Location) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setPickup(pickup),
		orderCommand.setDropoff(dropoff),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Pickup returns the pickup location of the order.
func (c CreateOrderCommand) Pickup() kernel.Location {
	return c.pickup
}

// Dropoff returns the dropoff location of the order.
func (c CreateOrderCommand) Dropoff() kernel.Location {
	return c.dropoff
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setPickup(pickup kernel.Location) error {
	if err := pickup.Validate(); err != nil {
		return err
	}

	c.pickup = pickup
	return nil
}

func (c *CreateOrderCommand) setDropoff(dropoff kernel.Location) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}

	c.dropoff = dropoff
	return nil
}
