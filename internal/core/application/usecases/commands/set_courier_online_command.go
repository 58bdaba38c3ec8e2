package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrSetCourierOnlineCommandIsNotConstructed = errors.New(
	"SetCourierOnlineCommand must be created via NewSetCourierOnlineCommand constructor",
)

// SetCourierOnlineCommand represents a courier going online. The first
// online call for an unknown courier also registers them, so the command
// carries the courier's profile alongside the id.
type SetCourierOnlineCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	name      string
	vehicle   courier.VehicleType

	guard guard.ConstructorGuard
}

// NewSetCourierOnlineCommand creates a command for a courier going online.
// Validates the id, name, and vehicle type.
func NewSetCourierOnlineCommand(courierID kernel.UUID, name string, vehicle courier.VehicleType) (SetCourierOnlineCommand, error) {
	cmd := SetCourierOnlineCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setName(name),
		cmd.setVehicle(vehicle),
	); err != nil {
		return SetCourierOnlineCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSetCourierOnlineCommandIsNotConstructed if validation fails.
func (c SetCourierOnlineCommand) Validate() error {
	return c.guard.Validate(ErrSetCourierOnlineCommandIsNotConstructed)
}

// CourierID returns the identifier of the courier.
func (c SetCourierOnlineCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Name returns the courier's display name.
func (c SetCourierOnlineCommand) Name() string {
	return c.name
}

// Vehicle returns the courier's vehicle type.
func (c SetCourierOnlineCommand) Vehicle() courier.VehicleType {
	return c.vehicle
}

func (c *SetCourierOnlineCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

func (c *SetCourierOnlineCommand) setName(name string) error {
	if name == "" {
		return courier.ErrNameIsRequired
	}

	c.name = name
	return nil
}

func (c *SetCourierOnlineCommand) setVehicle(vehicle courier.VehicleType) error {
	if err := vehicle.Validate(); err != nil {
		return err
	}

	c.vehicle = vehicle
	return nil
}
