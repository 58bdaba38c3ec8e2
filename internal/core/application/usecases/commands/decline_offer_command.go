package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrDeclineOfferCommandIsNotConstructed = errors.New(
	"DeclineOfferCommand must be created via NewDeclineOfferCommand constructor",
)

// DeclineOfferCommand represents a courier declining a pending offer.
// Declining moves the dispatch loop on to the next candidate immediately
// instead of waiting out the offer window.
type DeclineOfferCommand struct { //nolint:recvcheck //using for validation
	offerID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewDeclineOfferCommand creates a command for a courier's refusal of an
// offer. Validates both identifiers.
func NewDeclineOfferCommand(offerID kernel.UUID, courierID kernel.UUID) (DeclineOfferCommand, error) {
	cmd := DeclineOfferCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		cmd.setCourierID(courierID),
	); err != nil {
		return DeclineOfferCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrDeclineOfferCommandIsNotConstructed if validation fails.
func (c DeclineOfferCommand) Validate() error {
	return c.guard.Validate(ErrDeclineOfferCommandIsNotConstructed)
}

// OfferID returns the identifier of the offer being declined.
func (c DeclineOfferCommand) OfferID() kernel.UUID {
	return c.offerID
}

// CourierID returns the identifier of the declining courier.
func (c DeclineOfferCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *DeclineOfferCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func (c *DeclineOfferCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
