package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptOfferCommandIsNotConstructed = errors.New(
	"AcceptOfferCommand must be created via NewAcceptOfferCommand constructor",
)

// AcceptOfferCommand represents a courier accepting a pending offer.
//
// Example:
//
//	cmd, err := NewAcceptOfferCommand(offerID, courierID)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
//	if errors.Is(err, offer.ErrStaleOffer) {
//	    // The offer expired or went to somebody else; nothing changed.
//	}
type AcceptOfferCommand struct { //nolint:recvcheck //using for validation
	offerID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptOfferCommand creates a command for a courier's acceptance of an
// offer. Validates both identifiers.
func NewAcceptOfferCommand(offerID kernel.UUID, courierID kernel.UUID) (AcceptOfferCommand, error) {
	cmd := AcceptOfferCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOfferID(offerID),
		cmd.setCourierID(courierID),
	); err != nil {
		return AcceptOfferCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAcceptOfferCommandIsNotConstructed if validation fails.
func (c AcceptOfferCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOfferCommandIsNotConstructed)
}

// OfferID returns the identifier of the offer being accepted.
func (c AcceptOfferCommand) OfferID() kernel.UUID {
	return c.offerID
}

// CourierID returns the identifier of the accepting courier.
func (c AcceptOfferCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *AcceptOfferCommand) setOfferID(offerID kernel.UUID) error {
	if err := offerID.Validate(); err != nil {
		return err
	}

	c.offerID = offerID
	return nil
}

func (c *AcceptOfferCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
