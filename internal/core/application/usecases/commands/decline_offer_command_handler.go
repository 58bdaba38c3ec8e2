package commands

import (
	"context"
)

// DeclineOfferCommandHandler processes courier refusals. The dispatcher
// resolves the offer, releases the courier, and advances to the next
// candidate on its own.
type DeclineOfferCommandHandler struct {
	dispatcher Dispatcher
}

// NewDeclineOfferCommandHandler creates a handler for offer refusals.
func NewDeclineOfferCommandHandler(dispatcher Dispatcher) DeclineOfferCommandHandler {
	return DeclineOfferCommandHandler{
		dispatcher: dispatcher,
	}
}

// Handle processes the refusal. A stale or mismatched response surfaces as
// the dispatcher's error and changes nothing.
func (h DeclineOfferCommandHandler) Handle(ctx context.Context, cmd DeclineOfferCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.dispatcher.Decline(ctx, cmd.OfferID(), cmd.CourierID())
}
