package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/guard"
)

var (
	ErrSweepStaleCouriersCommandIsNotConstructed = errors.New(
		"SweepStaleCouriersCommand must be created via NewSweepStaleCouriersCommand constructor",
	)
	ErrStaleTTLIsInvalid = errors.New("staleTTL must be greater than 0")
)

// SweepStaleCouriersCommand triggers a sweep that takes couriers offline
// when their latest location sample is older than the TTL. A courier whose
// device stopped reporting should not keep receiving offers.
type SweepStaleCouriersCommand struct { //nolint:recvcheck //using for validation
	staleTTL time.Duration

	guard guard.ConstructorGuard
}

// NewSweepStaleCouriersCommand creates a command for one stale sweep pass.
func NewSweepStaleCouriersCommand(staleTTL time.Duration) (SweepStaleCouriersCommand, error) {
	cmd := SweepStaleCouriersCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setStaleTTL(staleTTL); err != nil {
		return SweepStaleCouriersCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSweepStaleCouriersCommandIsNotConstructed if validation fails.
func (c SweepStaleCouriersCommand) Validate() error {
	return c.guard.Validate(ErrSweepStaleCouriersCommandIsNotConstructed)
}

// StaleTTL returns the maximum age of a location sample before the courier
// is considered stale.
func (c SweepStaleCouriersCommand) StaleTTL() time.Duration {
	return c.staleTTL
}

func (c *SweepStaleCouriersCommand) setStaleTTL(staleTTL time.Duration) error {
	if staleTTL <= 0 {
		return ErrStaleTTLIsInvalid
	}

	c.staleTTL = staleTTL
	return nil
}
