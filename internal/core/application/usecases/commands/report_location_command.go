package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrReportLocationCommandIsNotConstructed = errors.New(
		"ReportLocationCommand must be created via NewReportLocationCommand constructor",
	)
	ErrSampledAtIsRequired = errors.New("sampledAt is required")
)

// ReportLocationCommand represents a location sample reported by a courier
// device. Samples carry a client-side timestamp; ingress applies them with
// last-write-wins semantics, so reports may arrive out of order.
type ReportLocationCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	location  kernel.Location
	sampledAt time.Time

	guard guard.ConstructorGuard
}

// NewReportLocationCommand creates a command for one location sample.
// Validates the courier id, the coordinates, and the sample timestamp.
func NewReportLocationCommand(courierID kernel.UUID, location kernel.Location, sampledAt time.Time) (ReportLocationCommand, error) {
	cmd := ReportLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setLocation(location),
		cmd.setSampledAt(sampledAt),
	); err != nil {
		return ReportLocationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrReportLocationCommandIsNotConstructed if validation fails.
func (c ReportLocationCommand) Validate() error {
	return c.guard.Validate(ErrReportLocationCommandIsNotConstructed)
}

// CourierID returns the identifier of the reporting courier.
func (c ReportLocationCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Location returns the sampled position.
func (c ReportLocationCommand) Location() kernel.Location {
	return c.location
}

// SampledAt returns the client-side timestamp of the sample.
func (c ReportLocationCommand) SampledAt() time.Time {
	return c.sampledAt
}

func (c *ReportLocationCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

func (c *ReportLocationCommand) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}

func (c *ReportLocationCommand) setSampledAt(sampledAt time.Time) error {
	if sampledAt.IsZero() {
		return ErrSampledAtIsRequired
	}

	c.sampledAt = sampledAt
	return nil
}
