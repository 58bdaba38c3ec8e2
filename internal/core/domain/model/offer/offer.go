package offer

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for offer operations.
var (
	// ErrOfferIsNotConstructed is returned when using an improperly initialized Offer.
	ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer constructor")
	// ErrStaleOffer is returned when a response arrives for an offer that has
	// already been resolved. Callers treat it as a no-op signal, not a failure.
	ErrStaleOffer = errors.New("offer is already resolved")
	// ErrCourierMismatch is returned when a courier responds to an offer
	// that was extended to somebody else.
	ErrCourierMismatch = errors.New("offer was extended to a different courier")
)

// Offer represents a single time-boxed proposal of an order to a courier.
// It is an entity that resolves exactly once: the first of accept, decline,
// or expiry wins, and every later attempt gets ErrStaleOffer. This makes
// the accept/expiry race safe to resolve at the domain level.
//
// Business rules:
//   - An offer belongs to exactly one order and one courier
//   - Only the courier the offer was extended to may accept or decline it
//   - Resolution is first-writer-wins; late responses are stale, not errors
//
// Example usage:
//
//	o, err := offer.NewOffer(kernel.NewUUID(), orderID, courierID, now, 15*time.Second)
//	if err != nil {
//	    // Handle construction error
//	}
//	if err := o.Accept(courierID, time.Now()); errors.Is(err, offer.ErrStaleOffer) {
//	    // Offer already expired or was declined; courier keeps waiting
//	}
type Offer struct {
	// id uniquely identifies the offer
	id kernel.UUID
	// orderID is the order being proposed
	orderID kernel.UUID
	// courierID is the courier the offer was extended to
	courierID kernel.UUID
	// status is the resolution state
	status Status
	// createdAt is when the offer was extended
	createdAt time.Time
	// expiresAt is the response deadline
	expiresAt time.Time
	// resolvedAt is when the offer resolved (nil while pending)
	resolvedAt *time.Time
	// guard ensures the offer was properly constructed
	guard guard.ConstructorGuard
}

// NewOffer creates a pending Offer for the given order and courier.
// The response deadline is createdAt plus ttl.
//
// Parameters:
//   - id: Unique identifier for the offer
//   - orderID: The order being proposed
//   - courierID: The courier receiving the proposal
//   - createdAt: The moment the offer is extended
//   - ttl: How long the courier has to respond (must be positive)
//
// Returns:
//   - *Offer: A pending offer
//   - error: Validation error if any parameter is invalid
func NewOffer(id kernel.UUID, orderID kernel.UUID, courierID kernel.UUID,
	createdAt time.Time, ttl time.Duration) (*Offer, error) {
	o := &Offer{
		status: StatusPending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setOrderID(orderID),
		o.setCourierID(courierID),
		o.setTimes(createdAt, ttl),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOffer reconstructs an Offer from persistent storage, including its
// resolution state. Use NewOffer for extending fresh offers.
func RestoreOffer(id kernel.UUID, orderID kernel.UUID, courierID kernel.UUID,
	status Status, createdAt time.Time, expiresAt time.Time,
	resolvedAt *time.Time) (*Offer, error) {
	o := &Offer{
		createdAt: createdAt,
		expiresAt: expiresAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setOrderID(orderID),
		o.setCourierID(courierID),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	if status.IsResolved() {
		if resolvedAt == nil {
			return nil, errs.NewValueIsRequiredError("resolvedAt")
		}
		at := *resolvedAt
		o.resolvedAt = &at
	}

	return o, nil
}

// Validate checks that the Offer was constructed via NewOffer or RestoreOffer.
// Returns ErrOfferIsNotConstructed otherwise. Should be called when
// receiving an Offer from external sources.
func (o *Offer) Validate() error {
	if o == nil {
		return ErrOfferIsNotConstructed
	}
	return o.guard.Validate(ErrOfferIsNotConstructed)
}

// ID returns the unique identifier of the offer.
func (o *Offer) ID() kernel.UUID {
	return o.id
}

// OrderID returns the identifier of the proposed order.
func (o *Offer) OrderID() kernel.UUID {
	return o.orderID
}

// CourierID returns the identifier of the courier the offer was extended to.
func (o *Offer) CourierID() kernel.UUID {
	return o.courierID
}

// Status returns the resolution state of the offer.
func (o *Offer) Status() Status {
	return o.status
}

// CreatedAt returns when the offer was extended.
func (o *Offer) CreatedAt() time.Time {
	return o.createdAt
}

// ExpiresAt returns the response deadline of the offer.
func (o *Offer) ExpiresAt() time.Time {
	return o.expiresAt
}

// ResolvedAt returns when the offer resolved, or nil while pending.
func (o *Offer) ResolvedAt() *time.Time {
	return o.resolvedAt
}

// Accept resolves the offer as accepted by the given courier.
//
// Returns:
//   - ErrStaleOffer if the offer already resolved (expired, declined, or
//     accepted earlier); the caller must not assign the order
//   - ErrCourierMismatch if courierID is not the offer's courier
func (o *Offer) Accept(courierID kernel.UUID, at time.Time) error {
	if !o.courierID.IsEqual(courierID) {
		return ErrCourierMismatch
	}
	return o.resolve(StatusAccepted, at)
}

// Decline resolves the offer as declined by the given courier.
//
// Returns:
//   - ErrStaleOffer if the offer already resolved
//   - ErrCourierMismatch if courierID is not the offer's courier
func (o *Offer) Decline(courierID kernel.UUID, at time.Time) error {
	if !o.courierID.IsEqual(courierID) {
		return ErrCourierMismatch
	}
	return o.resolve(StatusDeclined, at)
}

// Expire resolves the offer as expired. Returns ErrStaleOffer if a
// response got in first; the expiry timer then does nothing.
func (o *Offer) Expire(at time.Time) error {
	return o.resolve(StatusExpired, at)
}

// resolve applies the first-writer-wins resolution rule.
func (o *Offer) resolve(status Status, at time.Time) error {
	if o.status != StatusPending {
		return ErrStaleOffer
	}
	o.status = status
	o.resolvedAt = &at
	return nil
}

// setID validates and sets the offer identifier.
func (o *Offer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	o.id = id
	return nil
}

// setOrderID validates and sets the order identifier.
func (o *Offer) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	o.orderID = orderID
	return nil
}

// setCourierID validates and sets the courier identifier.
func (o *Offer) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("courierID", err)
	}
	o.courierID = courierID
	return nil
}

// setStatus validates and sets the resolution status.
func (o *Offer) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

// setTimes validates and sets the creation time and deadline.
func (o *Offer) setTimes(createdAt time.Time, ttl time.Duration) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	if ttl <= 0 {
		return errs.NewValueIsInvalidError("ttl must be positive")
	}
	o.createdAt = createdAt
	o.expiresAt = createdAt.Add(ttl)
	return nil
}
