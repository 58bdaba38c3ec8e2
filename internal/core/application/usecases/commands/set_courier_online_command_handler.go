package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"
)

// SetCourierOnlineCommandHandler processes couriers going online.
//
// An unknown courier is registered first (both durably and in the
// availability registry); then the Available transition is applied in
// memory and written through.
type SetCourierOnlineCommandHandler struct {
	uowFactory CourierUoWFactory
	registry   *services.AvailabilityRegistry
}

// NewSetCourierOnlineCommandHandler creates a handler for couriers going
// online.
func NewSetCourierOnlineCommandHandler(uowFactory CourierUoWFactory, registry *services.AvailabilityRegistry) SetCourierOnlineCommandHandler {
	return SetCourierOnlineCommandHandler{
		uowFactory: uowFactory,
		registry:   registry,
	}
}

// Handle processes the transition. Going online while already Available is
// idempotent; going online from Offered or Busy is rejected by the
// availability state machine.
func (h SetCourierOnlineCommandHandler) Handle(ctx context.Context, cmd SetCourierOnlineCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if !h.registry.Contains(cmd.CourierID()) {
		fresh, err := courier.NewCourier(cmd.CourierID(), cmd.Name(), cmd.Vehicle())
		if err != nil {
			return err
		}
		if err = h.registry.Register(fresh); err != nil {
			return err
		}
	}

	if err := h.registry.SetOnline(cmd.CourierID()); err != nil {
		return err
	}

	return h.persist(ctx, cmd)
}

// persist writes the courier through to storage, inserting on first sight.
func (h SetCourierOnlineCommandHandler) persist(ctx context.Context, cmd SetCourierOnlineCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CourierRepository()

	stored, err := h.registry.Aggregate(cmd.CourierID())
	if err != nil {
		return err
	}

	_, getErr := repo.Get(ctx, cmd.CourierID())
	switch {
	case errors.Is(getErr, errs.ErrObjectNotFound):
		err = repo.Add(ctx, stored)
	case getErr != nil:
		return getErr
	default:
		err = repo.Update(ctx, stored)
	}
	if err != nil {
		return err
	}

	return uow.Commit(ctx)
}
