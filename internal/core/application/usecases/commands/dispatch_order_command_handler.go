package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// ErrNoOrderFound is returned when no order qualifies for the operation.
var ErrNoOrderFound = errors.New("no order found")

// DispatchOrderCommandHandler loads a pending order and hands it to the
// dispatcher, which owns the offer protocol from there. The order is read
// in its own short transaction; the dispatcher persists its transitions
// through the dispatch store as the protocol progresses.
//
// Example:
//
//	handler := NewDispatchOrderCommandHandler(uowFactory, dispatcher)
//	err := handler.Handle(ctx, NewDispatchOrderCommand())
//	switch {
//	case errors.Is(err, ErrNoOrderFound):
//	    log.Println("No pending orders")
//	case err != nil:
//	    log.Printf("Dispatch failed: %v", err)
//	}
type DispatchOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher Dispatcher
}

// NewDispatchOrderCommandHandler creates a handler for dispatch operations.
func NewDispatchOrderCommandHandler(uowFactory OrderUoWFactory, dispatcher Dispatcher) DispatchOrderCommandHandler {
	return DispatchOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the dispatch command.
// Loads the targeted (or oldest pending) order and starts the offer
// protocol. Returns ErrNoOrderFound when nothing is pending, and skips
// orders that are no longer Pending by the time they are loaded.
func (h DispatchOrderCommandHandler) Handle(ctx context.Context, cmd DispatchOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	pending, err := h.loadOrder(ctx, cmd)
	if err != nil {
		return err
	}

	if pending.Status() != order.StatusPending {
		return ErrNoOrderFound
	}

	return h.dispatcher.Dispatch(ctx, pending)
}

func (h DispatchOrderCommandHandler) loadOrder(ctx context.Context, cmd DispatchOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()

	var (
		pending *order.Order
		err     error
	)
	if id := cmd.OrderID(); id != nil {
		pending, err = repo.Get(ctx, *id)
	} else {
		pending, err = repo.GetFirstInPendingStatus(ctx)
	}
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, ErrNoOrderFound
	}
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return pending, nil
}
