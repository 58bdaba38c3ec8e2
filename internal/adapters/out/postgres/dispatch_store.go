package postgres

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"gorm.io/gorm"
)

// GormDispatchStore writes order and offer transitions driven by the offer
// protocol through to storage. Each save runs in its own short transaction;
// the protocol's in-memory state is the source of truth between writes.
type GormDispatchStore struct {
	uowFactory ports.UnitOfWorkFactory
}

// NewGormDispatchStore creates a GormDispatchStore.
func NewGormDispatchStore(uowFactory ports.UnitOfWorkFactory) *GormDispatchStore {
	return &GormDispatchStore{uowFactory: uowFactory}
}

// SaveOrder persists an order transition. The order was added to storage on
// creation, so a save is always an update.
func (s *GormDispatchStore) SaveOrder(ctx context.Context, aggregate *order.Order) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// SaveOffer persists an offer. The first save of a freshly extended offer
// inserts it; every later save updates the stored row.
func (s *GormDispatchStore) SaveOffer(ctx context.Context, pending *offer.Offer) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OfferRepository()
	err := repo.Update(ctx, pending)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = repo.Add(ctx, pending)
	}
	if err != nil {
		return err
	}

	return uow.Commit(ctx)
}
