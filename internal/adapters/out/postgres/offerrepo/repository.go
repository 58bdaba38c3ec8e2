package offerrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOfferRepository implements OfferRepository using GORM.
type GormOfferRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOfferRepository creates a new GORM offer repository.
func NewGormOfferRepository(db *gorm.DB, tracker aggregateTracker) *GormOfferRepository {
	return &GormOfferRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a newly extended offer to the database.
func (r *GormOfferRepository) Add(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an offer's resolution to the database.
func (r *GormOfferRepository) Update(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OfferDTO{}).Where("id = ?", dto.ID).Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an offer by ID.
func (r *GormOfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OfferDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("offer", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllForOrder retrieves every offer extended for an order, oldest first.
func (r *GormOfferRepository) GetAllForOrder(ctx context.Context, orderID kernel.UUID) ([]*offer.Offer, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []OfferDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	offers := make([]*offer.Offer, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}

	return offers, nil
}
