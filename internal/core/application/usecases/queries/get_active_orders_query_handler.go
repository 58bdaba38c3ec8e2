package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler retrieves active orders from the database.
// Uses direct SQL queries for optimal read performance in the CQRS pattern.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveOrdersQueryHandler creates a handler for active order queries.
// Requires a GORM database connection for query execution.
func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve all active orders.
// Returns orders in Offered, Assigned, or PickedUp status sorted by ID.
// Converts database types to domain types for consistency.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			courier_id,
			pickup_lat,
			pickup_lon,
			dropoff_lat,
			dropoff_lon,
			status
		FROM orders
		WHERE status IN (?, ?, ?)
		ORDER BY id
	`, int(order.StatusOffered), int(order.StatusAssigned), int(order.StatusPickedUp)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetActiveOrdersQueryResponse
		var id uuid.UUID
		var courierID *uuid.UUID
		var pickupLat, pickupLon, dropoffLat, dropoffLon float64
		var status int

		err = rows.Scan(
			&id,
			&courierID,
			&pickupLat,
			&pickupLon,
			&dropoffLat,
			&dropoffLon,
			&status,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = orderID

		if courierID != nil {
			cID, cErr := kernel.UUIDFromBytes((*courierID)[:])
			if cErr != nil {
				return nil, cErr
			}
			resp.CourierID = &cID
		}

		pickup, locErr := kernel.NewLocation(pickupLat, pickupLon)
		if locErr != nil {
			return nil, locErr
		}
		dropoff, locErr := kernel.NewLocation(dropoffLat, dropoffLon)
		if locErr != nil {
			return nil, locErr
		}
		resp.Pickup = pickup
		resp.Dropoff = dropoff
		resp.Status = order.Status(status)

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
