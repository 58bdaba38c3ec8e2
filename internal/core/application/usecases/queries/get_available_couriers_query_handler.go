package queries

import (
	"context"
	"database/sql"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableCouriersQueryHandler retrieves available couriers from the
// database. Uses direct SQL queries for optimal read performance in the
// CQRS pattern.
type GetAvailableCouriersQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailableCouriersQueryHandler creates a handler for available
// courier queries. Requires a GORM database connection for query execution.
func NewGetAvailableCouriersQueryHandler(db *gorm.DB) GetAvailableCouriersQueryHandler {
	return GetAvailableCouriersQueryHandler{db: db}
}

// Handle executes the query to retrieve all available couriers.
// Returns a slice of courier read models sorted by name.
// Converts database types to domain types for consistency.
func (h GetAvailableCouriersQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableCouriersQuery,
) ([]GetAvailableCouriersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	couriers := make([]GetAvailableCouriersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			vehicle,
			location_lat,
			location_lon,
			location_seen_at
		FROM couriers
		WHERE status = ?
		ORDER BY name
	`, int(courier.StatusAvailable)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetAvailableCouriersQueryResponse
		var id uuid.UUID
		var vehicle int
		var lat, lon sql.NullFloat64
		var seenAt sql.NullTime

		err = rows.Scan(
			&id,
			&resp.Name,
			&vehicle,
			&lat,
			&lon,
			&seenAt,
		)
		if err != nil {
			return nil, err
		}

		courierID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = courierID
		resp.Vehicle = courier.VehicleType(vehicle)

		if lat.Valid && lon.Valid {
			location, locErr := kernel.NewLocation(lat.Float64, lon.Float64)
			if locErr != nil {
				return nil, locErr
			}
			resp.Location = &location
		}
		if seenAt.Valid {
			resp.LocationSeenAt = seenAt.Time
		}

		couriers = append(couriers, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return couriers, nil
}
