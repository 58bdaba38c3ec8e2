package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// LocationMinLatitude is the minimum valid latitude in degrees.
	LocationMinLatitude = -90.0
	// LocationMaxLatitude is the maximum valid latitude in degrees.
	LocationMaxLatitude = 90.0
	// LocationMinLongitude is the minimum valid longitude in degrees.
	LocationMinLongitude = -180.0
	// LocationMaxLongitude is the maximum valid longitude in degrees.
	LocationMaxLongitude = 180.0

	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly
// initialized Location. Locations must be created via NewLocation.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is an immutable value object representing a WGS-84 coordinate pair.
// The zero value of Location is invalid and fails validation - use NewLocation
// to create instances.
//
// Example:
//
//	loc, err := kernel.NewLocation(12.36, -1.53)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Location: %s", loc) // Output: Location(12.360000,-1.530000)
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation creates a Location from latitude and longitude in decimal degrees.
// Latitude must lie in [-90, 90] and longitude in [-180, 180]; non-finite
// values are rejected. Returns an out-of-range validation error otherwise.
//
// Parameters:
//   - latitude: degrees north of the equator (negative is south)
//   - longitude: degrees east of the prime meridian (negative is west)
//
// Returns:
//   - Location: a valid location instance
//   - error: validation error if either coordinate is out of its domain range
func NewLocation(latitude float64, longitude float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate checks if the Location was properly constructed via NewLocation.
// Returns ErrLocationIsNotConstructed for zero-value locations.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in decimal degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

// String returns a human-readable representation in the format
// "Location(lat,lon)". Implements fmt.Stringer.
func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.latitude, l.longitude)
}

// IsEqual compares two locations for coordinate equality.
func (l Location) IsEqual(other Location) bool {
	return l == other
}

// DistanceKmTo calculates the great-circle distance to another location in
// kilometers using the haversine formula. Coordinates are validated at
// construction, so the calculation itself cannot fail.
//
// Example:
//
//	pickup, _ := kernel.NewLocation(12.36, -1.53)
//	courier, _ := kernel.NewLocation(12.37, -1.52)
//	km := pickup.DistanceKmTo(courier)
func (l Location) DistanceKmTo(other Location) float64 {
	lat1 := l.latitude * math.Pi / 180
	lat2 := other.latitude * math.Pi / 180
	dLat := (other.latitude - l.latitude) * math.Pi / 180
	dLon := (other.longitude - l.longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceMetersTo calculates the great-circle distance to another location
// in meters. See DistanceKmTo.
func (l Location) DistanceMetersTo(other Location) float64 {
	return l.DistanceKmTo(other) * 1000
}

// setLatitude sets the latitude with validation.
// Note: We intentionally use a pointer receiver here while other methods use
// value receivers to enable self-encapsulated validation during construction.
func (l *Location) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || latitude < LocationMinLatitude || latitude > LocationMaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LocationMinLatitude, LocationMaxLatitude)
	}

	l.latitude = latitude
	return nil
}

// setLongitude sets the longitude with validation.
// Note: We intentionally use a pointer receiver here while other methods use
// value receivers to enable self-encapsulated validation during construction.
func (l *Location) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || longitude < LocationMinLongitude || longitude > LocationMaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LocationMinLongitude, LocationMaxLongitude)
	}

	l.longitude = longitude
	return nil
}
