package services

import (
	"sort"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// CourierDistance is a geo index query result: a courier's latest known
// position annotated with the distance to the query center.
type CourierDistance struct {
	CourierID  kernel.UUID
	Location   kernel.Location
	DistanceKm float64
	SampledAt  time.Time
}

// GeoIndex maintains the latest known position of each courier and answers
// radius queries around a point. It is the read side of location ingress:
// samples arrive out of order from the field, so writes are last-write-wins
// by sample timestamp.
//
// The index is safe for concurrent use. Queries take a read lock and work
// on a snapshot, so a slow ranking pass never blocks location ingress.
type GeoIndex struct {
	mu      sync.RWMutex
	samples map[string]geoSample
}

// geoSample is one courier's latest applied position.
type geoSample struct {
	courierID kernel.UUID
	location  kernel.Location
	sampledAt time.Time
}

// NewGeoIndex creates an empty GeoIndex.
func NewGeoIndex() *GeoIndex {
	return &GeoIndex{
		samples: make(map[string]geoSample),
	}
}

// Upsert applies a location sample for a courier.
//
// A sample older than (or concurrent with) the stored one is discarded and
// Upsert returns false; the caller may use that to skip downstream fan-out.
//
// Returns:
//   - bool: true if the sample was applied, false if discarded as stale
//   - error: validation error if the courier id or location is invalid
func (g *GeoIndex) Upsert(courierID kernel.UUID, location kernel.Location, sampledAt time.Time) (bool, error) {
	if err := courierID.Validate(); err != nil {
		return false, err
	}
	if err := location.Validate(); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := courierID.String()
	if existing, ok := g.samples[key]; ok && !sampledAt.After(existing.sampledAt) {
		return false, nil
	}

	g.samples[key] = geoSample{
		courierID: courierID,
		location:  location,
		sampledAt: sampledAt,
	}
	return true, nil
}

// Remove drops a courier from the index. Removing an unknown courier is a
// no-op. Called when a courier goes offline.
func (g *GeoIndex) Remove(courierID kernel.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.samples, courierID.String())
}

// Len returns the number of couriers currently in the index.
func (g *GeoIndex) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.samples)
}

// Query returns the couriers within radiusKm of center, nearest first.
//
// Ordering is deterministic: ascending distance, ties broken by the most
// recent sample, then by the lowest courier id. A limit <= 0 returns all
// matches.
func (g *GeoIndex) Query(center kernel.Location, radiusKm float64, limit int) []CourierDistance {
	g.mu.RLock()
	result := make([]CourierDistance, 0, len(g.samples))
	for _, s := range g.samples {
		distance := center.DistanceKmTo(s.location)
		if distance > radiusKm {
			continue
		}
		result = append(result, CourierDistance{
			CourierID:  s.courierID,
			Location:   s.location,
			DistanceKm: distance,
			SampledAt:  s.sampledAt,
		})
	}
	g.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].DistanceKm != result[j].DistanceKm {
			return result[i].DistanceKm < result[j].DistanceKm
		}
		if !result[i].SampledAt.Equal(result[j].SampledAt) {
			return result[i].SampledAt.After(result[j].SampledAt)
		}
		return result[i].CourierID.String() < result[j].CourierID.String()
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
