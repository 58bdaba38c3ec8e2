package services

import (
	"sort"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Default matching policy tunables.
const (
	// DefaultMaxRadiusKm is the default candidate search radius around
	// the pickup location.
	DefaultMaxRadiusKm = 5.0
	// DefaultDistanceWeight is the default weight of normalized distance
	// in the candidate score.
	DefaultDistanceWeight = 0.7
	// DefaultRateWeight is the default weight of the acceptance rate
	// complement in the candidate score.
	DefaultRateWeight = 0.3
)

// CandidateCourier is the ranking input assembled from the geo index and
// the availability registry for one courier.
type CandidateCourier struct {
	CourierID      kernel.UUID
	Status         courier.Status
	DistanceKm     float64
	AcceptanceRate float64
}

// RankedCandidate is a courier that passed the policy filters, annotated
// with its score. Lower scores rank earlier.
type RankedCandidate struct {
	CourierID  kernel.UUID
	DistanceKm float64
	Score      float64
}

// MatchingPolicy ranks candidate couriers for an order. The score blends
// proximity with historical willingness to accept:
//
//	score = distanceWeight*(distance/maxRadius) + rateWeight*(1 - acceptanceRate)
//
// Couriers that are not Available or are outside the radius are filtered
// out before scoring. An empty ranking is a valid outcome.
type MatchingPolicy struct {
	maxRadiusKm    float64
	distanceWeight float64
	rateWeight     float64
}

// NewMatchingPolicy creates a MatchingPolicy with the given tunables.
//
// Parameters:
//   - maxRadiusKm: candidate search radius, must be positive
//   - distanceWeight, rateWeight: score weights, must be non-negative and
//     not both zero
//
// Returns:
//   - MatchingPolicy: a ready policy
//   - error: validation error for out-of-range tunables
func NewMatchingPolicy(maxRadiusKm float64, distanceWeight float64, rateWeight float64) (MatchingPolicy, error) {
	if maxRadiusKm <= 0 {
		return MatchingPolicy{}, errs.NewValueIsInvalidError("maxRadiusKm must be positive")
	}
	if distanceWeight < 0 || rateWeight < 0 || distanceWeight+rateWeight == 0 {
		return MatchingPolicy{}, errs.NewValueIsInvalidError("score weights must be non-negative and not both zero")
	}
	return MatchingPolicy{
		maxRadiusKm:    maxRadiusKm,
		distanceWeight: distanceWeight,
		rateWeight:     rateWeight,
	}, nil
}

// DefaultMatchingPolicy returns a policy with the default tunables.
func DefaultMatchingPolicy() MatchingPolicy {
	policy, _ := NewMatchingPolicy(DefaultMaxRadiusKm, DefaultDistanceWeight, DefaultRateWeight)
	return policy
}

// MaxRadiusKm returns the candidate search radius.
func (p MatchingPolicy) MaxRadiusKm() float64 {
	return p.maxRadiusKm
}

// Rank filters and orders the candidates for dispatch.
//
// Only Available couriers within the policy radius participate. The result
// is sorted by ascending score; equal scores are broken by the lowest
// courier id so that repeated rankings over the same input are stable.
func (p MatchingPolicy) Rank(candidates []CandidateCourier) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Status != courier.StatusAvailable {
			continue
		}
		if c.DistanceKm > p.maxRadiusKm {
			continue
		}
		ranked = append(ranked, RankedCandidate{
			CourierID:  c.CourierID,
			DistanceKm: c.DistanceKm,
			Score:      p.score(c),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score < ranked[j].Score
		}
		return ranked[i].CourierID.String() < ranked[j].CourierID.String()
	})
	return ranked
}

// score computes the blended candidate score. Caller has already filtered
// by radius, so the normalized distance is within [0, 1].
func (p MatchingPolicy) score(c CandidateCourier) float64 {
	normalized := c.DistanceKm / p.maxRadiusKm
	return p.distanceWeight*normalized + p.rateWeight*(1-c.AcceptanceRate)
}
