// Package services contains the domain services of the dispatch engine.
//
// GeoIndex and AvailabilityRegistry hold the live, in-memory hot-path state
// (courier positions and availability). MatchingPolicy ranks candidates.
// Dispatcher runs the sequential offer protocol over a ranked snapshot,
// persisting transitions through an injected store and announcing them as
// domain events. TrackingAggregator turns the raw location stream of
// assigned couriers into throttled distance/ETA updates.
//
// The services depend only on the domain model and small consumer-side
// interfaces (DispatchStore, EventPublisher, OfferNotifier); adapters are
// wired in by the composition root.
package services
