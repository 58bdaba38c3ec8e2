// Package events defines the domain events emitted by the dispatch engine.
//
// Events are plain structs carrying kernel value objects. Adapters serialize
// them for the outside world; the domain layer only decides what happened
// and when. EventName values double as message discriminators on the bus.
package events
