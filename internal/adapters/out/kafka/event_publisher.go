// Package kafka publishes domain events to Kafka using a sarama synchronous
// producer. Order lifecycle events and tracking updates go to separate
// topics; messages are keyed by order ID so one order's events stay ordered
// within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/IBM/sarama"
)

// SaramaEventPublisher implements ports.EventPublisher on top of a sarama
// SyncProducer.
type SaramaEventPublisher struct {
	producer      sarama.SyncProducer
	orderTopic    string
	trackingTopic string
}

// NewSaramaEventPublisher connects a synchronous producer to the given
// brokers. The producer waits for broker acknowledgement on every publish.
func NewSaramaEventPublisher(brokers []string, orderTopic string, trackingTopic string) (*SaramaEventPublisher, error) {
	if len(brokers) == 0 {
		return nil, errs.NewValueIsRequiredError("brokers")
	}
	if orderTopic == "" {
		return nil, errs.NewValueIsRequiredError("orderTopic")
	}
	if trackingTopic == "" {
		return nil, errs.NewValueIsRequiredError("trackingTopic")
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &SaramaEventPublisher{
		producer:      producer,
		orderTopic:    orderTopic,
		trackingTopic: trackingTopic,
	}, nil
}

// Publish serializes the event and sends it to the topic for its stream.
func (p *SaramaEventPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	topic, key, payload, err := buildMessage(p.orderTopic, p.trackingTopic, event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}

	_, _, err = p.producer.SendMessage(msg)
	return err
}

// Close shuts down the underlying producer.
func (p *SaramaEventPublisher) Close() error {
	return p.producer.Close()
}

// envelope is the wire frame around every published event.
type envelope struct {
	EventName  string          `json:"event_name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type locationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type offerExtendedPayload struct {
	OfferID   string    `json:"offer_id"`
	OrderID   string    `json:"order_id"`
	CourierID string    `json:"courier_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type orderAssignedPayload struct {
	OrderID   string          `json:"order_id"`
	CourierID string          `json:"courier_id"`
	Pickup    locationPayload `json:"pickup"`
	Dropoff   locationPayload `json:"dropoff"`
}

type orderUnmatchedPayload struct {
	OrderID   string `json:"order_id"`
	Attempted int    `json:"attempted"`
}

type orderCancelledPayload struct {
	OrderID   string  `json:"order_id"`
	CourierID *string `json:"courier_id,omitempty"`
}

type orderDeliveredPayload struct {
	OrderID   string `json:"order_id"`
	CourierID string `json:"courier_id"`
}

type trackingUpdatePayload struct {
	OrderID            string          `json:"order_id"`
	CourierID          string          `json:"courier_id"`
	Location           locationPayload `json:"location"`
	DistanceToTargetKm float64         `json:"distance_to_target_km"`
	EtaSeconds         int             `json:"eta_seconds"`
	SampledAt          time.Time       `json:"sampled_at"`
}

func toLocationPayload(location kernel.Location) locationPayload {
	return locationPayload{
		Latitude:  location.Latitude(),
		Longitude: location.Longitude(),
	}
}

// buildMessage maps a domain event onto its topic, partition key, and wire
// payload. Tracking updates go to the tracking topic; every other event is
// part of the order lifecycle stream.
func buildMessage(
	orderTopic string, trackingTopic string, event events.DomainEvent,
) (topic string, key string, body []byte, err error) {
	var payload any
	topic = orderTopic

	switch e := event.(type) {
	case events.OfferExtended:
		key = e.OrderID.String()
		payload = offerExtendedPayload{
			OfferID:   e.OfferID.String(),
			OrderID:   e.OrderID.String(),
			CourierID: e.CourierID.String(),
			ExpiresAt: e.ExpiresAt,
		}
	case events.OrderAssigned:
		key = e.OrderID.String()
		payload = orderAssignedPayload{
			OrderID:   e.OrderID.String(),
			CourierID: e.CourierID.String(),
			Pickup:    toLocationPayload(e.Pickup),
			Dropoff:   toLocationPayload(e.Dropoff),
		}
	case events.OrderUnmatched:
		key = e.OrderID.String()
		payload = orderUnmatchedPayload{
			OrderID:   e.OrderID.String(),
			Attempted: e.Attempted,
		}
	case events.OrderCancelled:
		key = e.OrderID.String()
		var courierID *string
		if e.CourierID != nil {
			s := e.CourierID.String()
			courierID = &s
		}
		payload = orderCancelledPayload{
			OrderID:   e.OrderID.String(),
			CourierID: courierID,
		}
	case events.OrderDelivered:
		key = e.OrderID.String()
		payload = orderDeliveredPayload{
			OrderID:   e.OrderID.String(),
			CourierID: e.CourierID.String(),
		}
	case events.TrackingUpdate:
		topic = trackingTopic
		key = e.OrderID.String()
		payload = trackingUpdatePayload{
			OrderID:            e.OrderID.String(),
			CourierID:          e.CourierID.String(),
			Location:           toLocationPayload(e.Location),
			DistanceToTargetKm: e.DistanceToTargetKm,
			EtaSeconds:         e.EtaSeconds,
			SampledAt:          e.SampledAt,
		}
	default:
		return "", "", nil, fmt.Errorf("unsupported event type %T", event)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", "", nil, err
	}

	body, err = json.Marshal(envelope{
		EventName:  event.EventName(),
		OccurredAt: time.Now(),
		Payload:    raw,
	})
	if err != nil {
		return "", "", nil, err
	}

	return topic, key, body, nil
}
