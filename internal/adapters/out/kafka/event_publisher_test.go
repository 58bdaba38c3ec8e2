package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOrderTopic    = "dispatch.orders"
	testTrackingTopic = "dispatch.tracking"
)

func decodeEnvelope(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestBuildMessage_OrderEventsGoToOrderTopic(t *testing.T) {
	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()

	tests := []struct {
		name  string
		event events.DomainEvent
	}{
		{"offer extended", events.OfferExtended{
			OfferID: kernel.NewUUID(), OrderID: orderID, CourierID: courierID,
			ExpiresAt: time.Now().Add(15 * time.Second),
		}},
		{"order unmatched", events.OrderUnmatched{OrderID: orderID, Attempted: 3}},
		{"order delivered", events.OrderDelivered{OrderID: orderID, CourierID: courierID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, key, body, err := buildMessage(testOrderTopic, testTrackingTopic, tt.event)
			require.NoError(t, err)

			assert.Equal(t, testOrderTopic, topic)
			assert.Equal(t, orderID.String(), key)

			env := decodeEnvelope(t, body)
			assert.Equal(t, tt.event.EventName(), env.EventName)
			assert.False(t, env.OccurredAt.IsZero())
		})
	}
}

func TestBuildMessage_TrackingUpdateGoesToTrackingTopic(t *testing.T) {
	location, err := kernel.NewLocation(55.7558, 37.6173)
	require.NoError(t, err)

	event := events.TrackingUpdate{
		OrderID:            kernel.NewUUID(),
		CourierID:          kernel.NewUUID(),
		Location:           location,
		DistanceToTargetKm: 1.25,
		EtaSeconds:         300,
		SampledAt:          time.Now(),
	}

	topic, key, body, err := buildMessage(testOrderTopic, testTrackingTopic, event)
	require.NoError(t, err)

	assert.Equal(t, testTrackingTopic, topic)
	assert.Equal(t, event.OrderID.String(), key)

	env := decodeEnvelope(t, body)
	assert.Equal(t, "tracking.update", env.EventName)

	var payload trackingUpdatePayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, event.OrderID.String(), payload.OrderID)
	assert.Equal(t, event.CourierID.String(), payload.CourierID)
	assert.InDelta(t, 55.7558, payload.Location.Latitude, 1e-9)
	assert.InDelta(t, 37.6173, payload.Location.Longitude, 1e-9)
	assert.InDelta(t, 1.25, payload.DistanceToTargetKm, 1e-9)
	assert.Equal(t, 300, payload.EtaSeconds)
}

func TestBuildMessage_CancelledWithoutCourierOmitsCourierID(t *testing.T) {
	event := events.OrderCancelled{OrderID: kernel.NewUUID()}

	_, _, body, err := buildMessage(testOrderTopic, testTrackingTopic, event)
	require.NoError(t, err)

	env := decodeEnvelope(t, body)
	assert.NotContains(t, string(env.Payload), "courier_id")
}

func TestBuildMessage_AssignedCarriesBothLegs(t *testing.T) {
	pickup, err := kernel.NewLocation(55.75, 37.61)
	require.NoError(t, err)
	dropoff, err := kernel.NewLocation(55.79, 37.65)
	require.NoError(t, err)

	event := events.OrderAssigned{
		OrderID:   kernel.NewUUID(),
		CourierID: kernel.NewUUID(),
		Pickup:    pickup,
		Dropoff:   dropoff,
	}

	_, _, body, err := buildMessage(testOrderTopic, testTrackingTopic, event)
	require.NoError(t, err)

	env := decodeEnvelope(t, body)
	var payload orderAssignedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.InDelta(t, 55.75, payload.Pickup.Latitude, 1e-9)
	assert.InDelta(t, 37.65, payload.Dropoff.Longitude, 1e-9)
	assert.Equal(t, event.CourierID.String(), payload.CourierID)
}
