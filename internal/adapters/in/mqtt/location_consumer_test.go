package mqtt

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourierIDFromTopic(t *testing.T) {
	courierID := kernel.NewUUID()

	parsed, err := courierIDFromTopic(fmt.Sprintf("couriers/%s/location", courierID))
	require.NoError(t, err)
	assert.Equal(t, courierID, parsed)

	badTopics := []string{
		"couriers/location",
		fmt.Sprintf("orders/%s/location", courierID),
		fmt.Sprintf("couriers/%s/offers", courierID),
		fmt.Sprintf("couriers/%s/location/extra", courierID),
		"couriers/not-a-uuid/location",
	}
	for _, topic := range badTopics {
		_, err = courierIDFromTopic(topic)
		assert.Error(t, err, topic)
	}
}

func locationConsumerFixture(t *testing.T) (*LocationConsumer, *services.AvailabilityRegistry, *services.GeoIndex, kernel.UUID) {
	t.Helper()

	registry := services.NewAvailabilityRegistry()
	geoIndex := services.NewGeoIndex()
	tracker := services.NewTrackingAggregator(nil, 0, 0, slog.Default())
	handler := commands.NewReportLocationCommandHandler(registry, geoIndex, tracker)

	aggregate, err := courier.NewCourier(kernel.NewUUID(), "Pavel", courier.VehicleBicycle)
	require.NoError(t, err)
	require.NoError(t, registry.Register(aggregate))
	require.NoError(t, registry.SetOnline(aggregate.ID()))

	consumer := &LocationConsumer{
		reportLocation: handler,
		logger:         slog.Default(),
	}
	return consumer, registry, geoIndex, aggregate.ID()
}

func TestLocationConsumer_HandleSample(t *testing.T) {
	consumer, registry, geoIndex, courierID := locationConsumerFixture(t)

	topic := fmt.Sprintf("couriers/%s/location", courierID)
	payload := []byte(`{"latitude": 55.7558, "longitude": 37.6173, "sampled_at": "2026-08-31T12:00:00Z"}`)

	err := consumer.handleSample(topic, payload)
	require.NoError(t, err)

	assert.Equal(t, 1, geoIndex.Len())

	view, err := registry.View(courierID)
	require.NoError(t, err)
	require.NotNil(t, view.Location)
	assert.InDelta(t, 55.7558, view.Location.Latitude(), 1e-9)
	assert.InDelta(t, 37.6173, view.Location.Longitude(), 1e-9)
	assert.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), view.LocationSeenAt.UTC())
}

func TestLocationConsumer_HandleSampleRejectsGarbage(t *testing.T) {
	consumer, _, geoIndex, courierID := locationConsumerFixture(t)
	topic := fmt.Sprintf("couriers/%s/location", courierID)

	tests := []struct {
		name    string
		topic   string
		payload []byte
	}{
		{"malformed topic", "couriers/oops", []byte(`{"latitude": 55.75, "longitude": 37.61}`)},
		{"broken json", topic, []byte(`{"latitude": `)},
		{"latitude out of range", topic, []byte(`{"latitude": 91.0, "longitude": 37.61}`)},
		{"unknown courier", fmt.Sprintf("couriers/%s/location", kernel.NewUUID()), []byte(`{"latitude": 55.75, "longitude": 37.61}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, consumer.handleSample(tt.topic, tt.payload))
		})
	}
	assert.Equal(t, 0, geoIndex.Len())
}
