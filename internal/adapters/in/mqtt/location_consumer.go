// Package mqtt receives courier location telemetry. Courier apps publish
// position samples to their own location topic; the consumer feeds each
// sample into the location reporting workflow.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	locationTopicFilter = "couriers/+/location"
	locationQoS         = byte(0)
)

// locationMessage is the wire format of the courier location topic.
type locationMessage struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SampledAt time.Time `json:"sampled_at"`
}

// LocationConsumer subscribes to courier location topics and reports every
// sample to the dispatch engine.
type LocationConsumer struct {
	client         pahomqtt.Client
	reportLocation commands.ReportLocationCommandHandler
	logger         *slog.Logger
}

// NewLocationConsumer connects to the broker. Call Start to subscribe.
// A nil logger falls back to slog.Default.
func NewLocationConsumer(
	brokerURL string,
	clientID string,
	reportLocation commands.ReportLocationCommandHandler,
	logger *slog.Logger,
) (*LocationConsumer, error) {
	if brokerURL == "" {
		return nil, errs.NewValueIsRequiredError("brokerURL")
	}
	if clientID == "" {
		return nil, errs.NewValueIsRequiredError("clientID")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	return &LocationConsumer{
		client:         client,
		reportLocation: reportLocation,
		logger:         logger,
	}, nil
}

// Start subscribes to the location topic filter.
func (c *LocationConsumer) Start() error {
	token := c.client.Subscribe(locationTopicFilter, locationQoS, c.onMessage)
	token.Wait()
	return token.Error()
}

// Close drops the subscription and disconnects from the broker.
func (c *LocationConsumer) Close() {
	if c.client.IsConnected() {
		token := c.client.Unsubscribe(locationTopicFilter)
		token.Wait()
		c.client.Disconnect(250)
	}
}

// onMessage handles one location sample. Bad samples are logged and
// dropped; telemetry is lossy by nature and the next sample supersedes.
func (c *LocationConsumer) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	if err := c.handleSample(msg.Topic(), msg.Payload()); err != nil {
		c.logger.Warn("dropped location sample", "topic", msg.Topic(), "error", err)
	}
}

func (c *LocationConsumer) handleSample(topic string, payload []byte) error {
	courierID, err := courierIDFromTopic(topic)
	if err != nil {
		return err
	}

	var msg locationMessage
	if err = json.Unmarshal(payload, &msg); err != nil {
		return err
	}

	location, err := kernel.NewLocation(msg.Latitude, msg.Longitude)
	if err != nil {
		return err
	}

	sampledAt := msg.SampledAt
	if sampledAt.IsZero() {
		sampledAt = time.Now()
	}

	cmd, err := commands.NewReportLocationCommand(courierID, location, sampledAt)
	if err != nil {
		return err
	}

	return c.reportLocation.Handle(context.Background(), cmd)
}

// courierIDFromTopic extracts the courier ID segment from
// "couriers/<id>/location".
func courierIDFromTopic(topic string) (kernel.UUID, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "couriers" || parts[2] != "location" {
		return kernel.UUID{}, fmt.Errorf("unexpected location topic %q", topic)
	}
	return kernel.UUIDFromString(parts[1])
}
