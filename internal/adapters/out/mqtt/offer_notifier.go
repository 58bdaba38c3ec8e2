// Package mqtt pushes offers to couriers over MQTT. Each courier's app
// subscribes to its own offer topic; the notifier publishes the offer
// payload there when the dispatcher extends one.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	offerTopicPattern = "couriers/%s/offers"
	offerQoS          = byte(1)
)

// offerMessage is the wire format pushed to the courier's offer topic.
type offerMessage struct {
	OfferID string `json:"offer_id"`
	OrderID string `json:"order_id"`
	Pickup  struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"pickup"`
	Dropoff struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"dropoff"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OfferNotifier implements ports.OfferNotifier over an MQTT connection.
type OfferNotifier struct {
	client pahomqtt.Client
}

// NewOfferNotifier connects to the broker and returns a notifier ready to
// publish offers.
func NewOfferNotifier(brokerURL string, clientID string) (*OfferNotifier, error) {
	if brokerURL == "" {
		return nil, errs.NewValueIsRequiredError("brokerURL")
	}
	if clientID == "" {
		return nil, errs.NewValueIsRequiredError("clientID")
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

	return &OfferNotifier{client: client}, nil
}

// NotifyOffer publishes the offer to the candidate courier's topic. The
// payload carries both legs of the trip so the courier can judge the job
// before accepting.
func (n *OfferNotifier) NotifyOffer(_ context.Context, pending *offer.Offer, aggregate *order.Order) error {
	if err := pending.Validate(); err != nil {
		return err
	}
	if err := aggregate.Validate(); err != nil {
		return err
	}

	msg := offerMessage{
		OfferID:   pending.ID().String(),
		OrderID:   pending.OrderID().String(),
		ExpiresAt: pending.ExpiresAt(),
	}
	msg.Pickup.Latitude = aggregate.Pickup().Latitude()
	msg.Pickup.Longitude = aggregate.Pickup().Longitude()
	msg.Dropoff.Latitude = aggregate.Dropoff().Latitude()
	msg.Dropoff.Longitude = aggregate.Dropoff().Longitude()

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	topic := fmt.Sprintf(offerTopicPattern, pending.CourierID())
	token := n.client.Publish(topic, offerQoS, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (n *OfferNotifier) Close() {
	if n.client.IsConnected() {
		n.client.Disconnect(250)
	}
}
