// Package kafka consumes order intake messages. Upstream systems publish
// created orders to a topic; the consumer registers each order and starts
// dispatch for it.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/IBM/sarama"
)

// orderCreatedMessage is the wire format of the order intake topic.
type orderCreatedMessage struct {
	OrderID string `json:"order_id"`
	Pickup  struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"pickup"`
	Dropoff struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"dropoff"`
}

// OrderConsumer reads created orders from Kafka and feeds them into the
// dispatch workflow.
type OrderConsumer struct {
	group       sarama.ConsumerGroup
	topics      []string
	createOrder commands.CreateOrderCommandHandler
	dispatch    commands.DispatchOrderCommandHandler
	logger      *slog.Logger
}

// NewOrderConsumer joins the given consumer group on the order intake topic.
// A nil logger falls back to slog.Default.
func NewOrderConsumer(
	brokers []string,
	groupID string,
	topic string,
	createOrder commands.CreateOrderCommandHandler,
	dispatch commands.DispatchOrderCommandHandler,
	logger *slog.Logger,
) (*OrderConsumer, error) {
	if len(brokers) == 0 {
		return nil, errs.NewValueIsRequiredError("brokers")
	}
	if groupID == "" {
		return nil, errs.NewValueIsRequiredError("groupID")
	}
	if topic == "" {
		return nil, errs.NewValueIsRequiredError("topic")
	}
	if logger == nil {
		logger = slog.Default()
	}

	config := sarama.NewConfig()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	return &OrderConsumer{
		group:       group,
		topics:      []string{topic},
		createOrder: createOrder,
		dispatch:    dispatch,
		logger:      logger,
	}, nil
}

// Run consumes until the context is cancelled. Rebalances restart the
// Consume loop; message-level failures are logged and the offset is
// committed so a poison message cannot wedge the partition.
func (c *OrderConsumer) Run(ctx context.Context) error {
	handler := &orderGroupHandler{consumer: c}

	for {
		if err := c.group.Consume(ctx, c.topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Error("consumer group session failed", "error", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close shuts down the consumer group.
func (c *OrderConsumer) Close() error {
	return c.group.Close()
}

// orderGroupHandler implements sarama.ConsumerGroupHandler for the order
// intake topic.
type orderGroupHandler struct {
	consumer *OrderConsumer
}

func (h *orderGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *orderGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *orderGroupHandler) ConsumeClaim(
	session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim,
) error {
	for msg := range claim.Messages() {
		if err := h.consumer.handleMessage(session.Context(), msg.Value); err != nil {
			h.consumer.logger.Error("failed to process order message",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

// handleMessage registers the order and starts dispatching it.
func (c *OrderConsumer) handleMessage(ctx context.Context, raw []byte) error {
	var msg orderCreatedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}

	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		return err
	}
	pickup, err := kernel.NewLocation(msg.Pickup.Latitude, msg.Pickup.Longitude)
	if err != nil {
		return err
	}
	dropoff, err := kernel.NewLocation(msg.Dropoff.Latitude, msg.Dropoff.Longitude)
	if err != nil {
		return err
	}

	createCmd, err := commands.NewCreateOrderCommand(orderID, pickup, dropoff)
	if err != nil {
		return err
	}
	if err = c.createOrder.Handle(ctx, createCmd); err != nil {
		return err
	}

	dispatchCmd, err := commands.NewDispatchOrderCommandForOrder(orderID)
	if err != nil {
		return err
	}
	return c.dispatch.Handle(ctx, dispatchCmd)
}
