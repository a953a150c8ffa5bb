package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/segmentio/kafka-go"
)

const (
	publishTimeout = 5 * time.Second

	TopicOrdersPlaced    = "orders-placed"
	EventTypeOrderPlaced = "order.placed"
)

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPlaced is the payload published for every confirmed order.
type OrderPlaced struct {
	OrderID      domain.ID         `json:"order_id"`
	SessionID    string            `json:"session_id"`
	CustomerName string            `json:"customer_name"`
	Total        domain.Money      `json:"total"`
	Items        []domain.CartLine `json:"items"`
	PlacedAt     time.Time         `json:"placed_at"`
}

type Publisher struct {
	writer MessageWriter
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

func NewKafkaPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicOrdersPlaced,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return NewPublisher(w)
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (p *Publisher) OrderPlaced(ctx context.Context, placement order.Placement) error {
	event := OrderPlaced{
		OrderID:      placement.Confirmation.ID,
		SessionID:    placement.SessionID,
		CustomerName: placement.Customer.Name,
		Total:        placement.Confirmation.Total,
		Items:        placement.Request.Items,
		PlacedAt:     placement.PlacedAt.UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()), // order id keeps events for one order on one partition
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlaced)},
		},
		Time: event.PlacedAt,
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
