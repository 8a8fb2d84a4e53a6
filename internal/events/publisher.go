package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/order"
)

const (
	EventsExchange         = "marketplace.events"
	OrderCreatedRoutingKey = "order.created.v1"
)

// MustDialRabbit connects to RabbitMQ using RABBITMQ_URL.
func MustDialRabbit() *amqp.Connection {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		log.Fatal("RABBITMQ_URL not set")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Fatalf("dial rabbitmq: %v", err)
	}
	return conn
}

type Publisher struct {
	ch  *amqp.Channel
	seq SequenceRepository
}

func NewPublisher(conn *amqp.Connection, seq SequenceRepository) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the exchange so publish never fails due to missing infra
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}

	return &Publisher{ch: ch, seq: seq}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishOrderCreated emits one enveloped OrderCreated event for a settled
// order. Callers invoke it after commit; a publish failure must not unwind
// the settlement, so the error is for logging only.
func (p *Publisher) PublishOrderCreated(ctx context.Context, o *order.Order, meta EnvelopeMetadata) error {
	seq, err := p.seq.NextSequence(ctx, o.ID)
	if err != nil {
		return err
	}

	env := BuildOrderCreatedEnvelope(o, seq, meta)
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}

	return p.publishJSON(ctx, OrderCreatedRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
