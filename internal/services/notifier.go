package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"workbridge/internal/engine"
)

const eventExchange = "marketplace.events"

// EventPublisher fans domain events out to a RabbitMQ topic exchange. It is
// the notification channel of the engine: best-effort, after-commit, and a
// publish failure never affects the ledger.
type EventPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewEventPublisher(url string) (*EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		eventExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &EventPublisher{conn: conn, channel: ch}, nil
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Publish routes the event as contract.<type> so consumers can bind on
// patterns like contract.payment_captured or contract.#.
func (p *EventPublisher) Publish(ctx context.Context, ev engine.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		eventExchange,
		"contract."+string(ev.Type),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
		},
	)
}
