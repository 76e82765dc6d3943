package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"

	"donezo/config"
)

var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher owns one connection and one channel to the configured topic
// exchange. Close releases both; a closed publisher rejects Publish.
type Publisher struct {
	mu       sync.Mutex
	exchange string
	conn     *amqp091.Connection
	channel  *amqp091.Channel
}

// NewPublisher dials cfg.URL and declares cfg.Exchange as a durable topic
// exchange.
func NewPublisher(cfg config.MQConfig) (*Publisher, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// durable, not auto-deleted, not internal, wait for confirmation
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", cfg.Exchange, err)
	}

	return &Publisher{
		exchange: cfg.Exchange,
		conn:     conn,
		channel:  ch,
	}, nil
}

func (p *Publisher) Exchange() string {
	return p.exchange
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// IsConnected reports whether the broker connection is still open.
func (p *Publisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.conn != nil && p.channel != nil && !p.conn.IsClosed()
}

// Publish sends payload as persistent JSON with the given routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", routingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return ErrPublisherClosed
	}

	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
	})
}
