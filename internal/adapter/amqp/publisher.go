// Package amqp forwards alert notifications to a RabbitMQ exchange.
package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/gestiongastos/backend/internal/domain"
)

// ListenerID is the id the publisher subscribes under
const ListenerID = "amqp-publisher"

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp091.Channel the publisher needs
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher implements domain.NotificationListener by publishing each
// notification as JSON to a topic exchange.
type Publisher struct {
	conn       *amqp091.Connection
	channel    Channel
	exchange   string
	routingKey string
	logger     zerolog.Logger
}

var _ domain.NotificationListener = (*Publisher)(nil)

// Dial connects to the broker and declares the exchange
func Dial(url, exchange, routingKey string, logger zerolog.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := NewPublisher(channel, exchange, routingKey, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares the exchange on an open channel
func NewPublisher(channel Channel, exchange, routingKey string, logger zerolog.Logger) (*Publisher, error) {
	p := &Publisher{
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}

	err := channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return p, nil
}

// OnNotification publishes the notification. It runs on the goroutine
// evaluating the alert, so the publish is bounded by publishTimeout.
func (p *Publisher) OnNotification(n domain.Notification, source *domain.Alert) error {
	body, err := NewNotificationMessage(n, source).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    n.ID.String(),
			Timestamp:    n.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.Debug().
		Str("alert_id", source.ID.String()).
		Str("notification_id", n.ID.String()).
		Str("exchange", p.exchange).
		Str("routing_key", p.routingKey).
		Msg("notification published")

	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
