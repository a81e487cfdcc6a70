// Package notify carries mail notifications from the web frontend to the mail
// worker over RabbitMQ and renders them into messages on the other side.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/kruchat2026/devlog/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQPPublisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
	logger  zerolog.Logger
}

func NewAMQPPublisher(ch Channel, queue string, timeout time.Duration, logger zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// the request may already be finishing, the publish gets its own deadline
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		return err
	}

	p.logger.Debug().Str("type", msg.Type).Str("to", msg.To).Msg("mail notification queued")
	return nil
}

// Nop drops every message. Used when RabbitMQ is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, domain.MailMessage) error { return nil }
