package notify

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Sender is satisfied by *mail.Client.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Worker struct {
	sender Sender
	from   string
	logger zerolog.Logger
}

func NewWorker(sender Sender, from string, logger zerolog.Logger) *Worker {
	return &Worker{
		sender: sender,
		from:   from,
		logger: logger.With().Str("component", "mail_worker").Logger(),
	}
}

// Run handles deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.Handle(ctx, d)
		}
	}
}

// Handle sends one delivery. Malformed messages are dropped, send failures
// are requeued.
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	msg, err := BuildMessage(w.from, d.Body)
	if err != nil {
		w.logger.Error().Err(err).Bytes("body", d.Body).Msg("dropping malformed mail message")
		_ = d.Nack(false, false)
		return
	}

	if err := w.sender.DialAndSendWithContext(ctx, msg); err != nil {
		w.logger.Error().Err(err).Msg("failed to send mail, requeueing")
		_ = d.Nack(false, true)
		return
	}

	w.logger.Info().Uint64("delivery_tag", d.DeliveryTag).Msg("mail sent")
	_ = d.Ack(false)
}
