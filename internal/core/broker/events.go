package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"payments-service/internal/core/domain/entity"
	"payments-service/internal/core/hub"
)

// EventPublisher pushes transaction.updated events to a fanout exchange so
// every API server instance can relay them to its own subscribers. It
// implements ports.EventPublisher.
type EventPublisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(ch *amqp.Channel, exchange string) (*EventPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &EventPublisher{channel: ch, exchange: exchange}, nil
}

func (p *EventPublisher) PublishUpdated(ctx context.Context, tx *entity.Transaction) error {
	body, err := json.Marshal(hub.TransactionUpdated(tx))
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		"transaction.updated",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Headers: amqp.Table{
				"event_type":   "transaction.updated",
				"aggregate_id": tx.ID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("publish update for %s: %w", tx.ID, err)
	}
	return nil
}

// EventSubscriber binds an exclusive queue to the fanout exchange and feeds
// decoded events into the local hub. The queue is exclusive and auto-deleted
// so there is no replay across restarts, matching the stream's best-effort
// contract.
type EventSubscriber struct {
	channel *amqp.Channel
	queue   string
	h       *hub.Hub
	logger  *slog.Logger
}

func NewEventSubscriber(ch *amqp.Channel, exchange string, h *hub.Hub, logger *slog.Logger) (*EventSubscriber, error) {
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare subscriber queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind subscriber queue: %w", err)
	}

	return &EventSubscriber{channel: ch, queue: q.Name, h: h, logger: logger}, nil
}

// Run relays events until ctx is cancelled or the delivery channel closes.
func (s *EventSubscriber) Run(ctx context.Context) error {
	deliveries, err := s.channel.Consume(s.queue, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var evt hub.Event
			if err := json.Unmarshal(d.Body, &evt); err != nil {
				s.logger.ErrorContext(ctx, "malformed event payload", slog.String("error", err.Error()))
				continue
			}
			s.h.Publish(evt)
		}
	}
}
