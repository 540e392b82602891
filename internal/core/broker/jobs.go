package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// processJob is the payload of one processing job. Delivery is at least
// once; the processor is idempotent per transaction id.
type processJob struct {
	TransactionID string `json:"transaction_id"`
}

// JobPublisher submits processing jobs to a durable queue via the default
// exchange. It implements ports.JobQueue.
type JobPublisher struct {
	channel *amqp.Channel
	queue   string
}

func NewJobPublisher(ch *amqp.Channel, queue string) (*JobPublisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &JobPublisher{channel: ch, queue: queue}, nil
}

func (p *JobPublisher) Enqueue(ctx context.Context, transactionID string) error {
	body, err := json.Marshal(processJob{TransactionID: transactionID})
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("enqueue job for %s: %w", transactionID, err)
	}
	return nil
}

// JobConsumer drains the processing queue with manual acknowledgements. A
// job that fails is nacked without requeue; redelivery and dead-lettering
// belong to broker policy, not to this process.
type JobConsumer struct {
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

func NewJobConsumer(ch *amqp.Channel, queue string, logger *slog.Logger) (*JobConsumer, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &JobConsumer{channel: ch, queue: queue, logger: logger}, nil
}

// Consume blocks until ctx is cancelled or the delivery channel closes,
// invoking handle once per job.
func (c *JobConsumer) Consume(ctx context.Context, handle func(ctx context.Context, transactionID string) error) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handleDelivery(ctx, d, handle)
		}
	}
}

func (c *JobConsumer) handleDelivery(ctx context.Context, d amqp.Delivery, handle func(ctx context.Context, transactionID string) error) {
	var job processJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.logger.ErrorContext(ctx, "malformed job payload", slog.String("error", err.Error()))
		_ = d.Nack(false, false)
		return
	}

	if err := handle(ctx, job.TransactionID); err != nil {
		c.logger.ErrorContext(ctx, "job failed",
			slog.String("transaction_id", job.TransactionID),
			slog.String("error", err.Error()),
		)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}
