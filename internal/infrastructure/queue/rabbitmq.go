package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const queueName = "ingestion-queue"

// IngestionQueue is the durable RabbitMQ adapter. It exposes publish and
// consume on one value so the worker republishes retries through the handle
// it consumes from.
//
// The connection and channel form one explicitly owned pair with lazy
// reconnect: a broker close or error invalidates the cached pair and the
// next publish or consume dials from scratch.
type IngestionQueue struct {
	url    string
	logger zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewIngestionQueue creates an adapter for the given broker URL. No
// connection is made until the first publish or consume.
func NewIngestionQueue(url string, logger zerolog.Logger) ports.TaskQueue {
	return &IngestionQueue{
		url:    url,
		logger: logger,
	}
}

// channel returns the cached channel, dialing and declaring the durable
// queue when none is cached.
func (q *IngestionQueue) channel() (*amqp.Channel, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ch != nil {
		return q.ch, nil
	}

	conn, err := amqp.Dial(q.url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go q.watch(closed)

	q.conn, q.ch = conn, ch
	q.logger.Info().Str("queue", queueName).Msg("Connected to broker")
	return ch, nil
}

// watch invalidates the cached handle when the broker reports a close.
func (q *IngestionQueue) watch(closed <-chan *amqp.Error) {
	err := <-closed
	if err != nil {
		q.logger.Error().Err(err).Msg("Broker connection closed")
	} else {
		q.logger.Info().Msg("Broker connection closed")
	}
	q.invalidate()
}

func (q *IngestionQueue) invalidate() {
	q.mu.Lock()
	q.conn, q.ch = nil, nil
	q.mu.Unlock()
}

// Publish enqueues one persistent task message.
func (q *IngestionQueue) Publish(ctx context.Context, task domain.IngestionTask) error {
	ch, err := q.channel()
	if err != nil {
		return err
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		q.invalidate()
		return fmt.Errorf("failed to publish task: %w", err)
	}

	q.logger.Debug().Str("tenantId", task.TenantID).Int("retryCount", task.RetryCount).Msg("Published ingestion task")
	return nil
}

// Consume delivers tasks to handle one at a time (prefetch 1 for fair
// dispatch across workers) until the context ends. Every delivery is
// acknowledged after the handler returns, success or not, so the broker
// never redelivers on its own; handler errors are logged only.
func (q *IngestionQueue) Consume(ctx context.Context, handle func(ctx context.Context, task domain.IngestionTask) error) error {
	ch, err := q.channel()
	if err != nil {
		return err
	}

	if err := ch.Qos(1, 0, false); err != nil {
		q.invalidate()
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		q.invalidate()
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				q.invalidate()
				return fmt.Errorf("delivery channel closed")
			}

			var task domain.IngestionTask
			if err := json.Unmarshal(d.Body, &task); err != nil {
				q.logger.Error().Err(err).Msg("Dropping malformed task payload")
				if ackErr := d.Ack(false); ackErr != nil {
					q.invalidate()
					return fmt.Errorf("failed to ack delivery: %w", ackErr)
				}
				continue
			}

			if err := handle(ctx, task); err != nil {
				q.logger.Error().Err(err).Str("tenantId", task.TenantID).Msg("Task handler failed")
			}

			if err := d.Ack(false); err != nil {
				q.invalidate()
				return fmt.Errorf("failed to ack delivery: %w", err)
			}
		}
	}
}

// Close tears down the cached connection, if any.
func (q *IngestionQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.conn == nil {
		return nil
	}
	err := q.conn.Close()
	q.conn, q.ch = nil, nil
	return err
}
