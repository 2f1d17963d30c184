package ports

import (
	"context"

	"shopmirror/internal/domain"
)

// TaskQueue is the durable ingestion queue. One adapter value exposes both
// publish and consume so the worker can republish retries through the same
// handle it consumes from.
//
// Delivery is at-least-once: Consume acknowledges every delivery after the
// handler returns, success or not, so the broker never redelivers on its
// own. Retries are explicit re-publications by the handler.
type TaskQueue interface {
	Publish(ctx context.Context, task domain.IngestionTask) error
	Consume(ctx context.Context, handle func(ctx context.Context, task domain.IngestionTask) error) error
}
