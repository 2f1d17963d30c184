package application

import (
	"context"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/metrics"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

const (
	// MaxTaskRetries bounds how often a failing ingestion task is
	// republished before it is dropped.
	MaxTaskRetries = 3

	defaultRetryDelay = 5 * time.Second
)

// Worker consumes ingestion tasks strictly one at a time and applies the
// bounded retry policy: a failed task is republished with an incremented
// retry count; an exhausted one is dropped. The original delivery is always
// acknowledged by the queue adapter, so the broker itself never retries.
type Worker struct {
	queue      ports.TaskQueue
	syncs      *SyncService
	logger     zerolog.Logger
	maxRetries int
	retryDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewWorker creates a worker over the given queue and sync service.
func NewWorker(queue ports.TaskQueue, syncs *SyncService, logger zerolog.Logger) *Worker {
	return &Worker{
		queue:      queue,
		syncs:      syncs,
		logger:     logger,
		maxRetries: MaxTaskRetries,
		retryDelay: defaultRetryDelay,
		sleep:      sleepContext,
	}
}

// Run blocks consuming tasks until the context is cancelled or the queue
// consume loop fails.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("Worker started, waiting for ingestion tasks")
	return w.queue.Consume(ctx, w.handle)
}

func (w *Worker) handle(ctx context.Context, task domain.IngestionTask) error {
	w.logger.Info().
		Str("tenantId", task.TenantID).
		Int("attempt", task.RetryCount+1).
		Int("maxAttempts", w.maxRetries+1).
		Msg("Received ingestion task")

	counts, err := w.syncs.SyncTenant(ctx, task.TenantID)
	if err == nil {
		metrics.QueueTasks.WithLabelValues("completed").Inc()
		w.logger.Info().
			Str("tenantId", task.TenantID).
			Int("customers", counts.Customers).
			Int("products", counts.Products).
			Int("orders", counts.Orders).
			Msg("Ingestion task completed")
		return nil
	}

	if task.RetryCount < w.maxRetries {
		w.logger.Warn().
			Err(err).
			Str("tenantId", task.TenantID).
			Int("retryCount", task.RetryCount).
			Dur("delay", w.retryDelay).
			Msg("Ingestion task failed, scheduling retry")
		if sleepErr := w.sleep(ctx, w.retryDelay); sleepErr != nil {
			return sleepErr
		}
		retry := domain.IngestionTask{
			TenantID:   task.TenantID,
			RetryCount: task.RetryCount + 1,
		}
		if pubErr := w.queue.Publish(ctx, retry); pubErr != nil {
			return fmt.Errorf("failed to republish task: %w", pubErr)
		}
		metrics.QueueTasks.WithLabelValues("retried").Inc()
		return nil
	}

	// TODO: route exhausted tasks to a dead-letter queue.
	metrics.QueueTasks.WithLabelValues("dropped").Inc()
	w.logger.Error().
		Err(err).
		Str("tenantId", task.TenantID).
		Int("retryCount", task.RetryCount).
		Msg("Retry budget exhausted, dropping ingestion task")
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
