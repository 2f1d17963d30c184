package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const syncEventsChannel = "shopmirror.sync.events"

// RedisSyncEventPublisher broadcasts pass outcomes on a Redis pub/sub
// channel for downstream consumers such as dashboards.
type RedisSyncEventPublisher struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisSyncEventPublisher creates a publisher for the given Redis address.
func NewRedisSyncEventPublisher(addr string, logger zerolog.Logger) ports.SyncEventPublisher {
	return &RedisSyncEventPublisher{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		logger: logger,
	}
}

// PublishSyncEvent sends the event as JSON on the sync events channel.
func (p *RedisSyncEventPublisher) PublishSyncEvent(ctx context.Context, event domain.SyncEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode sync event: %w", err)
	}

	if err := p.client.Publish(ctx, syncEventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish sync event: %w", err)
	}

	p.logger.Debug().
		Int64("tenantId", event.TenantID).
		Str("status", event.Status).
		Msg("Published sync event")
	return nil
}

// NopSyncEventPublisher discards events. Used when no Redis address is
// configured.
type NopSyncEventPublisher struct{}

func (NopSyncEventPublisher) PublishSyncEvent(context.Context, domain.SyncEvent) error {
	return nil
}
