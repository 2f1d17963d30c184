package ports

import (
	"context"

	"shopmirror/internal/domain"
)

// SyncEventPublisher announces pass outcomes to external observers. Failures
// to publish never fail the pass itself.
type SyncEventPublisher interface {
	PublishSyncEvent(ctx context.Context, event domain.SyncEvent) error
}
