package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// CheckoutHandler reconciles checkout webhook events into the mirror,
// reusing the same upsert primitive as the polled entities.
type CheckoutHandler struct {
	checkouts ports.CheckoutRepository
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a new checkout webhook handler.
func NewCheckoutHandler(checkouts ports.CheckoutRepository, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		logger:    logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
func (h *CheckoutHandler) CanHandle(topic string) bool {
	return topic == "checkouts/create" || topic == "checkouts/update"
}

// Handle upserts the checkout carried by the event payload.
func (h *CheckoutHandler) Handle(ctx context.Context, tenantID int64, topic string, payload []byte) error {
	var event domain.CheckoutEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to parse checkout webhook payload: %w", err)
	}

	if err := h.checkouts.UpsertCheckout(ctx, tenantID, &event); err != nil {
		return err
	}

	h.logger.Info().
		Str("topic", topic).
		Int64("tenantId", tenantID).
		Str("checkoutId", event.RemoteID()).
		Msg("Checkout event reconciled")
	return nil
}
