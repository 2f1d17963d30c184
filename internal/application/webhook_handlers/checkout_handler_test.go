package webhook_handlers

import (
	"context"
	"testing"

	"shopmirror/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckouts struct {
	upserted []*domain.CheckoutEvent
}

func (f *fakeCheckouts) UpsertCheckout(_ context.Context, _ int64, ev *domain.CheckoutEvent) error {
	f.upserted = append(f.upserted, ev)
	return nil
}

func TestCheckoutHandler_CanHandle(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckouts{}, zerolog.Nop())

	assert.True(t, h.CanHandle("checkouts/create"))
	assert.True(t, h.CanHandle("checkouts/update"))
	assert.False(t, h.CanHandle("orders/create"))
	assert.False(t, h.CanHandle(""))
}

func TestCheckoutHandler_Handle(t *testing.T) {
	t.Run("upserts the checkout from the payload", func(t *testing.T) {
		checkouts := &fakeCheckouts{}
		h := NewCheckoutHandler(checkouts, zerolog.Nop())

		payload := []byte(`{
			"id": 900001,
			"cart_token": "tok_abc",
			"email": "buyer@example.com",
			"total_price": "42.00",
			"currency": "EUR",
			"created_at": "2026-03-01T08:00:00Z"
		}`)

		err := h.Handle(context.Background(), 1, "checkouts/create", payload)

		require.NoError(t, err)
		require.Len(t, checkouts.upserted, 1)
		assert.Equal(t, "900001", checkouts.upserted[0].RemoteID())
		assert.Equal(t, "buyer@example.com", checkouts.upserted[0].Email)
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		checkouts := &fakeCheckouts{}
		h := NewCheckoutHandler(checkouts, zerolog.Nop())

		err := h.Handle(context.Background(), 1, "checkouts/create", []byte("{not json"))

		require.Error(t, err)
		assert.Empty(t, checkouts.upserted)
	})
}
