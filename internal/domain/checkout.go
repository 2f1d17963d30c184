package domain

import (
	"encoding/json"
	"time"
)

// CheckoutEvent is a checkout webhook payload pushed by the upstream
// platform. Unlike the polled entities it arrives in the REST shape, with
// snake_case fields and a numeric id.
type CheckoutEvent struct {
	ID         json.Number `json:"id"`
	CartToken  string      `json:"cart_token"`
	Email      string      `json:"email"`
	TotalPrice string      `json:"total_price"`
	Currency   string      `json:"currency"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// RemoteID returns the event's id in the form used as upsert key.
func (c *CheckoutEvent) RemoteID() string {
	return c.ID.String()
}
