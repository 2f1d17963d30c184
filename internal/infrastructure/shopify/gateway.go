package shopify

import (
	"context"
	"encoding/json"
	"fmt"

	"shopmirror/internal/domain"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// Gateway is the typed facade over the admin client and pager. It walks one
// entity collection per call, decoding each raw node into its domain shape.
type Gateway struct {
	api    ports.AdminAPI
	logger zerolog.Logger
}

// NewGateway creates a gateway over the given admin API.
func NewGateway(api ports.AdminAPI, logger zerolog.Logger) ports.StorefrontGateway {
	return &Gateway{
		api:    api,
		logger: logger,
	}
}

func (g *Gateway) EachCustomer(ctx context.Context, cred domain.Credential, window domain.SyncWindow, fn func(*domain.RemoteCustomer) error) (int, error) {
	spec := pageSpec{query: customersQuery, field: "customers", first: customersPageSize}
	return eachPage(ctx, g.api, cred, spec, window.Filter(), func(node json.RawMessage) error {
		var customer domain.RemoteCustomer
		if err := json.Unmarshal(node, &customer); err != nil {
			return fmt.Errorf("failed to decode customer node: %w", err)
		}
		return fn(&customer)
	})
}

func (g *Gateway) EachProduct(ctx context.Context, cred domain.Credential, window domain.SyncWindow, fn func(*domain.RemoteProduct) error) (int, error) {
	spec := pageSpec{query: productsQuery, field: "products", first: productsPageSize}
	return eachPage(ctx, g.api, cred, spec, window.Filter(), func(node json.RawMessage) error {
		var product domain.RemoteProduct
		if err := json.Unmarshal(node, &product); err != nil {
			return fmt.Errorf("failed to decode product node: %w", err)
		}
		return fn(&product)
	})
}

func (g *Gateway) EachOrder(ctx context.Context, cred domain.Credential, window domain.SyncWindow, fn func(*domain.RemoteOrder) error) (int, error) {
	spec := pageSpec{query: ordersQuery, field: "orders", first: ordersPageSize}
	return eachPage(ctx, g.api, cred, spec, window.Filter(), func(node json.RawMessage) error {
		var order domain.RemoteOrder
		if err := json.Unmarshal(node, &order); err != nil {
			return fmt.Errorf("failed to decode order node: %w", err)
		}
		return fn(&order)
	})
}
