package ports

import (
	"context"
	"time"

	"shopmirror/internal/domain"
)

// TenantRepository defines tenant persistence.
type TenantRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Tenant, error)
	FindByDomain(ctx context.Context, storeDomain string) (*domain.Tenant, error)
	ListActive(ctx context.Context) ([]*domain.Tenant, error)
	AdvanceWatermark(ctx context.Context, id int64, to time.Time) error
}

// MirrorRepository reconciles remote records into the relational mirror.
// Every upsert is idempotent and keyed by (tenant_id, remote_id); foreign
// keys are resolved by the caller through the Lookup methods, where a miss
// yields a nil id, never an error.
type MirrorRepository interface {
	UpsertCustomer(ctx context.Context, tenantID int64, c *domain.RemoteCustomer) error
	UpsertProduct(ctx context.Context, tenantID int64, p *domain.RemoteProduct) error
	// UpsertOrder returns the local order id for line item replacement.
	UpsertOrder(ctx context.Context, tenantID int64, o *domain.RemoteOrder, customerID *int64) (int64, error)
	// ReplaceOrderItems deletes the order's stored items and inserts the
	// given set, as one transaction.
	ReplaceOrderItems(ctx context.Context, orderID int64, items []domain.OrderItemRecord) error

	LookupCustomerID(ctx context.Context, tenantID int64, remoteID string) (*int64, error)
	LookupProductID(ctx context.Context, tenantID int64, remoteID string) (*int64, error)
}

// CheckoutRepository reconciles webhook-sourced checkout events, reusing the
// mirror's upsert discipline for a push-delivered entity type.
type CheckoutRepository interface {
	UpsertCheckout(ctx context.Context, tenantID int64, ev *domain.CheckoutEvent) error
}
