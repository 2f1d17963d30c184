package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/metrics"
	"shopmirror/internal/ports"

	"github.com/rs/zerolog"
)

// SyncService drives one tenant's ingestion pass: determine the sync window,
// walk customers, products and orders in that order, and advance the
// watermark only when the whole pass succeeded.
// It depends on ports (interfaces) not concrete implementations.
type SyncService struct {
	tenants ports.TenantRepository
	mirror  ports.MirrorRepository
	gateway ports.StorefrontGateway
	events  ports.SyncEventPublisher
	logger  zerolog.Logger
	now     func() time.Time
}

// NewSyncService creates a new sync service.
func NewSyncService(
	tenants ports.TenantRepository,
	mirror ports.MirrorRepository,
	gateway ports.StorefrontGateway,
	events ports.SyncEventPublisher,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		tenants: tenants,
		mirror:  mirror,
		gateway: gateway,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// SyncTenant validates the raw identifier, loads the tenant and runs one
// pass. Identifier errors are rejected before any remote call.
func (s *SyncService) SyncTenant(ctx context.Context, rawID string) (*domain.EntityCounts, error) {
	id, err := ParseTenantID(rawID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.runPass(ctx, tenant)
}

// SyncAllActive fans out one pass per active tenant. A failing tenant never
// aborts its siblings; every outcome is collected and returned.
func (s *SyncService) SyncAllActive(ctx context.Context) ([]domain.TenantSyncResult, error) {
	tenants, err := s.tenants.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("tenants", len(tenants)).Msg("Starting scheduled ingestion over active tenants")

	results := make([]domain.TenantSyncResult, 0, len(tenants))
	for _, tenant := range tenants {
		counts, err := s.runPass(ctx, tenant)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("store", tenant.StoreDomain).
				Msg("Ingestion pass failed")
			results = append(results, domain.TenantSyncResult{
				Tenant: tenant.StoreDomain,
				Status: domain.SyncStatusFailed,
				Error:  err.Error(),
			})
			continue
		}
		results = append(results, domain.TenantSyncResult{
			Tenant: tenant.StoreDomain,
			Status: domain.SyncStatusSuccess,
			Counts: counts,
		})
	}
	return results, nil
}

// runPass executes the strictly sequential pass for one tenant. The window
// is computed once and passed into every entity walk; customers and products
// must be fully present before orders so foreign keys resolve within the
// same pass.
func (s *SyncService) runPass(ctx context.Context, tenant *domain.Tenant) (*domain.EntityCounts, error) {
	window := domain.NewSyncWindow(tenant.LastSyncedAt)
	cred := tenant.Credential()

	s.logger.Info().
		Str("store", tenant.StoreDomain).
		Bool("incremental", window.Incremental()).
		Str("filter", window.Filter()).
		Msg("Sync started")

	var counts domain.EntityCounts
	var err error

	counts.Customers, err = s.gateway.EachCustomer(ctx, cred, window, func(c *domain.RemoteCustomer) error {
		return s.mirror.UpsertCustomer(ctx, tenant.ID, c)
	})
	if err != nil {
		s.finishPass(ctx, tenant, counts, domain.SyncStatusFailed)
		return nil, fmt.Errorf("customer sync failed: %w", err)
	}

	counts.Products, err = s.gateway.EachProduct(ctx, cred, window, func(p *domain.RemoteProduct) error {
		return s.mirror.UpsertProduct(ctx, tenant.ID, p)
	})
	if err != nil {
		s.finishPass(ctx, tenant, counts, domain.SyncStatusFailed)
		return nil, fmt.Errorf("product sync failed: %w", err)
	}

	counts.Orders, err = s.gateway.EachOrder(ctx, cred, window, func(o *domain.RemoteOrder) error {
		return s.reconcileOrder(ctx, tenant.ID, o)
	})
	if err != nil {
		s.finishPass(ctx, tenant, counts, domain.SyncStatusFailed)
		return nil, fmt.Errorf("order sync failed: %w", err)
	}

	if err := s.tenants.AdvanceWatermark(ctx, tenant.ID, s.now()); err != nil {
		s.finishPass(ctx, tenant, counts, domain.SyncStatusFailed)
		return nil, fmt.Errorf("failed to advance watermark: %w", err)
	}

	s.logger.Info().
		Str("store", tenant.StoreDomain).
		Int("customers", counts.Customers).
		Int("products", counts.Products).
		Int("orders", counts.Orders).
		Msg("Sync completed")

	s.finishPass(ctx, tenant, counts, domain.SyncStatusSuccess)
	return &counts, nil
}

// reconcileOrder upserts one order node. A customer reference that resolves
// to no local row leaves the foreign key null; the same applies per line
// item product. When the node carries a line item collection the stored set
// is fully replaced, never merged.
func (s *SyncService) reconcileOrder(ctx context.Context, tenantID int64, o *domain.RemoteOrder) error {
	var customerID *int64
	if o.Customer != nil && o.Customer.ID != "" {
		id, err := s.mirror.LookupCustomerID(ctx, tenantID, o.Customer.ID)
		if err != nil {
			return err
		}
		customerID = id
	}

	orderID, err := s.mirror.UpsertOrder(ctx, tenantID, o, customerID)
	if err != nil {
		return err
	}

	if !o.CarriesLineItems() {
		return nil
	}

	lineItems := o.Items()
	items := make([]domain.OrderItemRecord, 0, len(lineItems))
	for _, li := range lineItems {
		var productID *int64
		if li.Product != nil && li.Product.ID != "" {
			id, err := s.mirror.LookupProductID(ctx, tenantID, li.Product.ID)
			if err != nil {
				return err
			}
			productID = id
		}
		items = append(items, domain.OrderItemRecord{
			ProductID: productID,
			Title:     li.Title,
			Quantity:  li.Quantity,
			Price:     li.OriginalTotalSet.ShopMoney.Amount,
		})
	}
	return s.mirror.ReplaceOrderItems(ctx, orderID, items)
}

// finishPass records pass metrics and announces the outcome. Event publish
// failures are logged, never raised.
func (s *SyncService) finishPass(ctx context.Context, tenant *domain.Tenant, counts domain.EntityCounts, status string) {
	metrics.SyncPasses.WithLabelValues(status).Inc()
	metrics.EntitiesReconciled.WithLabelValues("customers").Add(float64(counts.Customers))
	metrics.EntitiesReconciled.WithLabelValues("products").Add(float64(counts.Products))
	metrics.EntitiesReconciled.WithLabelValues("orders").Add(float64(counts.Orders))

	event := domain.SyncEvent{
		TenantID:    tenant.ID,
		StoreDomain: tenant.StoreDomain,
		Status:      status,
		Counts:      counts,
		OccurredAt:  s.now(),
	}
	if err := s.events.PublishSyncEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("store", tenant.StoreDomain).Msg("Failed to publish sync event")
	}
}

// ParseTenantID validates an integer-like tenant identifier.
func ParseTenantID(rawID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTenantID, rawID)
	}
	return id, nil
}
