package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/repository/entity"
	"shopmirror/internal/ports"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Placeholders written in place of customer PII when redaction is on.
const (
	redactedName  = "Redacted"
	redactedEmail = "redacted@example.com"
)

// upsertPolicy declares which columns a conflict refreshes for one entity.
// Insert writes every column; the conflict set is deliberately narrower so
// slowly-changing attributes keep their first-seen values while volatile
// aggregates stay fresh.
type upsertPolicy struct {
	conflictColumns []clause.Column
	updateColumns   []string
}

var tenantRemoteKey = []clause.Column{{Name: "tenant_id"}, {Name: "remote_id"}}

var upsertPolicies = map[string]upsertPolicy{
	"customers": {tenantRemoteKey, []string{"total_spent", "orders_count", "updated_at"}},
	"products":  {tenantRemoteKey, []string{"title", "status"}},
	"orders":    {tenantRemoteKey, []string{"financial_status", "fulfillment_status"}},
	"checkouts": {tenantRemoteKey, []string{"email", "total_price", "abandoned", "updated_at"}},
}

// MirrorOptions configures reconciliation behaviour.
type MirrorOptions struct {
	// RedactCustomerPII replaces customer names and emails with fixed
	// placeholders. It applies identically on every ingestion path.
	RedactCustomerPII bool
}

// GormMirrorRepository reconciles remote records into the mirror tables. It
// implements both MirrorRepository and CheckoutRepository: the webhook path
// reuses the same upsert primitive as the polling path.
type GormMirrorRepository struct {
	db   *gorm.DB
	opts MirrorOptions
}

// NewGormMirrorRepository creates a new GormMirrorRepository.
func NewGormMirrorRepository(db *gorm.DB, opts MirrorOptions) *GormMirrorRepository {
	return &GormMirrorRepository{db: db, opts: opts}
}

var _ ports.MirrorRepository = (*GormMirrorRepository)(nil)
var _ ports.CheckoutRepository = (*GormMirrorRepository)(nil)

// upsert is the one generic insert-or-update routine. The policy table keys
// on the model's table name.
func (r *GormMirrorRepository) upsert(ctx context.Context, table string, model any) error {
	policy, ok := upsertPolicies[table]
	if !ok {
		return fmt.Errorf("no upsert policy for table %s", table)
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   policy.conflictColumns,
			DoUpdates: clause.AssignmentColumns(policy.updateColumns),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return nil
}

func (r *GormMirrorRepository) UpsertCustomer(ctx context.Context, tenantID int64, c *domain.RemoteCustomer) error {
	firstName, lastName, email := c.FirstName, c.LastName, c.Email
	if r.opts.RedactCustomerPII {
		firstName, lastName, email = redactedName, redactedName, redactedEmail
	}
	model := &entity.CustomerModel{
		TenantID:    tenantID,
		RemoteID:    c.ID,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		TotalSpent:  parseAmount(c.AmountSpent.Amount),
		OrdersCount: c.OrdersCount(),
		CreatedAt:   remoteTime(c.CreatedAt),
		UpdatedAt:   time.Now(),
	}
	return r.upsert(ctx, "customers", model)
}

func (r *GormMirrorRepository) UpsertProduct(ctx context.Context, tenantID int64, p *domain.RemoteProduct) error {
	model := &entity.ProductModel{
		TenantID:    tenantID,
		RemoteID:    p.ID,
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Status:      p.Status,
		CreatedAt:   remoteTime(p.CreatedAt),
	}
	return r.upsert(ctx, "products", model)
}

// UpsertOrder writes the order row and returns its local id for line item
// replacement. Price and currency are immutable after the first sighting.
func (r *GormMirrorRepository) UpsertOrder(ctx context.Context, tenantID int64, o *domain.RemoteOrder, customerID *int64) (int64, error) {
	model := &entity.OrderModel{
		TenantID:          tenantID,
		RemoteID:          o.ID,
		CustomerID:        customerID,
		TotalPrice:        parseAmount(o.TotalPriceSet.ShopMoney.Amount),
		Currency:          o.TotalPriceSet.ShopMoney.CurrencyCode,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		CreatedAt:         remoteTime(o.CreatedAt),
	}
	if err := r.upsert(ctx, "orders", model); err != nil {
		return 0, err
	}

	// The conflict path leaves the model id unset; read it back.
	var row entity.OrderModel
	err := r.db.WithContext(ctx).
		Select("id").
		Take(&row, "tenant_id = ? AND remote_id = ?", tenantID, o.ID).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read back order id: %w", err)
	}
	return row.ID, nil
}

// ReplaceOrderItems swaps the order's stored line item set for the given one
// in a single transaction. Items are never merged incrementally.
func (r *GormMirrorRepository) ReplaceOrderItems(ctx context.Context, orderID int64, items []domain.OrderItemRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&entity.OrderItemModel{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		models := make([]entity.OrderItemModel, 0, len(items))
		for _, item := range items {
			models = append(models, entity.OrderItemModel{
				OrderID:   orderID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     parseAmount(item.Price),
				Title:     item.Title,
			})
		}
		return tx.Create(&models).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace order items: %w", err)
	}
	return nil
}

func (r *GormMirrorRepository) LookupCustomerID(ctx context.Context, tenantID int64, remoteID string) (*int64, error) {
	return r.lookupID(ctx, &entity.CustomerModel{}, tenantID, remoteID)
}

func (r *GormMirrorRepository) LookupProductID(ctx context.Context, tenantID int64, remoteID string) (*int64, error) {
	return r.lookupID(ctx, &entity.ProductModel{}, tenantID, remoteID)
}

// lookupID resolves a remote id to a local row id. A miss yields nil, not an
// error: callers store a null foreign key and move on.
func (r *GormMirrorRepository) lookupID(ctx context.Context, model any, tenantID int64, remoteID string) (*int64, error) {
	var row struct{ ID int64 }
	err := r.db.WithContext(ctx).
		Model(model).
		Select("id").
		Where("tenant_id = ? AND remote_id = ?", tenantID, remoteID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up local id: %w", err)
	}
	return &row.ID, nil
}

// UpsertCheckout reconciles a webhook-sourced checkout event through the
// same generic upsert primitive as the polled entities.
func (r *GormMirrorRepository) UpsertCheckout(ctx context.Context, tenantID int64, ev *domain.CheckoutEvent) error {
	model := &entity.CheckoutModel{
		TenantID:   tenantID,
		RemoteID:   ev.RemoteID(),
		CartToken:  ev.CartToken,
		Email:      ev.Email,
		TotalPrice: parseAmount(ev.TotalPrice),
		Currency:   ev.Currency,
		Abandoned:  false,
		CreatedAt:  remoteTime(ev.CreatedAt),
		UpdatedAt:  time.Now(),
	}
	return r.upsert(ctx, "checkouts", model)
}

func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func remoteTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
