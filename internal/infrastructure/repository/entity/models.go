package entity

import (
	"time"

	"shopmirror/internal/domain"

	"github.com/shopspring/decimal"
)

// TenantModel is a tenant row. Tenant onboarding happens outside this
// service; rows are only read and their watermark advanced here.
type TenantModel struct {
	ID           int64  `gorm:"primaryKey"`
	StoreName    string `gorm:"not null"`
	StoreDomain  string `gorm:"uniqueIndex;not null"`
	AccessToken  string `gorm:"not null"`
	IsActive     bool   `gorm:"default:true"`
	CreatedAt    time.Time
	LastSyncedAt *time.Time
}

func (TenantModel) TableName() string { return "tenants" }

// ToDomain converts the row to a domain tenant.
func (m *TenantModel) ToDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:           m.ID,
		StoreName:    m.StoreName,
		StoreDomain:  m.StoreDomain,
		AccessToken:  m.AccessToken,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		LastSyncedAt: m.LastSyncedAt,
	}
}

// CustomerModel is a mirrored customer row, unique per (tenant_id, remote_id).
// CreatedAt holds the remote creation timestamp; UpdatedAt is the local
// refresh timestamp.
type CustomerModel struct {
	ID          int64  `gorm:"primaryKey"`
	TenantID    int64  `gorm:"not null;uniqueIndex:idx_customers_tenant_remote,priority:1"`
	RemoteID    string `gorm:"not null;uniqueIndex:idx_customers_tenant_remote,priority:2"`
	FirstName   string
	LastName    string
	Email       string
	TotalSpent  decimal.Decimal `gorm:"type:numeric"`
	OrdersCount int64
	CreatedAt   *time.Time
	UpdatedAt   time.Time
}

func (CustomerModel) TableName() string { return "customers" }

// ProductModel is a mirrored product row, unique per (tenant_id, remote_id).
type ProductModel struct {
	ID          int64  `gorm:"primaryKey"`
	TenantID    int64  `gorm:"not null;uniqueIndex:idx_products_tenant_remote,priority:1"`
	RemoteID    string `gorm:"not null;uniqueIndex:idx_products_tenant_remote,priority:2"`
	Title       string `gorm:"not null"`
	BodyHTML    string
	Vendor      string
	ProductType string
	Status      string
	CreatedAt   *time.Time
}

func (ProductModel) TableName() string { return "products" }

// OrderModel is a mirrored order row. CustomerID is nullable: the remote
// customer may be unresolved locally.
type OrderModel struct {
	ID                int64  `gorm:"primaryKey"`
	TenantID          int64  `gorm:"not null;uniqueIndex:idx_orders_tenant_remote,priority:1"`
	RemoteID          string `gorm:"not null;uniqueIndex:idx_orders_tenant_remote,priority:2"`
	CustomerID        *int64
	TotalPrice        decimal.Decimal `gorm:"type:numeric;not null"`
	Currency          string
	FinancialStatus   string
	FulfillmentStatus string
	CreatedAt         *time.Time
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel is a line item snapshot. Rows live and die with each
// order-sync event; ProductID is nullable when the product is locally absent.
type OrderItemModel struct {
	ID        int64 `gorm:"primaryKey"`
	OrderID   int64 `gorm:"not null;index"`
	ProductID *int64
	Quantity  int             `gorm:"default:1"`
	Price     decimal.Decimal `gorm:"type:numeric"`
	Title     string
}

func (OrderItemModel) TableName() string { return "order_items" }

// CheckoutModel is a webhook-sourced checkout row, unique per
// (tenant_id, remote_id) like the polled entities.
type CheckoutModel struct {
	ID         int64  `gorm:"primaryKey"`
	TenantID   int64  `gorm:"not null;uniqueIndex:idx_checkouts_tenant_remote,priority:1"`
	RemoteID   string `gorm:"not null;uniqueIndex:idx_checkouts_tenant_remote,priority:2"`
	CartToken  string
	Email      string
	TotalPrice decimal.Decimal `gorm:"type:numeric"`
	Currency   string
	Abandoned  bool
	CreatedAt  *time.Time
	UpdatedAt  time.Time
}

func (CheckoutModel) TableName() string { return "checkouts" }
