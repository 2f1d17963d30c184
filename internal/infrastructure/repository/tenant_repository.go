package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/repository/entity"
	"shopmirror/internal/ports"

	"gorm.io/gorm"
)

// GormTenantRepository implements TenantRepository using GORM.
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository.
func NewGormTenantRepository(db *gorm.DB) ports.TenantRepository {
	return &GormTenantRepository{db: db}
}

func (r *GormTenantRepository) FindByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	var model entity.TenantModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *GormTenantRepository) FindByDomain(ctx context.Context, storeDomain string) (*domain.Tenant, error) {
	var model entity.TenantModel
	err := r.db.WithContext(ctx).First(&model, "store_domain = ?", storeDomain).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant by domain: %w", err)
	}
	return model.ToDomain(), nil
}

func (r *GormTenantRepository) ListActive(ctx context.Context) ([]*domain.Tenant, error) {
	var models []entity.TenantModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active tenants: %w", err)
	}

	tenants := make([]*domain.Tenant, 0, len(models))
	for i := range models {
		tenants = append(tenants, models[i].ToDomain())
	}
	return tenants, nil
}

// AdvanceWatermark moves the tenant's sync boundary forward. Callers invoke
// it only after a pass completed without error.
func (r *GormTenantRepository) AdvanceWatermark(ctx context.Context, id int64, to time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entity.TenantModel{}).
		Where("id = ?", id).
		Update("last_synced_at", to)
	if result.Error != nil {
		return fmt.Errorf("failed to advance watermark: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}
