package repository

import (
	"fmt"

	"shopmirror/internal/infrastructure/repository/entity"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the relational mirror and keeps its schema current.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the mirror tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.TenantModel{},
		&entity.CustomerModel{},
		&entity.ProductModel{},
		&entity.OrderModel{},
		&entity.OrderItemModel{},
		&entity.CheckoutModel{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
