package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"shopmirror/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockTenantRepository creates a GormTenantRepository over a mocked SQL connection
func newMockTenantRepository(t *testing.T) (*GormTenantRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &GormTenantRepository{db: gormDB}, mock, mockDB
}

func tenantColumns() []string {
	return []string{"id", "store_name", "store_domain", "access_token", "is_active", "created_at", "last_synced_at"}
}

func TestGormTenantRepository_FindByID(t *testing.T) {
	t.Run("finds an existing tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockTenantRepository(t)
		defer mockDB.Close()

		synced := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows(tenantColumns()).
			AddRow(int64(1), "Demo Store", "demo.myshopify.com", "shpat_x", true, time.Now(), synced)

		mock.ExpectQuery(`SELECT \* FROM "tenants" WHERE id = \$1`).
			WithArgs(int64(1), 1).
			WillReturnRows(rows)

		tenant, err := repo.FindByID(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, "demo.myshopify.com", tenant.StoreDomain)
		assert.Equal(t, "shpat_x", tenant.AccessToken)
		require.NotNil(t, tenant.LastSyncedAt)
		assert.True(t, synced.Equal(*tenant.LastSyncedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a missing row to the domain error", func(t *testing.T) {
		repo, mock, mockDB := newMockTenantRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "tenants" WHERE id = \$1`).
			WithArgs(int64(42), 1).
			WillReturnRows(sqlmock.NewRows(tenantColumns()))

		_, err := repo.FindByID(context.Background(), 42)

		assert.ErrorIs(t, err, domain.ErrTenantNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTenantRepository_FindByDomain(t *testing.T) {
	repo, mock, mockDB := newMockTenantRepository(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows(tenantColumns()).
		AddRow(int64(7), "Demo Store", "demo.myshopify.com", "shpat_x", true, time.Now(), nil)

	mock.ExpectQuery(`SELECT \* FROM "tenants" WHERE store_domain = \$1`).
		WithArgs("demo.myshopify.com", 1).
		WillReturnRows(rows)

	tenant, err := repo.FindByDomain(context.Background(), "demo.myshopify.com")

	require.NoError(t, err)
	assert.Equal(t, int64(7), tenant.ID)
	assert.Nil(t, tenant.LastSyncedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTenantRepository_ListActive(t *testing.T) {
	repo, mock, mockDB := newMockTenantRepository(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows(tenantColumns()).
		AddRow(int64(1), "First", "first.myshopify.com", "shpat_a", true, time.Now(), nil).
		AddRow(int64(2), "Second", "second.myshopify.com", "shpat_b", true, time.Now(), nil)

	mock.ExpectQuery(`SELECT \* FROM "tenants" WHERE is_active = \$1 ORDER BY id`).
		WithArgs(true).
		WillReturnRows(rows)

	tenants, err := repo.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "first.myshopify.com", tenants[0].StoreDomain)
	assert.Equal(t, "second.myshopify.com", tenants[1].StoreDomain)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTenantRepository_AdvanceWatermark(t *testing.T) {
	t.Run("updates the watermark", func(t *testing.T) {
		repo, mock, mockDB := newMockTenantRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "tenants" SET "last_synced_at"=\$1 WHERE id = \$2`).
			WithArgs(sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AdvanceWatermark(context.Background(), 1, time.Now())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a missing tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockTenantRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "tenants" SET "last_synced_at"=\$1 WHERE id = \$2`).
			WithArgs(sqlmock.AnyArg(), int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AdvanceWatermark(context.Background(), 42, time.Now())

		assert.ErrorIs(t, err, domain.ErrTenantNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
