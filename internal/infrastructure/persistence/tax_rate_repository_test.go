package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM handle backed by a mocked SQL connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

	return gormDB, mock, mockDB
}

func TestGormTaxRateRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds existing tax rate", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTaxRateRepository(gormDB)

		rateID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "name", "rate_percent", "is_default"}).
			AddRow(rateID, tenantID, 1, "Standard 19%", decimal.NewFromInt(19), true)

		mock.ExpectQuery(`SELECT \* FROM "tax_rates" WHERE tenant_id = \$1 AND id = \$2 AND .* LIMIT .*`).
			WithArgs(tenantID, rateID, 1).
			WillReturnRows(rows)

		rate, err := repo.FindByIDForTenant(context.Background(), tenantID, rateID)

		assert.NoError(t, err)
		assert.NotNil(t, rate)
		assert.Equal(t, rateID, rate.ID)
		assert.Equal(t, "Standard 19%", rate.Name)
		assert.True(t, rate.IsDefault)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing tax rate", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTaxRateRepository(gormDB)

		rateID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "tax_rates" WHERE tenant_id = \$1 AND id = \$2 AND .* LIMIT .*`).
			WithArgs(tenantID, rateID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		rate, err := repo.FindByIDForTenant(context.Background(), tenantID, rateID)

		assert.Error(t, err)
		assert.Nil(t, rate)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTaxRateRepository_FindAllForTenant(t *testing.T) {
	t.Run("lists rates with defaults first", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTaxRateRepository(gormDB)

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "name", "rate_percent", "is_default"}).
			AddRow(uuid.New(), tenantID, 1, "Standard 19%", decimal.NewFromInt(19), true).
			AddRow(uuid.New(), tenantID, 1, "Reduced 7%", decimal.NewFromInt(7), false)

		mock.ExpectQuery(`SELECT \* FROM "tax_rates" WHERE tenant_id = \$1 AND .* ORDER BY is_default DESC, name ASC`).
			WithArgs(tenantID).
			WillReturnRows(rows)

		rates, err := repo.FindAllForTenant(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Len(t, rates, 2)
		assert.True(t, rates[0].IsDefault)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTaxRateRepository_ClearDefaultForTenant(t *testing.T) {
	t.Run("unsets default flags", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTaxRateRepository(gormDB)

		tenantID := uuid.New()

		mock.ExpectExec(`UPDATE "tax_rates" SET`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.ClearDefaultForTenant(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTaxRateRepository_DeleteForTenant(t *testing.T) {
	t.Run("deletes existing tax rate", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTaxRateRepository(gormDB)

		tenantID := uuid.New()
		rateID := uuid.New()

		mock.ExpectExec(`UPDATE "tax_rates" SET "deleted_at"=`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteForTenant(context.Background(), tenantID, rateID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing deleted", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTaxRateRepository(gormDB)

		mock.ExpectExec(`UPDATE "tax_rates" SET "deleted_at"=`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteForTenant(context.Background(), uuid.New(), uuid.New())

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTaxRateRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements TaxRateRepository interface", func(t *testing.T) {
		gormDB, _, mockDB := newMockDB(t)
		defer mockDB.Close()

		var _ billing.TaxRateRepository = NewGormTaxRateRepository(gormDB)
	})
}
