package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/openbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaxRateRepository implements billing.TaxRateRepository using GORM
type GormTaxRateRepository struct {
	db *gorm.DB
}

// NewGormTaxRateRepository creates a new GormTaxRateRepository
func NewGormTaxRateRepository(db *gorm.DB) *GormTaxRateRepository {
	return &GormTaxRateRepository{db: db}
}

// FindByIDForTenant finds a tax rate by ID for a specific tenant
func (r *GormTaxRateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.TaxRate, error) {
	var model models.TaxRateModel
	err := sessionFromContext(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all tax rates for a tenant, default rates first
func (r *GormTaxRateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]billing.TaxRate, error) {
	var rows []models.TaxRateModel
	err := sessionFromContext(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Order("is_default DESC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	rates := make([]billing.TaxRate, 0, len(rows))
	for i := range rows {
		rates = append(rates, *rows[i].ToDomain())
	}
	return rates, nil
}

// Save creates or updates a tax rate
func (r *GormTaxRateRepository) Save(ctx context.Context, rate *billing.TaxRate) error {
	model := models.TaxRateModelFromDomain(rate)
	return sessionFromContext(ctx, r.db).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}

// ClearDefaultForTenant unsets the default flag on every rate of a tenant
func (r *GormTaxRateRepository) ClearDefaultForTenant(ctx context.Context, tenantID uuid.UUID) error {
	return sessionFromContext(ctx, r.db).
		Model(&models.TaxRateModel{}).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		Update("is_default", false).Error
}

// DeleteForTenant soft deletes a tax rate for a tenant
func (r *GormTaxRateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := sessionFromContext(ctx, r.db).
		Delete(&models.TaxRateModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
