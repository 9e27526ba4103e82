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

// GormEstimateRepository implements billing.EstimateRepository using GORM
type GormEstimateRepository struct {
	db *gorm.DB
}

// NewGormEstimateRepository creates a new GormEstimateRepository
func NewGormEstimateRepository(db *gorm.DB) *GormEstimateRepository {
	return &GormEstimateRepository{db: db}
}

// FindByIDForTenant finds an estimate by ID for a specific tenant
func (r *GormEstimateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Estimate, error) {
	db := sessionFromContext(ctx, r.db)

	var model models.EstimateModel
	err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	items, err := loadLineItems(db, model.ID, models.DocTypeEstimate)
	if err != nil {
		return nil, err
	}
	model.Items = items
	return model.ToDomain(), nil
}

// FindAllForTenant finds estimates for a tenant with filtering
func (r *GormEstimateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.EstimateFilter) ([]billing.Estimate, error) {
	db := sessionFromContext(ctx, r.db)

	query := r.applyFilter(db.Model(&models.EstimateModel{}).Where("tenant_id = ?", tenantID), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.EstimateModel
	if err := query.Order("issue_date DESC, number DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	estimates := make([]billing.Estimate, 0, len(rows))
	for i := range rows {
		items, err := loadLineItems(db, rows[i].ID, models.DocTypeEstimate)
		if err != nil {
			return nil, err
		}
		rows[i].Items = items
		estimates = append(estimates, *rows[i].ToDomain())
	}
	return estimates, nil
}

// CountForTenant counts estimates for a tenant with filtering
func (r *GormEstimateRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.EstimateFilter) (int64, error) {
	db := sessionFromContext(ctx, r.db)
	var count int64
	err := r.applyFilter(db.Model(&models.EstimateModel{}).Where("tenant_id = ?", tenantID), filter).
		Count(&count).Error
	return count, err
}

// Save creates or updates an estimate together with its line items
func (r *GormEstimateRepository) Save(ctx context.Context, estimate *billing.Estimate) error {
	db := sessionFromContext(ctx, r.db)
	model := models.EstimateModelFromDomain(estimate)

	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Omit("Items").Create(model).Error; err != nil {
		return err
	}
	return replaceLineItems(db, model.ID, models.DocTypeEstimate, model.Items)
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormEstimateRepository) SaveWithLock(ctx context.Context, estimate *billing.Estimate) error {
	db := sessionFromContext(ctx, r.db)
	model := models.EstimateModelFromDomain(estimate)
	model.Version = estimate.Version + 1

	result := db.Model(&models.EstimateModel{}).
		Where("id = ? AND version = ?", estimate.ID, estimate.Version).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	estimate.Version = model.Version
	return replaceLineItems(db, model.ID, models.DocTypeEstimate, model.Items)
}

// DeleteForTenant soft deletes an estimate for a tenant
func (r *GormEstimateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := sessionFromContext(ctx, r.db).
		Delete(&models.EstimateModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateNumber generates the next estimate number for a tenant.
// Format: EST-YYYY-XXXX, sequential within the year.
func (r *GormEstimateRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return generateDocumentNumber(sessionFromContext(ctx, r.db), &models.EstimateModel{}, tenantID, "EST")
}

// applyFilter applies filter options except pagination. Estimate status is
// stored, not derived, so it filters as a plain column.
func (r *GormEstimateRepository) applyFilter(query *gorm.DB, filter billing.EstimateFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.FromDate != nil {
		query = query.Where("issue_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("issue_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}
