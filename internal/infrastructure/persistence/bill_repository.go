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

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByIDForTenant finds a bill by ID for a specific tenant
func (r *GormBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	db := sessionFromContext(ctx, r.db)

	var model models.BillModel
	err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	items, err := loadLineItems(db, model.ID, models.DocTypeBill)
	if err != nil {
		return nil, err
	}
	model.Items = items
	return model.ToDomain(), nil
}

// FindAllForTenant finds bills for a tenant with filtering
func (r *GormBillRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.BillFilter) ([]billing.Bill, error) {
	db := sessionFromContext(ctx, r.db)

	query := r.applyFilter(db.Model(&models.BillModel{}).Where("tenant_id = ?", tenantID), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.BillModel
	if err := query.Order("bill_date DESC, number DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	bills := make([]billing.Bill, 0, len(rows))
	for i := range rows {
		items, err := loadLineItems(db, rows[i].ID, models.DocTypeBill)
		if err != nil {
			return nil, err
		}
		rows[i].Items = items
		bills = append(bills, *rows[i].ToDomain())
	}
	return bills, nil
}

// FindOpenByVendor finds payable bills for a vendor, oldest first
func (r *GormBillRepository) FindOpenByVendor(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billing.Bill, error) {
	db := sessionFromContext(ctx, r.db)

	var rows []models.BillModel
	err := db.
		Where("tenant_id = ? AND vendor_id = ?", tenantID, vendorID).
		Where("cancelled = ?", false).
		Where("paid_amount < total").
		Order("bill_date ASC, number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	bills := make([]billing.Bill, 0, len(rows))
	for i := range rows {
		items, err := loadLineItems(db, rows[i].ID, models.DocTypeBill)
		if err != nil {
			return nil, err
		}
		rows[i].Items = items
		bills = append(bills, *rows[i].ToDomain())
	}
	return bills, nil
}

// CountForTenant counts bills for a tenant with filtering
func (r *GormBillRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.BillFilter) (int64, error) {
	db := sessionFromContext(ctx, r.db)
	var count int64
	err := r.applyFilter(db.Model(&models.BillModel{}).Where("tenant_id = ?", tenantID), filter).
		Count(&count).Error
	return count, err
}

// Save creates or updates a bill together with its line items
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	db := sessionFromContext(ctx, r.db)
	model := models.BillModelFromDomain(bill)

	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Omit("Items").Create(model).Error; err != nil {
		return err
	}
	return replaceLineItems(db, model.ID, models.DocTypeBill, model.Items)
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	db := sessionFromContext(ctx, r.db)
	model := models.BillModelFromDomain(bill)
	model.Version = bill.Version + 1

	result := db.Model(&models.BillModel{}).
		Where("id = ? AND version = ?", bill.ID, bill.Version).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	bill.Version = model.Version
	return replaceLineItems(db, model.ID, models.DocTypeBill, model.Items)
}

// DeleteForTenant soft deletes a bill for a tenant
func (r *GormBillRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := sessionFromContext(ctx, r.db).
		Delete(&models.BillModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateNumber generates the next bill number for a tenant.
// Format: BILL-YYYY-XXXX, sequential within the year.
func (r *GormBillRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return generateDocumentNumber(sessionFromContext(ctx, r.db), &models.BillModel{}, tenantID, "BILL")
}

// applyFilter applies filter options except pagination
func (r *GormBillRepository) applyFilter(query *gorm.DB, filter billing.BillFilter) *gorm.DB {
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.FromDate != nil {
		query = query.Where("bill_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("bill_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Status != nil {
		query = applyDerivedStatusCondition(query, *filter.Status, false)
	}
	return query
}
