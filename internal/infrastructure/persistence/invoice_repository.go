package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/openbooks/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice by ID for a specific tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	db := sessionFromContext(ctx, r.db)

	var model models.InvoiceModel
	err := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	items, err := loadLineItems(db, model.ID, models.DocTypeInvoice)
	if err != nil {
		return nil, err
	}
	model.Items = items
	return model.ToDomain(), nil
}

// FindAllForTenant finds invoices for a tenant with filtering
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	db := sessionFromContext(ctx, r.db)

	query := r.applyFilter(db.Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.InvoiceModel
	if err := query.Order("issue_date DESC, number DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, 0, len(rows))
	for i := range rows {
		items, err := loadLineItems(db, rows[i].ID, models.DocTypeInvoice)
		if err != nil {
			return nil, err
		}
		rows[i].Items = items
		invoices = append(invoices, *rows[i].ToDomain())
	}
	return invoices, nil
}

// FindOpenByCustomer finds payable invoices for a customer, oldest first
func (r *GormInvoiceRepository) FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]billing.Invoice, error) {
	db := sessionFromContext(ctx, r.db)

	var rows []models.InvoiceModel
	err := db.
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Where("cancelled = ? AND proforma = ?", false, false).
		Where("paid_amount < total").
		Order("issue_date ASC, number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, 0, len(rows))
	for i := range rows {
		items, err := loadLineItems(db, rows[i].ID, models.DocTypeInvoice)
		if err != nil {
			return nil, err
		}
		rows[i].Items = items
		invoices = append(invoices, *rows[i].ToDomain())
	}
	return invoices, nil
}

// CountForTenant counts invoices for a tenant with filtering
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	db := sessionFromContext(ctx, r.db)
	var count int64
	err := r.applyFilter(db.Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID), filter).
		Count(&count).Error
	return count, err
}

// SummarizeByCustomer aggregates billed, paid and outstanding amounts per
// customer. Cancelled invoices are excluded from every figure.
func (r *GormInvoiceRepository) SummarizeByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*billing.CustomerSummary, error) {
	db := sessionFromContext(ctx, r.db)

	var row struct {
		InvoiceCount int64
		TotalBilled  decimal.Decimal
		TotalPaid    decimal.Decimal
	}
	err := db.Model(&models.InvoiceModel{}).
		Select("COUNT(*) AS invoice_count, COALESCE(SUM(total), 0) AS total_billed, COALESCE(SUM(paid_amount), 0) AS total_paid").
		Where("tenant_id = ? AND customer_id = ? AND cancelled = ?", tenantID, customerID, false).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &billing.CustomerSummary{
		CustomerID:   customerID,
		InvoiceCount: row.InvoiceCount,
		TotalBilled:  row.TotalBilled,
		TotalPaid:    row.TotalPaid,
		Outstanding:  row.TotalBilled.Sub(row.TotalPaid),
	}, nil
}

// Save creates or updates an invoice together with its line items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	db := sessionFromContext(ctx, r.db)
	model := models.InvoiceModelFromDomain(invoice)

	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Omit("Items").Create(model).Error; err != nil {
		return err
	}
	return replaceLineItems(db, model.ID, models.DocTypeInvoice, model.Items)
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	db := sessionFromContext(ctx, r.db)
	model := models.InvoiceModelFromDomain(invoice)
	model.Version = invoice.Version + 1

	result := db.Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	invoice.Version = model.Version
	return replaceLineItems(db, model.ID, models.DocTypeInvoice, model.Items)
}

// DeleteForTenant soft deletes an invoice for a tenant
func (r *GormInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := sessionFromContext(ctx, r.db).
		Delete(&models.InvoiceModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateNumber generates the next invoice number for a tenant.
// Format: INV-YYYY-XXXX, sequential within the year.
func (r *GormInvoiceRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return generateDocumentNumber(sessionFromContext(ctx, r.db), &models.InvoiceModel{}, tenantID, "INV")
}

// applyFilter applies filter options except pagination
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.FromDate != nil {
		query = query.Where("issue_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("issue_date <= ?", *filter.ToDate)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Status != nil {
		query = applyDerivedStatusCondition(query, *filter.Status, true)
	}
	return query
}

// applyDerivedStatusCondition translates a derived document status into SQL
// over the stored monetary fields. hasProforma distinguishes invoices from
// bills, which have no proforma flag.
func applyDerivedStatusCondition(query *gorm.DB, status billing.DocumentStatus, hasProforma bool) *gorm.DB {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	notCancelled := "cancelled = false"
	if hasProforma {
		notCancelled += " AND proforma = false"
	}

	switch status {
	case billing.StatusCancelled:
		return query.Where("cancelled = true")
	case billing.StatusProforma:
		if hasProforma {
			return query.Where("proforma = true AND cancelled = false")
		}
		return query.Where("1 = 0")
	case billing.StatusPaid:
		return query.Where(notCancelled + " AND paid_amount >= total AND paid_amount > 0")
	case billing.StatusPartiallyPaid:
		return query.Where(notCancelled + " AND paid_amount > 0 AND paid_amount < total")
	case billing.StatusOverdue:
		return query.Where(notCancelled+" AND paid_amount = 0 AND due_date IS NOT NULL AND due_date < ?", startOfDay)
	case billing.StatusOpened:
		return query.Where(notCancelled+" AND paid_amount = 0 AND (due_date IS NULL OR due_date >= ?)", startOfDay)
	default:
		// Draft/sent never match stored invoices or bills
		return query.Where("1 = 0")
	}
}

// generateDocumentNumber produces the next sequential number for a tenant,
// in PREFIX-YYYY-XXXX form. Uniqueness is ultimately enforced by the
// per-tenant unique index on number.
func generateDocumentNumber(db *gorm.DB, model any, tenantID uuid.UUID, prefix string) (string, error) {
	year := time.Now().Format("2006")
	like := fmt.Sprintf("%s-%s-", prefix, year)

	var maxNumber string
	err := db.Model(model).
		Select("number").
		Where("tenant_id = ? AND number LIKE ?", tenantID, like+"%").
		Order("number DESC").
		Limit(1).
		Pluck("number", &maxNumber).Error
	if err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%04d", like, nextNum), nil
}
