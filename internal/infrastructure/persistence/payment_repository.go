package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/payments"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/openbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentEventRepository implements payments.PaymentEventRepository using GORM
type GormPaymentEventRepository struct {
	db *gorm.DB
}

// NewGormPaymentEventRepository creates a new GormPaymentEventRepository
func NewGormPaymentEventRepository(db *gorm.DB) *GormPaymentEventRepository {
	return &GormPaymentEventRepository{db: db}
}

// FindByIDForTenant finds a payment event by ID for a specific tenant
func (r *GormPaymentEventRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payments.PaymentEvent, error) {
	var model models.PaymentEventModel
	err := sessionFromContext(ctx, r.db).
		Preload("Allocations").
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

// FindAllForTenant finds payment events for a tenant with filtering
func (r *GormPaymentEventRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter payments.PaymentFilter) ([]payments.PaymentEvent, error) {
	db := sessionFromContext(ctx, r.db)

	query := r.applyFilter(db.Model(&models.PaymentEventModel{}).Where("tenant_id = ?", tenantID), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.PaymentEventModel
	err := query.Preload("Allocations").Order("payment_date DESC, number DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	events := make([]payments.PaymentEvent, 0, len(rows))
	for i := range rows {
		events = append(events, *rows[i].ToDomain())
	}
	return events, nil
}

// FindByDocument finds payment events that allocate to the given document
func (r *GormPaymentEventRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]payments.PaymentEvent, error) {
	db := sessionFromContext(ctx, r.db)

	var rows []models.PaymentEventModel
	err := db.Model(&models.PaymentEventModel{}).
		Joins("JOIN payment_allocations ON payment_allocations.payment_id = payment_events.id").
		Where("payment_events.tenant_id = ? AND payment_allocations.document_id = ?", tenantID, documentID).
		Preload("Allocations").
		Order("payment_events.payment_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	events := make([]payments.PaymentEvent, 0, len(rows))
	for i := range rows {
		events = append(events, *rows[i].ToDomain())
	}
	return events, nil
}

// CountForTenant counts payment events for a tenant with filtering
func (r *GormPaymentEventRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter payments.PaymentFilter) (int64, error) {
	db := sessionFromContext(ctx, r.db)
	var count int64
	err := r.applyFilter(db.Model(&models.PaymentEventModel{}).Where("tenant_id = ?", tenantID), filter).
		Count(&count).Error
	return count, err
}

// Save persists a payment event together with its allocations. Events are
// immutable once recorded, so this is insert-only.
func (r *GormPaymentEventRepository) Save(ctx context.Context, event *payments.PaymentEvent) error {
	model := models.PaymentEventModelFromDomain(event)
	return sessionFromContext(ctx, r.db).Create(model).Error
}

// GenerateNumber generates the next payment number for a tenant.
// Format: PAY-YYYY-XXXX, sequential within the year.
func (r *GormPaymentEventRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return generateDocumentNumber(sessionFromContext(ctx, r.db), &models.PaymentEventModel{}, tenantID, "PAY")
}

// applyFilter applies filter options except pagination
func (r *GormPaymentEventRepository) applyFilter(query *gorm.DB, filter payments.PaymentFilter) *gorm.DB {
	if filter.Direction != nil {
		query = query.Where("direction = ?", filter.Direction.String())
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", filter.Method.String())
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("number ILIKE ? OR reference ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	return query
}
