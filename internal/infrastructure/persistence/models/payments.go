package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/payments"
	"github.com/shopspring/decimal"
)

// PaymentEventModel is the persistence model for PaymentEvent
type PaymentEventModel struct {
	TenantModel
	Number         string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_payments_tenant_number,priority:2"`
	Direction      string                   `gorm:"type:varchar(10);not null;index"`
	CounterpartyID uuid.UUID                `gorm:"type:uuid;not null;index"`
	Method         string                   `gorm:"type:varchar(20);not null"`
	PaymentDate    time.Time                `gorm:"not null;index"`
	Total          decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Reference      string                   `gorm:"type:varchar(200)"`
	Notes          string                   `gorm:"type:text"`
	Allocations    []PaymentAllocationModel `gorm:"foreignKey:PaymentID;references:ID"`
}

// TableName returns the table name for GORM
func (PaymentEventModel) TableName() string {
	return "payment_events"
}

// PaymentAllocationModel is the persistence model for one document's share
// of a payment event
type PaymentAllocationModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	PaymentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentEvent
func (m *PaymentEventModel) ToDomain() *payments.PaymentEvent {
	allocations := make([]payments.PaymentAllocation, 0, len(m.Allocations))
	for _, a := range m.Allocations {
		allocations = append(allocations, payments.PaymentAllocation{
			ID:         a.ID,
			PaymentID:  a.PaymentID,
			DocumentID: a.DocumentID,
			Amount:     a.Amount,
		})
	}
	return &payments.PaymentEvent{
		TenantEntity:   m.TenantModel.ToDomain(),
		Number:         m.Number,
		Direction:      payments.PaymentDirection(m.Direction),
		CounterpartyID: m.CounterpartyID,
		Method:         payments.PaymentMethod(m.Method),
		PaymentDate:    m.PaymentDate,
		Total:          m.Total,
		Reference:      m.Reference,
		Notes:          m.Notes,
		Allocations:    allocations,
	}
}

// PaymentEventModelFromDomain creates a persistence model from a domain PaymentEvent
func PaymentEventModelFromDomain(event *payments.PaymentEvent) *PaymentEventModel {
	allocations := make([]PaymentAllocationModel, 0, len(event.Allocations))
	for _, a := range event.Allocations {
		allocations = append(allocations, PaymentAllocationModel{
			ID:         a.ID,
			PaymentID:  a.PaymentID,
			DocumentID: a.DocumentID,
			Amount:     a.Amount,
		})
	}
	m := &PaymentEventModel{
		Number:         event.Number,
		Direction:      event.Direction.String(),
		CounterpartyID: event.CounterpartyID,
		Method:         event.Method.String(),
		PaymentDate:    event.PaymentDate,
		Total:          event.Total,
		Reference:      event.Reference,
		Notes:          event.Notes,
		Allocations:    allocations,
	}
	m.FromDomain(event.TenantEntity)
	return m
}
