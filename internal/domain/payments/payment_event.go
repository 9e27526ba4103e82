package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/openbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentDirection distinguishes money coming in from money going out
type PaymentDirection string

const (
	DirectionReceived PaymentDirection = "RECEIVED" // from a customer against invoices
	DirectionSent     PaymentDirection = "SENT"     // to a vendor against bills
)

// IsValid checks if the direction is valid
func (d PaymentDirection) IsValid() bool {
	return d == DirectionReceived || d == DirectionSent
}

// String returns the string representation of PaymentDirection
func (d PaymentDirection) String() string {
	return string(d)
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodCheck        PaymentMethod = "CHECK"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCard         PaymentMethod = "CARD"
	MethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCheck, MethodBankTransfer, MethodCard, MethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentAllocation is one document's share of a payment event
type PaymentAllocation struct {
	ID         uuid.UUID       `json:"id"`
	PaymentID  uuid.UUID       `json:"payment_id"`
	DocumentID uuid.UUID       `json:"document_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaymentEvent records one payment split across one or more documents of a
// single counterparty. The event total always equals the sum of its
// allocations; it is derived at construction and never edited afterwards.
type PaymentEvent struct {
	shared.TenantEntity
	Number         string              `json:"number"`
	Direction      PaymentDirection    `json:"direction"`
	CounterpartyID uuid.UUID           `json:"counterparty_id"`
	Method         PaymentMethod       `json:"method"`
	PaymentDate    time.Time           `json:"payment_date"`
	Total          decimal.Decimal     `json:"total"`
	Reference      string              `json:"reference"`
	Notes          string              `json:"notes"`
	Allocations    []PaymentAllocation `json:"allocations"`
}

// NewPaymentEvent creates a payment event from validated allocations. The
// total is the sum of the allocation amounts; every amount must be positive.
func NewPaymentEvent(tenantID, counterpartyID uuid.UUID, number string, direction PaymentDirection, method PaymentMethod, paymentDate time.Time, allocations []PaymentAllocation) (*PaymentEvent, error) {
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DIRECTION", "Invalid payment direction")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("Payment method is required")
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.NewValidationError("Counterparty is required")
	}
	if len(allocations) == 0 {
		return nil, shared.NewValidationError("Select documents to pay")
	}

	event := &PaymentEvent{
		TenantEntity:   shared.NewTenantEntity(tenantID),
		Number:         number,
		Direction:      direction,
		CounterpartyID: counterpartyID,
		Method:         method,
		PaymentDate:    paymentDate,
		Total:          decimal.Zero,
		Allocations:    make([]PaymentAllocation, 0, len(allocations)),
	}

	seen := make(map[uuid.UUID]bool, len(allocations))
	for _, a := range allocations {
		if !a.Amount.IsPositive() {
			return nil, shared.NewValidationError("Allocation amount must be positive")
		}
		if seen[a.DocumentID] {
			return nil, shared.NewValidationError("Duplicate document in payment allocations")
		}
		seen[a.DocumentID] = true

		event.Allocations = append(event.Allocations, PaymentAllocation{
			ID:         uuid.New(),
			PaymentID:  event.ID,
			DocumentID: a.DocumentID,
			Amount:     a.Amount,
		})
		event.Total = event.Total.Add(a.Amount)
	}
	event.Total = valueobject.Round2(event.Total)

	return event, nil
}

// AllocationFor returns the allocation targeting the given document, or nil
func (p *PaymentEvent) AllocationFor(documentID uuid.UUID) *PaymentAllocation {
	for i := range p.Allocations {
		if p.Allocations[i].DocumentID == documentID {
			return &p.Allocations[i]
		}
	}
	return nil
}
