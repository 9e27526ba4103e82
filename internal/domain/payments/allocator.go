package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/openbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OpenDocument is the allocator's view of a payable document: an invoice or
// bill that is opened, overdue or partially paid.
type OpenDocument struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	DueDate    *time.Time      `json:"due_date"`
	Total      decimal.Decimal `json:"total"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

// SubmissionLine is one document's requested share of a payment submission
type SubmissionLine struct {
	DocumentID uuid.UUID       `json:"document_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// Submission is the validated output of the allocator, ready to become a
// payment event
type Submission struct {
	Method      PaymentMethod    `json:"method"`
	Allocations []SubmissionLine `json:"allocations"`
	Total       decimal.Decimal  `json:"total"`
}

// Allocator spreads one payment across a counterparty's open documents.
// Selecting a document allocates its full balance by default; the amount can
// then be lowered for a partial payment. The running payment total is always
// the sum of the selected amounts.
//
// The allocator is a pure in-memory model: nothing is persisted until
// BuildSubmission succeeds and its output is handed to the payment service.
type Allocator struct {
	documents []OpenDocument
	byID      map[uuid.UUID]int
	selected  map[uuid.UUID]bool
	amounts   map[uuid.UUID]decimal.Decimal
	method    PaymentMethod
}

// NewAllocator creates an allocator over the given open documents with
// nothing selected
func NewAllocator(documents []OpenDocument) *Allocator {
	byID := make(map[uuid.UUID]int, len(documents))
	for i := range documents {
		byID[documents[i].ID] = i
	}
	return &Allocator{
		documents: documents,
		byID:      byID,
		selected:  make(map[uuid.UUID]bool),
		amounts:   make(map[uuid.UUID]decimal.Decimal),
	}
}

// Documents returns the open documents in their original order
func (a *Allocator) Documents() []OpenDocument {
	return a.documents
}

// SetMethod records the payment method for the eventual submission
func (a *Allocator) SetMethod(method PaymentMethod) {
	a.method = method
}

// IsSelected reports whether the document participates in the payment
func (a *Allocator) IsSelected(documentID uuid.UUID) bool {
	return a.selected[documentID]
}

// Amount returns the amount currently allocated to the document, zero when
// the document is not selected
func (a *Allocator) Amount(documentID uuid.UUID) decimal.Decimal {
	if amt, ok := a.amounts[documentID]; ok {
		return amt
	}
	return decimal.Zero
}

// Toggle flips a document's selection. Selecting allocates the full balance
// due; deselecting clears the allocation.
func (a *Allocator) Toggle(documentID uuid.UUID) error {
	idx, ok := a.byID[documentID]
	if !ok {
		return shared.NewDomainError("DOCUMENT_NOT_FOUND", "Document is not in the open list")
	}
	if a.selected[documentID] {
		delete(a.selected, documentID)
		delete(a.amounts, documentID)
		return nil
	}
	a.selected[documentID] = true
	a.amounts[documentID] = a.documents[idx].BalanceDue
	return nil
}

// ToggleSelectAll selects every document at its full balance when any is
// unselected, and clears the selection when all are already selected
func (a *Allocator) ToggleSelectAll() {
	if a.AllSelected() {
		a.selected = make(map[uuid.UUID]bool)
		a.amounts = make(map[uuid.UUID]decimal.Decimal)
		return
	}
	for i := range a.documents {
		a.selected[a.documents[i].ID] = true
		a.amounts[a.documents[i].ID] = a.documents[i].BalanceDue
	}
}

// AllSelected reports whether every open document is selected
func (a *Allocator) AllSelected() bool {
	if len(a.documents) == 0 {
		return false
	}
	for i := range a.documents {
		if !a.selected[a.documents[i].ID] {
			return false
		}
	}
	return true
}

// SetAmount overrides the amount allocated to a selected document. Amounts
// above the document's balance are rejected rather than clamped, so a typo
// never silently overpays. A non-positive amount deselects the document.
func (a *Allocator) SetAmount(documentID uuid.UUID, amount decimal.Decimal) error {
	idx, ok := a.byID[documentID]
	if !ok {
		return shared.NewDomainError("DOCUMENT_NOT_FOUND", "Document is not in the open list")
	}
	if !a.selected[documentID] {
		return shared.NewDomainError("DOCUMENT_NOT_SELECTED", "Select the document before setting an amount")
	}
	if !amount.IsPositive() {
		delete(a.selected, documentID)
		delete(a.amounts, documentID)
		return nil
	}
	if amount.GreaterThan(a.documents[idx].BalanceDue) {
		return shared.NewValidationError("Allocated amount exceeds the document balance")
	}
	a.amounts[documentID] = valueobject.Round2(amount)
	return nil
}

// PaymentTotal returns the sum of the selected amounts
func (a *Allocator) PaymentTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range a.documents {
		if a.selected[a.documents[i].ID] {
			total = total.Add(a.amounts[a.documents[i].ID])
		}
	}
	return valueobject.Round2(total)
}

// BuildSubmission validates the current state and returns the allocations in
// document order. It fails when no method is set, nothing is selected, or
// any allocation exceeds its document's balance; on failure nothing is
// submitted.
func (a *Allocator) BuildSubmission() (*Submission, error) {
	if !a.method.IsValid() {
		return nil, shared.NewValidationError("Payment method is required")
	}

	lines := make([]SubmissionLine, 0, len(a.selected))
	for i := range a.documents {
		doc := &a.documents[i]
		if !a.selected[doc.ID] {
			continue
		}
		amount := a.amounts[doc.ID]
		if !amount.IsPositive() {
			return nil, shared.NewValidationError("Allocation amount must be positive")
		}
		if amount.GreaterThan(doc.BalanceDue) {
			return nil, shared.NewValidationError("Allocated amount exceeds the document balance")
		}
		lines = append(lines, SubmissionLine{DocumentID: doc.ID, Amount: amount})
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("Select documents to pay")
	}

	return &Submission{
		Method:      a.method,
		Allocations: lines,
		Total:       a.PaymentTotal(),
	}, nil
}
