package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Bill is a payable document received from a vendor. Unlike invoices, bills
// carry no document-level discount, shipping or net/tax decomposition: the
// total is simply the sum of the gross line totals, matching the paper the
// vendor sent.
type Bill struct {
	shared.TenantEntity
	Number       string          `json:"number"`
	VendorID     uuid.UUID       `json:"vendor_id"`
	BillDate     time.Time       `json:"bill_date"`
	Terms        PaymentTerms    `json:"terms"`
	DueDate      *time.Time      `json:"due_date"`
	Items        []LineItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	Cancelled    bool            `json:"cancelled"`
	CancelReason string          `json:"cancel_reason"`
	Notes        string          `json:"notes"`
}

// NewBill creates a bill with no line items
func NewBill(tenantID, vendorID uuid.UUID, number string, billDate time.Time, terms PaymentTerms) (*Bill, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("Vendor is required")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}

	return &Bill{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Number:       number,
		VendorID:     vendorID,
		BillDate:     billDate,
		Terms:        terms,
		DueDate:      ResolveDueDate(billDate, terms),
		Items:        []LineItem{},
		Total:        decimal.Zero,
		PaidAmount:   decimal.Zero,
	}, nil
}

func (b *Bill) recompute() {
	b.Total = ComputeBillTotal(b.Items)
}

// Status derives the settlement status as of the given time
func (b *Bill) Status(asOf time.Time) DocumentStatus {
	return ComputeStatus(b.Total, b.PaidAmount, b.DueDate, b.Cancelled, asOf)
}

// BalanceDue returns the amount still owed to the vendor, never negative
func (b *Bill) BalanceDue() decimal.Decimal {
	balance := b.Total.Sub(b.PaidAmount)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// IsEditable reports whether line items may still be changed
func (b *Bill) IsEditable() bool {
	return !b.Cancelled && b.PaidAmount.IsZero()
}

// AddItem appends a line item and recomputes the total
func (b *Bill) AddItem(productID *uuid.UUID, description string, quantity, enteredUnitPrice, taxRatePercent decimal.Decimal) (*LineItem, error) {
	if !b.IsEditable() {
		return nil, shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Bill can no longer be edited")
	}
	item := NewLineItem(b.ID, productID, description, quantity, enteredUnitPrice, taxRatePercent)
	item.Position = len(b.Items)
	b.Items = append(b.Items, *item)
	b.recompute()
	b.Touch()
	return item, nil
}

// UpdateItem applies a field mutation to the identified line and recomputes the total
func (b *Bill) UpdateItem(itemID uuid.UUID, mutate func(*LineItem)) error {
	if !b.IsEditable() {
		return shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Bill can no longer be edited")
	}
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			mutate(&b.Items[i])
			b.recompute()
			b.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_ITEM_NOT_FOUND", "Line item not found")
}

// RemoveItem deletes a line item and recomputes the total
func (b *Bill) RemoveItem(itemID uuid.UUID) error {
	if !b.IsEditable() {
		return shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Bill can no longer be edited")
	}
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			for j := range b.Items {
				b.Items[j].Position = j
			}
			b.recompute()
			b.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_ITEM_NOT_FOUND", "Line item not found")
}

// SetBillDate updates the bill date and re-derives the due date
func (b *Bill) SetBillDate(billDate time.Time) {
	b.BillDate = billDate
	b.DueDate = ResolveDueDate(billDate, b.Terms)
	b.Touch()
}

// SetTerms updates the payment terms and re-derives the due date
func (b *Bill) SetTerms(terms PaymentTerms) {
	b.Terms = terms
	b.DueDate = ResolveDueDate(b.BillDate, terms)
	b.Touch()
}

// ApplyPayment records a sent amount against the bill. The amount must be
// positive and must not exceed the remaining balance.
func (b *Bill) ApplyPayment(amount decimal.Decimal) error {
	if b.Cancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply payment to a cancelled bill")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("Payment amount must be positive")
	}
	if amount.GreaterThan(b.BalanceDue()) {
		return shared.NewValidationError("Payment amount exceeds the bill balance")
	}
	b.PaidAmount = b.PaidAmount.Add(amount)
	b.Touch()
	return nil
}

// Cancel marks the bill cancelled. Paid or partially paid bills cannot be
// cancelled.
func (b *Bill) Cancel(reason string) error {
	if b.Cancelled {
		return shared.NewDomainError("INVALID_STATE", "Bill is already cancelled")
	}
	if b.PaidAmount.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a bill that has received payments")
	}
	b.Cancelled = true
	b.CancelReason = reason
	b.Touch()
	return nil
}
