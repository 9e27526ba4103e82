package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Invoice is a receivable document issued to a customer. Its settlement
// status is derived from the monetary fields and due date; only the
// cancelled flag and the proforma flag are stored state.
type Invoice struct {
	shared.TenantEntity
	Number        string          `json:"number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	IssueDate     time.Time       `json:"issue_date"`
	Terms         PaymentTerms    `json:"terms"`
	DueDate       *time.Time      `json:"due_date"`
	Proforma      bool            `json:"proforma"`
	Items         []LineItem      `json:"items"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Totals        DocumentTotals  `json:"totals"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Cancelled     bool            `json:"cancelled"`
	CancelReason  string          `json:"cancel_reason"`
	Notes         string          `json:"notes"`
}

// NewInvoice creates an invoice with no line items. The due date is derived
// from the issue date and terms at creation and on every later change to
// either field.
func NewInvoice(tenantID, customerID uuid.UUID, number string, issueDate time.Time, terms PaymentTerms) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer is required")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}

	inv := &Invoice{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		Number:        number,
		CustomerID:    customerID,
		IssueDate:     issueDate,
		Terms:         terms,
		DueDate:       ResolveDueDate(issueDate, terms),
		Items:         []LineItem{},
		DiscountType:  DiscountTypeNone,
		DiscountValue: decimal.Zero,
		ShippingCost:  decimal.Zero,
		PaidAmount:    decimal.Zero,
	}
	inv.recompute()
	return inv, nil
}

func (inv *Invoice) recompute() {
	inv.Totals = ComputeTotals(inv.Items, inv.DiscountType, inv.DiscountValue, inv.ShippingCost)
}

// Status derives the settlement status as of the given time
func (inv *Invoice) Status(asOf time.Time) DocumentStatus {
	if inv.Proforma && !inv.Cancelled {
		return StatusProforma
	}
	return ComputeStatus(inv.Totals.Total, inv.PaidAmount, inv.DueDate, inv.Cancelled, asOf)
}

// BalanceDue returns the amount still owed, never negative
func (inv *Invoice) BalanceDue() decimal.Decimal {
	balance := inv.Totals.Total.Sub(inv.PaidAmount)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// IsEditable reports whether line items may still be changed. Payments and
// cancellation both freeze the document.
func (inv *Invoice) IsEditable() bool {
	return !inv.Cancelled && inv.PaidAmount.IsZero()
}

// AddItem appends a line item and recomputes totals
func (inv *Invoice) AddItem(productID *uuid.UUID, description string, quantity, enteredUnitPrice, taxRatePercent decimal.Decimal) (*LineItem, error) {
	if !inv.IsEditable() {
		return nil, shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Invoice can no longer be edited")
	}
	item := NewLineItem(inv.ID, productID, description, quantity, enteredUnitPrice, taxRatePercent)
	item.Position = len(inv.Items)
	inv.Items = append(inv.Items, *item)
	inv.recompute()
	inv.Touch()
	return item, nil
}

// UpdateItem applies a field mutation to the identified line and recomputes totals
func (inv *Invoice) UpdateItem(itemID uuid.UUID, mutate func(*LineItem)) error {
	if !inv.IsEditable() {
		return shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Invoice can no longer be edited")
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			mutate(&inv.Items[i])
			inv.recompute()
			inv.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_ITEM_NOT_FOUND", "Line item not found")
}

// RemoveItem deletes a line item and recomputes totals
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if !inv.IsEditable() {
		return shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Invoice can no longer be edited")
	}
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			for j := range inv.Items {
				inv.Items[j].Position = j
			}
			inv.recompute()
			inv.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_ITEM_NOT_FOUND", "Line item not found")
}

// SetDiscount updates the document-level discount and recomputes totals
func (inv *Invoice) SetDiscount(discountType DiscountType, value decimal.Decimal) error {
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Invalid discount type")
	}
	inv.DiscountType = discountType
	inv.DiscountValue = value
	inv.recompute()
	inv.Touch()
	return nil
}

// SetShippingCost updates the shipping cost and recomputes totals
func (inv *Invoice) SetShippingCost(cost decimal.Decimal) {
	inv.ShippingCost = cost
	inv.recompute()
	inv.Touch()
}

// SetIssueDate updates the issue date and re-derives the due date
func (inv *Invoice) SetIssueDate(issueDate time.Time) {
	inv.IssueDate = issueDate
	inv.DueDate = ResolveDueDate(issueDate, inv.Terms)
	inv.Touch()
}

// SetTerms updates the payment terms and re-derives the due date
func (inv *Invoice) SetTerms(terms PaymentTerms) {
	inv.Terms = terms
	inv.DueDate = ResolveDueDate(inv.IssueDate, terms)
	inv.Touch()
}

// SetProforma flags the invoice as pro forma. A pro forma invoice is not
// payable; the flag cannot be set once money has been applied.
func (inv *Invoice) SetProforma(proforma bool) error {
	if proforma && inv.PaidAmount.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "A partially or fully paid invoice cannot become pro forma")
	}
	inv.Proforma = proforma
	inv.Touch()
	return nil
}

// ApplyPayment records a received amount against the invoice. The amount
// must be positive and must not exceed the remaining balance.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if inv.Cancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply payment to a cancelled invoice")
	}
	if inv.Proforma {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply payment to a pro forma invoice")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("Payment amount must be positive")
	}
	if amount.GreaterThan(inv.BalanceDue()) {
		return shared.NewValidationError("Payment amount exceeds the invoice balance")
	}
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.Touch()
	return nil
}

// Cancel marks the invoice cancelled. Paid or partially paid invoices
// cannot be cancelled.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Cancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	if inv.PaidAmount.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel an invoice that has received payments")
	}
	inv.Cancelled = true
	inv.CancelReason = reason
	inv.Touch()
	return nil
}
