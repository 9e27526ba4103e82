package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Estimate is a customer quote. It never carries a balance: its lifecycle is
// DRAFT -> SENT, and a sent estimate can be converted into an invoice.
type Estimate struct {
	shared.TenantEntity
	Number        string          `json:"number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	IssueDate     time.Time       `json:"issue_date"`
	ValidUntil    *time.Time      `json:"valid_until"`
	Status        DocumentStatus  `json:"status"`
	Items         []LineItem      `json:"items"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Totals        DocumentTotals  `json:"totals"`
	Notes         string          `json:"notes"`
	ConvertedTo   *uuid.UUID      `json:"converted_to"` // invoice ID once converted
}

// NewEstimate creates a draft estimate with no line items
func NewEstimate(tenantID, customerID uuid.UUID, number string, issueDate time.Time) (*Estimate, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer is required")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}

	e := &Estimate{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		Number:        number,
		CustomerID:    customerID,
		IssueDate:     issueDate,
		Status:        StatusDraft,
		Items:         []LineItem{},
		DiscountType:  DiscountTypeNone,
		DiscountValue: decimal.Zero,
		ShippingCost:  decimal.Zero,
	}
	e.recompute()
	return e, nil
}

func (e *Estimate) recompute() {
	e.Totals = ComputeTotals(e.Items, e.DiscountType, e.DiscountValue, e.ShippingCost)
}

// AddItem appends a line item and recomputes totals
func (e *Estimate) AddItem(productID *uuid.UUID, description string, quantity, enteredUnitPrice, taxRatePercent decimal.Decimal) (*LineItem, error) {
	if !e.IsEditable() {
		return nil, shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Estimate can no longer be edited")
	}
	item := NewLineItem(e.ID, productID, description, quantity, enteredUnitPrice, taxRatePercent)
	item.Position = len(e.Items)
	e.Items = append(e.Items, *item)
	e.recompute()
	e.Touch()
	return item, nil
}

// UpdateItem applies a field mutation to the identified line and recomputes totals
func (e *Estimate) UpdateItem(itemID uuid.UUID, mutate func(*LineItem)) error {
	if !e.IsEditable() {
		return shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Estimate can no longer be edited")
	}
	for i := range e.Items {
		if e.Items[i].ID == itemID {
			mutate(&e.Items[i])
			e.recompute()
			e.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_ITEM_NOT_FOUND", "Line item not found")
}

// RemoveItem deletes a line item and recomputes totals
func (e *Estimate) RemoveItem(itemID uuid.UUID) error {
	if !e.IsEditable() {
		return shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Estimate can no longer be edited")
	}
	for i := range e.Items {
		if e.Items[i].ID == itemID {
			e.Items = append(e.Items[:i], e.Items[i+1:]...)
			for j := range e.Items {
				e.Items[j].Position = j
			}
			e.recompute()
			e.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_ITEM_NOT_FOUND", "Line item not found")
}

// SetDiscount updates the document-level discount and recomputes totals
func (e *Estimate) SetDiscount(discountType DiscountType, value decimal.Decimal) error {
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Invalid discount type")
	}
	e.DiscountType = discountType
	e.DiscountValue = value
	e.recompute()
	e.Touch()
	return nil
}

// SetShippingCost updates the shipping cost and recomputes totals
func (e *Estimate) SetShippingCost(cost decimal.Decimal) {
	e.ShippingCost = cost
	e.recompute()
	e.Touch()
}

// SetIssueDate updates the issue date of an editable estimate
func (e *Estimate) SetIssueDate(issueDate time.Time) error {
	if !e.IsEditable() {
		return shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Estimate can no longer be edited")
	}
	e.IssueDate = issueDate
	e.Touch()
	return nil
}

// SetValidUntil updates the expiry date; nil clears it
func (e *Estimate) SetValidUntil(validUntil *time.Time) error {
	if !e.IsEditable() {
		return shared.NewDomainError("DOCUMENT_NOT_EDITABLE", "Estimate can no longer be edited")
	}
	e.ValidUntil = validUntil
	e.Touch()
	return nil
}

// IsEditable reports whether line items may still be changed
func (e *Estimate) IsEditable() bool {
	return e.Status == StatusDraft && e.ConvertedTo == nil
}

// MarkSent transitions a draft estimate to SENT. Sending requires at least
// one line with a resolved product.
func (e *Estimate) MarkSent() error {
	if e.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION", "Only draft estimates can be sent")
	}
	if err := ValidateLineItems(e.Items); err != nil {
		return err
	}
	e.Status = StatusSent
	e.Touch()
	return nil
}

// ConvertToInvoice produces an invoice carrying over the estimate's lines,
// discount and shipping. The estimate records the invoice ID and cannot be
// converted twice.
func (e *Estimate) ConvertToInvoice(number string, issueDate time.Time, terms PaymentTerms) (*Invoice, error) {
	if e.ConvertedTo != nil {
		return nil, shared.NewDomainError("ALREADY_CONVERTED", "Estimate has already been converted to an invoice")
	}
	if err := ValidateLineItems(e.Items); err != nil {
		return nil, err
	}

	inv, err := NewInvoice(e.TenantID, e.CustomerID, number, issueDate, terms)
	if err != nil {
		return nil, err
	}
	for i := range e.Items {
		src := &e.Items[i]
		if _, err := inv.AddItem(src.ProductID, src.Description, src.Quantity, src.EnteredUnitPrice, src.TaxRatePercent); err != nil {
			return nil, err
		}
	}
	if err := inv.SetDiscount(e.DiscountType, e.DiscountValue); err != nil {
		return nil, err
	}
	inv.SetShippingCost(e.ShippingCost)
	inv.Notes = e.Notes

	e.ConvertedTo = &inv.ID
	e.Touch()
	return inv, nil
}
