package billing

import (
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/openbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DiscountType represents how a document-level discount value is interpreted
type DiscountType string

const (
	DiscountTypeNone       DiscountType = "NONE"
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

// IsValid checks if the discount type is valid
func (d DiscountType) IsValid() bool {
	switch d {
	case DiscountTypeNone, DiscountTypePercentage, DiscountTypeFixed:
		return true
	}
	return false
}

// DocumentTotals holds the aggregated monetary fields of a document
type DocumentTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeTotals aggregates line items into document totals for estimates and
// invoices. The subtotal sums quantity times the NET unit price while each
// line's own total is quantity times the GROSS price; the asymmetry matches
// what counterparties already have on file and is load-bearing, so it is
// reproduced here rather than reconciled.
//
// Pure function: same items in any order yield the same totals.
func ComputeTotals(items []LineItem, discountType DiscountType, discountValue, shippingCost decimal.Decimal) DocumentTotals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].Quantity.Mul(items[i].NetUnitPrice))
		tax = tax.Add(items[i].Quantity.Mul(items[i].TaxAmountPerUnit))
	}
	subtotal = valueobject.Round2(subtotal)
	tax = valueobject.Round2(tax)

	discount := decimal.Zero
	switch discountType {
	case DiscountTypePercentage:
		discount = valueobject.Round2(subtotal.Mul(discountValue).Div(oneHundred))
	case DiscountTypeFixed:
		discount = valueobject.Round2(discountValue)
	}

	return DocumentTotals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: discount,
		ShippingCost:   shippingCost,
		Total:          valueobject.Round2(subtotal.Add(shippingCost).Add(tax).Sub(discount)),
	}
}

// ComputeBillTotal aggregates bill line items. Bills carry no document-level
// discount or shipping and no net/tax decomposition: the total is the sum of
// the gross line totals.
func ComputeBillTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal)
	}
	return valueobject.Round2(total)
}

// ValidateLineItems rejects a document that has no line with a resolved
// product reference. Free-text placeholder rows alone do not make a
// submittable document.
func ValidateLineItems(items []LineItem) error {
	for i := range items {
		if items[i].HasProductRef() {
			return nil
		}
	}
	return shared.NewValidationError("Add at least one line item with a selected product")
}
