package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// LinePricing holds the derived monetary fields of a line item.
type LinePricing struct {
	NetUnitPrice     decimal.Decimal `json:"net_unit_price"`
	TaxAmountPerUnit decimal.Decimal `json:"tax_amount_per_unit"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// PriceLine derives the net unit price, per-unit tax and line total from an
// entered tax-inclusive unit price and a tax percentage.
//
// The line total is quantity times the tax-inclusive price, NOT the
// recomposed net+tax value; the two can differ by a rounding unit and
// document totals downstream match the gross figure. Every derived value is
// rounded to 2 places (half away from zero) at each step.
//
// Negative inputs are computed as-is; bounds are enforced by the callers that
// accept user input, not here.
func PriceLine(quantity, enteredUnitPrice, taxRatePercent decimal.Decimal) LinePricing {
	divisor := decimal.NewFromInt(1).Add(taxRatePercent.Div(oneHundred))

	net := enteredUnitPrice
	if !divisor.IsZero() {
		net = valueobject.Round2(enteredUnitPrice.Div(divisor))
	}
	tax := valueobject.Round2(net.Mul(taxRatePercent).Div(oneHundred))

	return LinePricing{
		NetUnitPrice:     net,
		TaxAmountPerUnit: tax,
		LineTotal:        valueobject.Round2(quantity.Mul(enteredUnitPrice)),
	}
}

// LineItem is one row of an estimate, invoice or bill. The entered unit
// price is tax-inclusive; net price, per-unit tax and line total are derived
// and recomputed on every field edit.
type LineItem struct {
	ID               uuid.UUID       `json:"id"`
	DocumentID       uuid.UUID       `json:"document_id"`
	ProductID        *uuid.UUID      `json:"product_id"` // nil = free-text line
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	EnteredUnitPrice decimal.Decimal `json:"entered_unit_price"` // tax-inclusive
	TaxRatePercent   decimal.Decimal `json:"tax_rate_percent"`
	NetUnitPrice     decimal.Decimal `json:"net_unit_price"`
	TaxAmountPerUnit decimal.Decimal `json:"tax_amount_per_unit"`
	LineTotal        decimal.Decimal `json:"line_total"`
	Position         int             `json:"position"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewLineItem creates a new line item and derives its pricing fields
func NewLineItem(documentID uuid.UUID, productID *uuid.UUID, description string, quantity, enteredUnitPrice, taxRatePercent decimal.Decimal) *LineItem {
	now := time.Now()
	item := &LineItem{
		ID:               uuid.New(),
		DocumentID:       documentID,
		ProductID:        productID,
		Description:      description,
		Quantity:         quantity,
		EnteredUnitPrice: enteredUnitPrice,
		TaxRatePercent:   taxRatePercent,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	item.reprice()
	return item
}

// reprice re-runs the full derivation from the entered fields
func (i *LineItem) reprice() {
	pricing := PriceLine(i.Quantity, i.EnteredUnitPrice, i.TaxRatePercent)
	i.NetUnitPrice = pricing.NetUnitPrice
	i.TaxAmountPerUnit = pricing.TaxAmountPerUnit
	i.LineTotal = pricing.LineTotal
}

// SetQuantity updates the quantity and re-derives pricing
func (i *LineItem) SetQuantity(quantity decimal.Decimal) {
	i.Quantity = quantity
	i.reprice()
	i.UpdatedAt = time.Now()
}

// SetEnteredUnitPrice updates the tax-inclusive unit price and re-derives pricing
func (i *LineItem) SetEnteredUnitPrice(price decimal.Decimal) {
	i.EnteredUnitPrice = price
	i.reprice()
	i.UpdatedAt = time.Now()
}

// SetTaxRate updates the tax percentage and re-runs the derivation. The
// entered unit price is never mutated by a tax-rate change.
func (i *LineItem) SetTaxRate(ratePercent decimal.Decimal) {
	i.TaxRatePercent = ratePercent
	i.reprice()
	i.UpdatedAt = time.Now()
}

// ApplyProduct overwrites the line with a catalog product selection: price
// and description come from the product and the quantity resets to 1.
func (i *LineItem) ApplyProduct(productID uuid.UUID, description string, unitPrice decimal.Decimal) {
	i.ProductID = &productID
	i.Description = description
	i.EnteredUnitPrice = unitPrice
	i.Quantity = decimal.NewFromInt(1)
	i.reprice()
	i.UpdatedAt = time.Now()
}

// ApplyProductKeepQuantity is the bill/purchase-order variant of
// ApplyProduct: the quantity is provided by context and left untouched.
func (i *LineItem) ApplyProductKeepQuantity(productID uuid.UUID, description string, unitPrice decimal.Decimal) {
	i.ProductID = &productID
	i.Description = description
	i.EnteredUnitPrice = unitPrice
	i.reprice()
	i.UpdatedAt = time.Now()
}

// HasProductRef reports whether the line references a resolved catalog
// product (as opposed to a free-text placeholder row)
func (i *LineItem) HasProductRef() bool {
	return i.ProductID != nil && *i.ProductID != uuid.Nil
}
