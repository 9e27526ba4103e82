package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// LineItemRequest represents a line item create/update payload. The unit
// price is tax-inclusive; net price, per-unit tax and line total are derived
// server-side and never accepted from the client.
type LineItemRequest struct {
	ProductID        *uuid.UUID      `json:"product_id"`
	Description      string          `json:"description" binding:"max=500"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	EnteredUnitPrice decimal.Decimal `json:"entered_unit_price"`
	TaxRateID        *uuid.UUID      `json:"tax_rate_id"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        *uuid.UUID      `json:"product_id,omitempty"`
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	EnteredUnitPrice decimal.Decimal `json:"entered_unit_price"`
	TaxRatePercent   decimal.Decimal `json:"tax_rate_percent"`
	NetUnitPrice     decimal.Decimal `json:"net_unit_price"`
	TaxAmountPerUnit decimal.Decimal `json:"tax_amount_per_unit"`
	LineTotal        decimal.Decimal `json:"line_total"`
	Position         int             `json:"position"`
}

// TotalsResponse represents document totals in API responses
type TotalsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	Total          decimal.Decimal `json:"total"`
}

// DiscountRequest represents a document-level discount update
type DiscountRequest struct {
	DiscountType  billing.DiscountType `json:"discount_type" binding:"required,oneof=NONE PERCENTAGE FIXED"`
	DiscountValue decimal.Decimal      `json:"discount_value"`
}

// ShippingRequest represents a shipping cost update
type ShippingRequest struct {
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}

// CancelRequest carries the reason for cancelling a document
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListQuery represents common list query parameters
type ListQuery struct {
	Search   string     `form:"search"`
	Status   string     `form:"status"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page     int        `form:"page"`
	PageSize *int       `form:"page_size"`
}

// Normalize applies default paging to a list query
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize == nil || *q.PageSize < 1 || *q.PageSize > 100 {
		size := 20
		q.PageSize = &size
	}
}

func toLineItemResponses(items []billing.LineItem) []LineItemResponse {
	responses := make([]LineItemResponse, 0, len(items))
	for i := range items {
		item := &items[i]
		responses = append(responses, LineItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			Description:      item.Description,
			Quantity:         item.Quantity,
			EnteredUnitPrice: item.EnteredUnitPrice,
			TaxRatePercent:   item.TaxRatePercent,
			NetUnitPrice:     item.NetUnitPrice,
			TaxAmountPerUnit: item.TaxAmountPerUnit,
			LineTotal:        item.LineTotal,
			Position:         item.Position,
		})
	}
	return responses
}

func toTotalsResponse(totals billing.DocumentTotals) TotalsResponse {
	return TotalsResponse{
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		DiscountAmount: totals.DiscountAmount,
		ShippingCost:   totals.ShippingCost,
		Total:          totals.Total,
	}
}
