package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceService provides application-level invoice operations
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	taxRates    *TaxRateService
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.InvoiceRepository, taxRates *TaxRateService) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoiceRepo, taxRates: taxRates}
}

// InvoiceResponse represents an invoice in API responses. The status is
// derived at response time, never stored.
type InvoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	Number        string             `json:"number"`
	CustomerID    uuid.UUID          `json:"customer_id"`
	IssueDate     time.Time          `json:"issue_date"`
	Terms         string             `json:"terms,omitempty"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	Proforma      bool               `json:"proforma"`
	Status        string             `json:"status"`
	Items         []LineItemResponse `json:"items"`
	Totals        TotalsResponse     `json:"totals"`
	PaidAmount    decimal.Decimal    `json:"paid_amount"`
	BalanceDue    decimal.Decimal    `json:"balance_due"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Version       int                `json:"version"`
	DiscountType  string             `json:"discount_type"`
	DiscountValue string             `json:"discount_value"`
}

// CreateInvoiceRequest represents an invoice creation request
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID            `json:"customer_id" binding:"required"`
	IssueDate  *time.Time           `json:"issue_date"`
	Terms      billing.PaymentTerms `json:"terms"`
	Proforma   bool                 `json:"proforma"`
	Notes      string               `json:"notes" binding:"max=2000"`
	Items      []LineItemRequest    `json:"items"`
}

// UpdateInvoiceRequest represents updates to invoice header fields
type UpdateInvoiceRequest struct {
	IssueDate *time.Time            `json:"issue_date"`
	Terms     *billing.PaymentTerms `json:"terms"`
	Proforma  *bool                 `json:"proforma"`
	Notes     *string               `json:"notes" binding:"omitempty,max=2000"`
}

// CustomerSummaryResponse aggregates a customer's receivable position
type CustomerSummaryResponse struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	InvoiceCount int64           `json:"invoice_count"`
	TotalBilled  decimal.Decimal `json:"total_billed"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

func toInvoiceResponse(inv *billing.Invoice, asOf time.Time) *InvoiceResponse {
	return &InvoiceResponse{
		ID:            inv.ID,
		Number:        inv.Number,
		CustomerID:    inv.CustomerID,
		IssueDate:     inv.IssueDate,
		Terms:         inv.Terms.String(),
		DueDate:       inv.DueDate,
		Proforma:      inv.Proforma,
		Status:        inv.Status(asOf).String(),
		Items:         toLineItemResponses(inv.Items),
		Totals:        toTotalsResponse(inv.Totals),
		PaidAmount:    inv.PaidAmount,
		BalanceDue:    inv.BalanceDue(),
		CancelReason:  inv.CancelReason,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Version:       inv.Version,
		DiscountType:  string(inv.DiscountType),
		DiscountValue: inv.DiscountValue.String(),
	}
}

// Create creates an invoice with optional initial line items
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	number, err := s.invoiceRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	inv, err := billing.NewInvoice(tenantID, req.CustomerID, number, issueDate, req.Terms)
	if err != nil {
		return nil, err
	}
	inv.Proforma = req.Proforma
	inv.Notes = req.Notes

	for _, item := range req.Items {
		rate := s.taxRates.ResolveRatePercent(ctx, tenantID, item.TaxRateID)
		if _, err := inv.AddItem(item.ProductID, item.Description, item.Quantity, item.EnteredUnitPrice, rate); err != nil {
			return nil, err
		}
	}

	// Unlike estimates, invoices have no draft stage: creation is the submit
	if err := billing.ValidateLineItems(inv.Items); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// Get returns an invoice by ID
func (s *InvoiceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// InvoiceListQuery represents invoice list query parameters
type InvoiceListQuery struct {
	ListQuery
	CustomerID *uuid.UUID `form:"customer_id"`
}

// List lists invoices with filtering
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, query InvoiceListQuery) (*shared.Paginated[InvoiceResponse], error) {
	query.Normalize()

	filter := billing.InvoiceFilter{Filter: shared.DefaultFilter()}
	filter.Page = query.Page
	filter.PageSize = *query.PageSize
	filter.Search = query.Search
	filter.CustomerID = query.CustomerID
	filter.FromDate = query.FromDate
	filter.ToDate = query.ToDate
	if query.Status != "" {
		status := billing.DocumentStatus(query.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("Unknown status filter")
		}
		filter.Status = &status
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, *toInvoiceResponse(&invoices[i], now))
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListOpenByCustomer returns the customer's payable invoices for the
// allocation flow, oldest first
func (s *InvoiceService) ListOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindOpenByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, *toInvoiceResponse(&invoices[i], now))
	}
	return responses, nil
}

// CustomerSummary aggregates billed, paid and outstanding amounts for a customer
func (s *InvoiceService) CustomerSummary(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerSummaryResponse, error) {
	summary, err := s.invoiceRepo.SummarizeByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return &CustomerSummaryResponse{
		CustomerID:   summary.CustomerID,
		InvoiceCount: summary.InvoiceCount,
		TotalBilled:  summary.TotalBilled,
		TotalPaid:    summary.TotalPaid,
		Outstanding:  summary.Outstanding,
	}, nil
}

// Update updates invoice header fields, re-deriving the due date when the
// issue date or terms change
func (s *InvoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.IssueDate != nil {
		inv.SetIssueDate(*req.IssueDate)
	}
	if req.Terms != nil {
		inv.SetTerms(*req.Terms)
	}
	if req.Proforma != nil {
		if err := inv.SetProforma(*req.Proforma); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// AddItem adds a line item to an invoice
func (s *InvoiceService) AddItem(ctx context.Context, tenantID, id uuid.UUID, req LineItemRequest) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rate := s.taxRates.ResolveRatePercent(ctx, tenantID, req.TaxRateID)
	if _, err := inv.AddItem(req.ProductID, req.Description, req.Quantity, req.EnteredUnitPrice, rate); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// UpdateItem updates a line item on an invoice
func (s *InvoiceService) UpdateItem(ctx context.Context, tenantID, id, itemID uuid.UUID, req LineItemRequest) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rate := s.taxRates.ResolveRatePercent(ctx, tenantID, req.TaxRateID)
	err = inv.UpdateItem(itemID, func(item *billing.LineItem) {
		item.Description = req.Description
		item.ProductID = req.ProductID
		item.SetQuantity(req.Quantity)
		item.SetEnteredUnitPrice(req.EnteredUnitPrice)
		item.SetTaxRate(rate)
	})
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// RemoveItem removes a line item from an invoice
func (s *InvoiceService) RemoveItem(ctx context.Context, tenantID, id, itemID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := inv.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// SetDiscount updates the document-level discount
func (s *InvoiceService) SetDiscount(ctx context.Context, tenantID, id uuid.UUID, req DiscountRequest) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := inv.SetDiscount(req.DiscountType, req.DiscountValue); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// SetShipping updates the shipping cost
func (s *InvoiceService) SetShipping(ctx context.Context, tenantID, id uuid.UUID, req ShippingRequest) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	inv.SetShippingCost(req.ShippingCost)
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// Cancel cancels an invoice with a reason
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req CancelRequest) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// Delete soft deletes an invoice
func (s *InvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.invoiceRepo.DeleteForTenant(ctx, tenantID, id)
}

func (s *InvoiceService) load(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return inv, nil
}
