package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/openbooks/backend/internal/domain/shared"
)

// EstimateService provides application-level estimate operations
type EstimateService struct {
	estimateRepo billing.EstimateRepository
	invoiceRepo  billing.InvoiceRepository
	taxRates     *TaxRateService
}

// NewEstimateService creates a new EstimateService
func NewEstimateService(estimateRepo billing.EstimateRepository, invoiceRepo billing.InvoiceRepository, taxRates *TaxRateService) *EstimateService {
	return &EstimateService{
		estimateRepo: estimateRepo,
		invoiceRepo:  invoiceRepo,
		taxRates:     taxRates,
	}
}

// EstimateResponse represents an estimate in API responses
type EstimateResponse struct {
	ID            uuid.UUID          `json:"id"`
	Number        string             `json:"number"`
	CustomerID    uuid.UUID          `json:"customer_id"`
	IssueDate     time.Time          `json:"issue_date"`
	ValidUntil    *time.Time         `json:"valid_until,omitempty"`
	Status        string             `json:"status"`
	Items         []LineItemResponse `json:"items"`
	Totals        TotalsResponse     `json:"totals"`
	Notes         string             `json:"notes,omitempty"`
	ConvertedTo   *uuid.UUID         `json:"converted_to,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Version       int                `json:"version"`
	DiscountType  string             `json:"discount_type"`
	DiscountValue string             `json:"discount_value"`
}

// CreateEstimateRequest represents an estimate creation request
type CreateEstimateRequest struct {
	CustomerID uuid.UUID         `json:"customer_id" binding:"required"`
	IssueDate  *time.Time        `json:"issue_date"`
	ValidUntil *time.Time        `json:"valid_until"`
	Notes      string            `json:"notes" binding:"max=2000"`
	Items      []LineItemRequest `json:"items"`
}

// UpdateEstimateRequest represents updates to estimate header fields
type UpdateEstimateRequest struct {
	IssueDate  *time.Time `json:"issue_date"`
	ValidUntil *time.Time `json:"valid_until"`
	Notes      *string    `json:"notes" binding:"omitempty,max=2000"`
}

// ConvertEstimateRequest represents an estimate-to-invoice conversion request
type ConvertEstimateRequest struct {
	IssueDate *time.Time           `json:"issue_date"`
	Terms     billing.PaymentTerms `json:"terms"`
}

func toEstimateResponse(est *billing.Estimate) *EstimateResponse {
	return &EstimateResponse{
		ID:            est.ID,
		Number:        est.Number,
		CustomerID:    est.CustomerID,
		IssueDate:     est.IssueDate,
		ValidUntil:    est.ValidUntil,
		Status:        est.Status.String(),
		Items:         toLineItemResponses(est.Items),
		Totals:        toTotalsResponse(est.Totals),
		Notes:         est.Notes,
		ConvertedTo:   est.ConvertedTo,
		CreatedAt:     est.CreatedAt,
		UpdatedAt:     est.UpdatedAt,
		Version:       est.Version,
		DiscountType:  string(est.DiscountType),
		DiscountValue: est.DiscountValue.String(),
	}
}

// Create creates a draft estimate with optional initial line items
func (s *EstimateService) Create(ctx context.Context, tenantID uuid.UUID, req CreateEstimateRequest) (*EstimateResponse, error) {
	number, err := s.estimateRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	est, err := billing.NewEstimate(tenantID, req.CustomerID, number, issueDate)
	if err != nil {
		return nil, err
	}
	est.ValidUntil = req.ValidUntil
	est.Notes = req.Notes

	for _, item := range req.Items {
		rate := s.taxRates.ResolveRatePercent(ctx, tenantID, item.TaxRateID)
		if _, err := est.AddItem(item.ProductID, item.Description, item.Quantity, item.EnteredUnitPrice, rate); err != nil {
			return nil, err
		}
	}

	if err := s.estimateRepo.Save(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// Get returns an estimate by ID
func (s *EstimateService) Get(ctx context.Context, tenantID, id uuid.UUID) (*EstimateResponse, error) {
	est, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// List lists estimates with filtering
func (s *EstimateService) List(ctx context.Context, tenantID uuid.UUID, query ListQuery) (*shared.Paginated[EstimateResponse], error) {
	query.Normalize()

	filter := billing.EstimateFilter{Filter: shared.DefaultFilter()}
	filter.Page = query.Page
	filter.PageSize = *query.PageSize
	filter.Search = query.Search
	filter.FromDate = query.FromDate
	filter.ToDate = query.ToDate
	if query.Status != "" {
		status := billing.DocumentStatus(query.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("Unknown status filter")
		}
		filter.Status = &status
	}

	estimates, err := s.estimateRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.estimateRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]EstimateResponse, 0, len(estimates))
	for i := range estimates {
		responses = append(responses, *toEstimateResponse(&estimates[i]))
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates estimate header fields
func (s *EstimateService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateEstimateRequest) (*EstimateResponse, error) {
	est, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.IssueDate != nil {
		if err := est.SetIssueDate(*req.IssueDate); err != nil {
			return nil, err
		}
	}
	if req.ValidUntil != nil {
		if err := est.SetValidUntil(req.ValidUntil); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		est.Notes = *req.Notes
	}

	if err := s.estimateRepo.SaveWithLock(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// AddItem adds a line item to an estimate
func (s *EstimateService) AddItem(ctx context.Context, tenantID, id uuid.UUID, req LineItemRequest) (*EstimateResponse, error) {
	est, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rate := s.taxRates.ResolveRatePercent(ctx, tenantID, req.TaxRateID)
	if _, err := est.AddItem(req.ProductID, req.Description, req.Quantity, req.EnteredUnitPrice, rate); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.SaveWithLock(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// UpdateItem updates a line item on an estimate
func (s *EstimateService) UpdateItem(ctx context.Context, tenantID, id, itemID uuid.UUID, req LineItemRequest) (*EstimateResponse, error) {
	est, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rate := s.taxRates.ResolveRatePercent(ctx, tenantID, req.TaxRateID)
	err = est.UpdateItem(itemID, func(item *billing.LineItem) {
		item.Description = req.Description
		item.ProductID = req.ProductID
		item.SetQuantity(req.Quantity)
		item.SetEnteredUnitPrice(req.EnteredUnitPrice)
		item.SetTaxRate(rate)
	})
	if err != nil {
		return nil, err
	}
	if err := s.estimateRepo.SaveWithLock(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// RemoveItem removes a line item from an estimate
func (s *EstimateService) RemoveItem(ctx context.Context, tenantID, id, itemID uuid.UUID) (*EstimateResponse, error) {
	est, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := est.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.SaveWithLock(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// SetDiscount updates the document-level discount
func (s *EstimateService) SetDiscount(ctx context.Context, tenantID, id uuid.UUID, req DiscountRequest) (*EstimateResponse, error) {
	est, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := est.SetDiscount(req.DiscountType, req.DiscountValue); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.SaveWithLock(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// SetShipping updates the shipping cost
func (s *EstimateService) SetShipping(ctx context.Context, tenantID, id uuid.UUID, req ShippingRequest) (*EstimateResponse, error) {
	est, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	est.SetShippingCost(req.ShippingCost)
	if err := s.estimateRepo.SaveWithLock(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// MarkSent transitions a draft estimate to SENT
func (s *EstimateService) MarkSent(ctx context.Context, tenantID, id uuid.UUID) (*EstimateResponse, error) {
	est, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := est.MarkSent(); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.SaveWithLock(ctx, est); err != nil {
		return nil, err
	}
	return toEstimateResponse(est), nil
}

// Convert turns an estimate into an invoice. The estimate and the new
// invoice are saved together; the estimate records the invoice ID.
func (s *EstimateService) Convert(ctx context.Context, tenantID, id uuid.UUID, req ConvertEstimateRequest) (*InvoiceResponse, error) {
	est, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	number, err := s.invoiceRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}

	inv, err := est.ConvertToInvoice(number, issueDate, req.Terms)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.SaveWithLock(ctx, est); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, time.Now()), nil
}

// Delete soft deletes an estimate
func (s *EstimateService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.estimateRepo.DeleteForTenant(ctx, tenantID, id)
}

func (s *EstimateService) load(ctx context.Context, tenantID, id uuid.UUID) (*billing.Estimate, error) {
	est, err := s.estimateRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Estimate not found")
	}
	return est, nil
}
