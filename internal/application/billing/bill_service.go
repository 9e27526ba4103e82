package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillService provides application-level bill operations
type BillService struct {
	billRepo billing.BillRepository
	taxRates *TaxRateService
}

// NewBillService creates a new BillService
func NewBillService(billRepo billing.BillRepository, taxRates *TaxRateService) *BillService {
	return &BillService{billRepo: billRepo, taxRates: taxRates}
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID           uuid.UUID          `json:"id"`
	Number       string             `json:"number"`
	VendorID     uuid.UUID          `json:"vendor_id"`
	BillDate     time.Time          `json:"bill_date"`
	Terms        string             `json:"terms,omitempty"`
	DueDate      *time.Time         `json:"due_date,omitempty"`
	Status       string             `json:"status"`
	Items        []LineItemResponse `json:"items"`
	Total        decimal.Decimal    `json:"total"`
	PaidAmount   decimal.Decimal    `json:"paid_amount"`
	BalanceDue   decimal.Decimal    `json:"balance_due"`
	CancelReason string             `json:"cancel_reason,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	Version      int                `json:"version"`
}

// CreateBillRequest represents a bill creation request
type CreateBillRequest struct {
	VendorID uuid.UUID            `json:"vendor_id" binding:"required"`
	BillDate *time.Time           `json:"bill_date"`
	Terms    billing.PaymentTerms `json:"terms"`
	Notes    string               `json:"notes" binding:"max=2000"`
	Items    []LineItemRequest    `json:"items"`
}

// UpdateBillRequest represents updates to bill header fields
type UpdateBillRequest struct {
	BillDate *time.Time            `json:"bill_date"`
	Terms    *billing.PaymentTerms `json:"terms"`
	Notes    *string               `json:"notes" binding:"omitempty,max=2000"`
}

func toBillResponse(bill *billing.Bill, asOf time.Time) *BillResponse {
	return &BillResponse{
		ID:           bill.ID,
		Number:       bill.Number,
		VendorID:     bill.VendorID,
		BillDate:     bill.BillDate,
		Terms:        bill.Terms.String(),
		DueDate:      bill.DueDate,
		Status:       bill.Status(asOf).String(),
		Items:        toLineItemResponses(bill.Items),
		Total:        bill.Total,
		PaidAmount:   bill.PaidAmount,
		BalanceDue:   bill.BalanceDue(),
		CancelReason: bill.CancelReason,
		Notes:        bill.Notes,
		CreatedAt:    bill.CreatedAt,
		UpdatedAt:    bill.UpdatedAt,
		Version:      bill.Version,
	}
}

// Create creates a bill with optional initial line items
func (s *BillService) Create(ctx context.Context, tenantID uuid.UUID, req CreateBillRequest) (*BillResponse, error) {
	number, err := s.billRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	billDate := time.Now()
	if req.BillDate != nil {
		billDate = *req.BillDate
	}

	bill, err := billing.NewBill(tenantID, req.VendorID, number, billDate, req.Terms)
	if err != nil {
		return nil, err
	}
	bill.Notes = req.Notes

	for _, item := range req.Items {
		rate := s.taxRates.ResolveRatePercent(ctx, tenantID, item.TaxRateID)
		if _, err := bill.AddItem(item.ProductID, item.Description, item.Quantity, item.EnteredUnitPrice, rate); err != nil {
			return nil, err
		}
	}

	// Bills have no draft stage: creation is the submit
	if err := billing.ValidateLineItems(bill.Items); err != nil {
		return nil, err
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, err
	}
	return toBillResponse(bill, time.Now()), nil
}

// Get returns a bill by ID
func (s *BillService) Get(ctx context.Context, tenantID, id uuid.UUID) (*BillResponse, error) {
	bill, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toBillResponse(bill, time.Now()), nil
}

// BillListQuery represents bill list query parameters
type BillListQuery struct {
	ListQuery
	VendorID *uuid.UUID `form:"vendor_id"`
}

// List lists bills with filtering
func (s *BillService) List(ctx context.Context, tenantID uuid.UUID, query BillListQuery) (*shared.Paginated[BillResponse], error) {
	query.Normalize()

	filter := billing.BillFilter{Filter: shared.DefaultFilter()}
	filter.Page = query.Page
	filter.PageSize = *query.PageSize
	filter.Search = query.Search
	filter.VendorID = query.VendorID
	filter.FromDate = query.FromDate
	filter.ToDate = query.ToDate
	if query.Status != "" {
		status := billing.DocumentStatus(query.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("Unknown status filter")
		}
		filter.Status = &status
	}

	bills, err := s.billRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.billRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]BillResponse, 0, len(bills))
	for i := range bills {
		responses = append(responses, *toBillResponse(&bills[i], now))
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListOpenByVendor returns the vendor's payable bills for the allocation
// flow, oldest first
func (s *BillService) ListOpenByVendor(ctx context.Context, tenantID, vendorID uuid.UUID) ([]BillResponse, error) {
	bills, err := s.billRepo.FindOpenByVendor(ctx, tenantID, vendorID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	responses := make([]BillResponse, 0, len(bills))
	for i := range bills {
		responses = append(responses, *toBillResponse(&bills[i], now))
	}
	return responses, nil
}

// Update updates bill header fields, re-deriving the due date when the bill
// date or terms change
func (s *BillService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateBillRequest) (*BillResponse, error) {
	bill, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.BillDate != nil {
		bill.SetBillDate(*req.BillDate)
	}
	if req.Terms != nil {
		bill.SetTerms(*req.Terms)
	}
	if req.Notes != nil {
		bill.Notes = *req.Notes
	}

	if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
		return nil, err
	}
	return toBillResponse(bill, time.Now()), nil
}

// AddItem adds a line item to a bill. Applying a product to a bill line
// keeps the quantity the vendor billed.
func (s *BillService) AddItem(ctx context.Context, tenantID, id uuid.UUID, req LineItemRequest) (*BillResponse, error) {
	bill, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rate := s.taxRates.ResolveRatePercent(ctx, tenantID, req.TaxRateID)
	if _, err := bill.AddItem(req.ProductID, req.Description, req.Quantity, req.EnteredUnitPrice, rate); err != nil {
		return nil, err
	}
	if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
		return nil, err
	}
	return toBillResponse(bill, time.Now()), nil
}

// UpdateItem updates a line item on a bill
func (s *BillService) UpdateItem(ctx context.Context, tenantID, id, itemID uuid.UUID, req LineItemRequest) (*BillResponse, error) {
	bill, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rate := s.taxRates.ResolveRatePercent(ctx, tenantID, req.TaxRateID)
	err = bill.UpdateItem(itemID, func(item *billing.LineItem) {
		item.Description = req.Description
		item.ProductID = req.ProductID
		item.SetQuantity(req.Quantity)
		item.SetEnteredUnitPrice(req.EnteredUnitPrice)
		item.SetTaxRate(rate)
	})
	if err != nil {
		return nil, err
	}
	if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
		return nil, err
	}
	return toBillResponse(bill, time.Now()), nil
}

// RemoveItem removes a line item from a bill
func (s *BillService) RemoveItem(ctx context.Context, tenantID, id, itemID uuid.UUID) (*BillResponse, error) {
	bill, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := bill.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
		return nil, err
	}
	return toBillResponse(bill, time.Now()), nil
}

// Cancel cancels a bill with a reason
func (s *BillService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req CancelRequest) (*BillResponse, error) {
	bill, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := bill.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
		return nil, err
	}
	return toBillResponse(bill, time.Now()), nil
}

// Delete soft deletes a bill
func (s *BillService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.billRepo.DeleteForTenant(ctx, tenantID, id)
}

func (s *BillService) load(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bill not found")
	}
	return bill, nil
}
