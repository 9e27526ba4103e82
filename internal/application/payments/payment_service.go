package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/openbooks/backend/internal/domain/payments"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records payment events and applies them to documents. All
// requested allocations are re-validated server-side against the freshly
// loaded open documents, so a stale client can never overpay.
type PaymentService struct {
	paymentRepo payments.PaymentEventRepository
	invoiceRepo billing.InvoiceRepository
	billRepo    billing.BillRepository
	uow         payments.UnitOfWork
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo payments.PaymentEventRepository,
	invoiceRepo billing.InvoiceRepository,
	billRepo billing.BillRepository,
	uow payments.UnitOfWork,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		billRepo:    billRepo,
		uow:         uow,
		logger:      logger,
	}
}

// AllocationRequest is one document's requested share of a payment
type AllocationRequest struct {
	DocumentID uuid.UUID       `json:"document_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// RecordPaymentRequest represents a payment submission
type RecordPaymentRequest struct {
	CounterpartyID uuid.UUID              `json:"counterparty_id" binding:"required"`
	Method         payments.PaymentMethod `json:"method"`
	PaymentDate    *time.Time             `json:"payment_date"`
	Reference      string                 `json:"reference" binding:"max=200"`
	Notes          string                 `json:"notes" binding:"max=2000"`
	Allocations    []AllocationRequest    `json:"allocations"`
}

// AllocationResponse represents a payment allocation in API responses
type AllocationResponse struct {
	DocumentID uuid.UUID       `json:"document_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaymentResponse represents a payment event in API responses
type PaymentResponse struct {
	ID             uuid.UUID            `json:"id"`
	Number         string               `json:"number"`
	Direction      string               `json:"direction"`
	CounterpartyID uuid.UUID            `json:"counterparty_id"`
	Method         string               `json:"method"`
	PaymentDate    time.Time            `json:"payment_date"`
	Total          decimal.Decimal      `json:"total"`
	Reference      string               `json:"reference,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	Allocations    []AllocationResponse `json:"allocations"`
	CreatedAt      time.Time            `json:"created_at"`
}

func toPaymentResponse(event *payments.PaymentEvent) *PaymentResponse {
	allocations := make([]AllocationResponse, 0, len(event.Allocations))
	for _, a := range event.Allocations {
		allocations = append(allocations, AllocationResponse{
			DocumentID: a.DocumentID,
			Amount:     a.Amount,
		})
	}
	return &PaymentResponse{
		ID:             event.ID,
		Number:         event.Number,
		Direction:      event.Direction.String(),
		CounterpartyID: event.CounterpartyID,
		Method:         event.Method.String(),
		PaymentDate:    event.PaymentDate,
		Total:          event.Total,
		Reference:      event.Reference,
		Notes:          event.Notes,
		Allocations:    allocations,
		CreatedAt:      event.CreatedAt,
	}
}

// ReceivePayment records a customer payment across the customer's open
// invoices. The payment event and every touched invoice commit in one
// transaction; a validation failure persists nothing.
func (s *PaymentService) ReceivePayment(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	invoices, err := s.invoiceRepo.FindOpenByCustomer(ctx, tenantID, req.CounterpartyID)
	if err != nil {
		return nil, err
	}

	open := make([]payments.OpenDocument, 0, len(invoices))
	for i := range invoices {
		open = append(open, payments.OpenDocument{
			ID:         invoices[i].ID,
			Number:     invoices[i].Number,
			DueDate:    invoices[i].DueDate,
			Total:      invoices[i].Totals.Total,
			BalanceDue: invoices[i].BalanceDue(),
		})
	}

	submission, err := s.buildSubmission(open, req)
	if err != nil {
		return nil, err
	}

	event, err := s.newEvent(ctx, tenantID, payments.DirectionReceived, req, submission)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*billing.Invoice, len(invoices))
	for i := range invoices {
		byID[invoices[i].ID] = &invoices[i]
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		for _, line := range submission.Allocations {
			inv := byID[line.DocumentID]
			if err := inv.ApplyPayment(line.Amount); err != nil {
				return err
			}
			if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
				return err
			}
		}
		return s.paymentRepo.Save(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment received",
		zap.String("payment_id", event.ID.String()),
		zap.String("customer_id", req.CounterpartyID.String()),
		zap.String("total", event.Total.String()),
		zap.Int("documents", len(event.Allocations)))
	return toPaymentResponse(event), nil
}

// SendPayment records a payment to a vendor across the vendor's open bills,
// with the same atomicity as ReceivePayment
func (s *PaymentService) SendPayment(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	bills, err := s.billRepo.FindOpenByVendor(ctx, tenantID, req.CounterpartyID)
	if err != nil {
		return nil, err
	}

	open := make([]payments.OpenDocument, 0, len(bills))
	for i := range bills {
		open = append(open, payments.OpenDocument{
			ID:         bills[i].ID,
			Number:     bills[i].Number,
			DueDate:    bills[i].DueDate,
			Total:      bills[i].Total,
			BalanceDue: bills[i].BalanceDue(),
		})
	}

	submission, err := s.buildSubmission(open, req)
	if err != nil {
		return nil, err
	}

	event, err := s.newEvent(ctx, tenantID, payments.DirectionSent, req, submission)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*billing.Bill, len(bills))
	for i := range bills {
		byID[bills[i].ID] = &bills[i]
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		for _, line := range submission.Allocations {
			bill := byID[line.DocumentID]
			if err := bill.ApplyPayment(line.Amount); err != nil {
				return err
			}
			if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
				return err
			}
		}
		return s.paymentRepo.Save(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment sent",
		zap.String("payment_id", event.ID.String()),
		zap.String("vendor_id", req.CounterpartyID.String()),
		zap.String("total", event.Total.String()),
		zap.Int("documents", len(event.Allocations)))
	return toPaymentResponse(event), nil
}

// buildSubmission replays the requested allocations through the allocator so
// the request faces the same rules as interactive selection
func (s *PaymentService) buildSubmission(open []payments.OpenDocument, req RecordPaymentRequest) (*payments.Submission, error) {
	allocator := payments.NewAllocator(open)
	allocator.SetMethod(req.Method)
	for _, a := range req.Allocations {
		if err := allocator.Toggle(a.DocumentID); err != nil {
			return nil, err
		}
		if err := allocator.SetAmount(a.DocumentID, a.Amount); err != nil {
			return nil, err
		}
	}
	return allocator.BuildSubmission()
}

func (s *PaymentService) newEvent(ctx context.Context, tenantID uuid.UUID, direction payments.PaymentDirection, req RecordPaymentRequest, submission *payments.Submission) (*payments.PaymentEvent, error) {
	number, err := s.paymentRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	allocations := make([]payments.PaymentAllocation, 0, len(submission.Allocations))
	for _, line := range submission.Allocations {
		allocations = append(allocations, payments.PaymentAllocation{
			DocumentID: line.DocumentID,
			Amount:     line.Amount,
		})
	}

	event, err := payments.NewPaymentEvent(tenantID, req.CounterpartyID, number, direction, submission.Method, paymentDate, allocations)
	if err != nil {
		return nil, err
	}
	event.Reference = req.Reference
	event.Notes = req.Notes
	return event, nil
}

// Get returns a payment event by ID
func (s *PaymentService) Get(ctx context.Context, tenantID, id uuid.UUID) (*PaymentResponse, error) {
	event, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	return toPaymentResponse(event), nil
}

// PaymentListQuery represents payment list query parameters
type PaymentListQuery struct {
	Direction      string     `form:"direction"`
	CounterpartyID *uuid.UUID `form:"counterparty_id"`
	Method         string     `form:"method"`
	FromDate       *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate         *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
}

// List lists payment events with filtering
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, query PaymentListQuery) (*shared.Paginated[PaymentResponse], error) {
	filter := payments.PaymentFilter{Filter: shared.DefaultFilter()}
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 && query.PageSize <= 100 {
		filter.PageSize = query.PageSize
	}
	filter.CounterpartyID = query.CounterpartyID
	filter.FromDate = query.FromDate
	filter.ToDate = query.ToDate
	if query.Direction != "" {
		direction := payments.PaymentDirection(query.Direction)
		if !direction.IsValid() {
			return nil, shared.NewValidationError("Unknown payment direction")
		}
		filter.Direction = &direction
	}
	if query.Method != "" {
		method := payments.PaymentMethod(query.Method)
		if !method.IsValid() {
			return nil, shared.NewValidationError("Unknown payment method")
		}
		filter.Method = &method
	}

	events, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, 0, len(events))
	for i := range events {
		responses = append(responses, *toPaymentResponse(&events[i]))
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}
