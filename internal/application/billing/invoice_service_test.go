package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) SummarizeByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*billing.CustomerSummary, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CustomerSummary), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// emptyTaxRateService resolves every tax lookup to zero percent
func emptyTaxRateService() *TaxRateService {
	repo := new(MockTaxRateRepository)
	repo.On("FindAllForTenant", mock.Anything, mock.Anything).
		Return([]billing.TaxRate{}, nil).Maybe()
	return NewTaxRateService(repo, nil, zap.NewNop())
}

func TestInvoiceServiceCreate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("rejects a create without line items", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("GenerateNumber", mock.Anything, tenantID).Return("INV-2026-0001", nil)
		svc := NewInvoiceService(repo, emptyTaxRateService())

		_, err := svc.Create(context.Background(), tenantID, CreateInvoiceRequest{
			CustomerID: uuid.New(),
			Terms:      billing.TermsNet30,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a create whose lines carry no product", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("GenerateNumber", mock.Anything, tenantID).Return("INV-2026-0001", nil)
		svc := NewInvoiceService(repo, emptyTaxRateService())

		_, err := svc.Create(context.Background(), tenantID, CreateInvoiceRequest{
			CustomerID: uuid.New(),
			Terms:      billing.TermsNet30,
			Items: []LineItemRequest{
				{Description: "Consulting", Quantity: dec("1"), EnteredUnitPrice: dec("100")},
			},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("persists once a product line is present", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("GenerateNumber", mock.Anything, tenantID).Return("INV-2026-0002", nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		svc := NewInvoiceService(repo, emptyTaxRateService())

		productID := uuid.New()
		resp, err := svc.Create(context.Background(), tenantID, CreateInvoiceRequest{
			CustomerID: uuid.New(),
			Terms:      billing.TermsNet30,
			Items: []LineItemRequest{
				{ProductID: &productID, Description: "Widget", Quantity: dec("2"), EnteredUnitPrice: dec("11.90")},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "INV-2026-0002", resp.Number)
		repo.AssertExpectations(t)
	})
}

func TestInvoiceServiceUpdate(t *testing.T) {
	tenantID := uuid.New()

	storedInvoice := func(t *testing.T, version int) *billing.Invoice {
		t.Helper()
		inv, err := billing.NewInvoice(tenantID, uuid.New(), "INV-2026-0001",
			time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), billing.TermsNet30)
		require.NoError(t, err)
		productID := uuid.New()
		_, err = inv.AddItem(&productID, "Widget", dec("1"), dec("11.90"), dec("19"))
		require.NoError(t, err)
		inv.Version = version
		return inv
	}

	t.Run("changing issue date and terms together saves against the loaded version", func(t *testing.T) {
		inv := storedInvoice(t, 3)
		repo := new(MockInvoiceRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, inv.ID).Return(inv, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved := args.Get(1).(*billing.Invoice)
			assert.Equal(t, 3, saved.Version, "in-memory edits must not advance the version")
		}).Return(nil)
		svc := NewInvoiceService(repo, emptyTaxRateService())

		newIssue := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		terms := billing.TermsNet15
		resp, err := svc.Update(context.Background(), tenantID, inv.ID, UpdateInvoiceRequest{
			IssueDate: &newIssue,
			Terms:     &terms,
		})

		require.NoError(t, err)
		require.NotNil(t, resp.DueDate)
		assert.True(t, newIssue.AddDate(0, 0, 15).Equal(*resp.DueDate))
		repo.AssertExpectations(t)
	})

	t.Run("a notes-only update saves against the loaded version", func(t *testing.T) {
		inv := storedInvoice(t, 5)
		repo := new(MockInvoiceRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, inv.ID).Return(inv, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved := args.Get(1).(*billing.Invoice)
			assert.Equal(t, 5, saved.Version, "in-memory edits must not advance the version")
		}).Return(nil)
		svc := NewInvoiceService(repo, emptyTaxRateService())

		notes := "net 15 agreed by phone"
		resp, err := svc.Update(context.Background(), tenantID, inv.ID, UpdateInvoiceRequest{
			Notes: &notes,
		})

		require.NoError(t, err)
		assert.Equal(t, notes, resp.Notes)
		repo.AssertExpectations(t)
	})

	t.Run("a concurrent edit surfaces the conflict", func(t *testing.T) {
		inv := storedInvoice(t, 2)
		repo := new(MockInvoiceRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, inv.ID).Return(inv, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)
		svc := NewInvoiceService(repo, emptyTaxRateService())

		notes := "rewritten elsewhere"
		_, err := svc.Update(context.Background(), tenantID, inv.ID, UpdateInvoiceRequest{
			Notes: &notes,
		})

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
	})
}
