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
)

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.BillFilter) ([]billing.Bill, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindOpenByVendor(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billing.Bill, error) {
	args := m.Called(ctx, tenantID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.BillFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockBillRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func TestBillServiceCreate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("rejects a create without line items", func(t *testing.T) {
		repo := new(MockBillRepository)
		repo.On("GenerateNumber", mock.Anything, tenantID).Return("BILL-2026-0001", nil)
		svc := NewBillService(repo, emptyTaxRateService())

		_, err := svc.Create(context.Background(), tenantID, CreateBillRequest{
			VendorID: uuid.New(),
			Terms:    billing.TermsNet15,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a create whose lines carry no product", func(t *testing.T) {
		repo := new(MockBillRepository)
		repo.On("GenerateNumber", mock.Anything, tenantID).Return("BILL-2026-0001", nil)
		svc := NewBillService(repo, emptyTaxRateService())

		_, err := svc.Create(context.Background(), tenantID, CreateBillRequest{
			VendorID: uuid.New(),
			Terms:    billing.TermsNet15,
			Items: []LineItemRequest{
				{Description: "Cleaning", Quantity: dec("1"), EnteredUnitPrice: dec("50")},
			},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("persists once a product line is present", func(t *testing.T) {
		repo := new(MockBillRepository)
		repo.On("GenerateNumber", mock.Anything, tenantID).Return("BILL-2026-0002", nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		svc := NewBillService(repo, emptyTaxRateService())

		productID := uuid.New()
		resp, err := svc.Create(context.Background(), tenantID, CreateBillRequest{
			VendorID: uuid.New(),
			Terms:    billing.TermsNet15,
			Items: []LineItemRequest{
				{ProductID: &productID, Description: "Office supplies", Quantity: dec("3"), EnteredUnitPrice: dec("9.99")},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "BILL-2026-0002", resp.Number)
		repo.AssertExpectations(t)
	})
}

func TestBillServiceUpdate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("changing bill date and terms together saves against the loaded version", func(t *testing.T) {
		bill, err := billing.NewBill(tenantID, uuid.New(), "BILL-2026-0001",
			time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), billing.TermsNet15)
		require.NoError(t, err)
		productID := uuid.New()
		_, err = bill.AddItem(&productID, "Office supplies", dec("3"), dec("9.99"), dec("19"))
		require.NoError(t, err)
		bill.Version = 4

		repo := new(MockBillRepository)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, bill.ID).Return(bill, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved := args.Get(1).(*billing.Bill)
			assert.Equal(t, 4, saved.Version, "in-memory edits must not advance the version")
		}).Return(nil)
		svc := NewBillService(repo, emptyTaxRateService())

		newDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		terms := billing.TermsNet30
		resp, err := svc.Update(context.Background(), tenantID, bill.ID, UpdateBillRequest{
			BillDate: &newDate,
			Terms:    &terms,
		})

		require.NoError(t, err)
		require.NotNil(t, resp.DueDate)
		assert.True(t, newDate.AddDate(0, 0, 30).Equal(*resp.DueDate))
		repo.AssertExpectations(t)
	})
}
