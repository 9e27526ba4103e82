package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockTaxRateRepository struct {
	mock.Mock
}

func (m *MockTaxRateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.TaxRate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TaxRate), args.Error(1)
}

func (m *MockTaxRateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]billing.TaxRate, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.TaxRate), args.Error(1)
}

func (m *MockTaxRateRepository) Save(ctx context.Context, rate *billing.TaxRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockTaxRateRepository) ClearDefaultForTenant(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockTaxRateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// fakeTaxRateCache is a map-backed cache for tests
type fakeTaxRateCache struct {
	data map[uuid.UUID][]billing.TaxRate
}

func newFakeCache() *fakeTaxRateCache {
	return &fakeTaxRateCache{data: make(map[uuid.UUID][]billing.TaxRate)}
}

func (c *fakeTaxRateCache) Get(_ context.Context, tenantID uuid.UUID) ([]billing.TaxRate, bool) {
	rates, ok := c.data[tenantID]
	return rates, ok
}

func (c *fakeTaxRateCache) Set(_ context.Context, tenantID uuid.UUID, rates []billing.TaxRate) {
	c.data[tenantID] = rates
}

func (c *fakeTaxRateCache) Invalidate(_ context.Context, tenantID uuid.UUID) {
	delete(c.data, tenantID)
}

func mustRate(t *testing.T, tenantID uuid.UUID, name, percent string, isDefault bool) billing.TaxRate {
	t.Helper()
	rate, err := billing.NewTaxRate(tenantID, name, dec(percent), isDefault)
	require.NoError(t, err)
	return *rate
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTaxRateServiceList(t *testing.T) {
	tenantID := uuid.New()

	t.Run("a lookup failure degrades to an empty list", func(t *testing.T) {
		repo := new(MockTaxRateRepository)
		repo.On("FindAllForTenant", mock.Anything, tenantID).
			Return(nil, errors.New("connection refused"))
		svc := NewTaxRateService(repo, nil, zap.NewNop())

		rates := svc.List(context.Background(), tenantID)
		assert.Empty(t, rates)
	})

	t.Run("results are cached after the first load", func(t *testing.T) {
		repo := new(MockTaxRateRepository)
		cache := newFakeCache()
		repo.On("FindAllForTenant", mock.Anything, tenantID).
			Return([]billing.TaxRate{mustRate(t, tenantID, "Standard", "19", true)}, nil).Once()
		svc := NewTaxRateService(repo, cache, zap.NewNop())

		first := svc.List(context.Background(), tenantID)
		second := svc.List(context.Background(), tenantID)
		assert.Len(t, first, 1)
		assert.Equal(t, first, second)
		repo.AssertNumberOfCalls(t, "FindAllForTenant", 1)
	})
}

func TestTaxRateServiceResolveRatePercent(t *testing.T) {
	tenantID := uuid.New()
	standard := mustRate(t, tenantID, "Standard", "19", true)
	reduced := mustRate(t, tenantID, "Reduced", "7", false)

	newService := func(rates []billing.TaxRate, err error) *TaxRateService {
		repo := new(MockTaxRateRepository)
		if err != nil {
			repo.On("FindAllForTenant", mock.Anything, tenantID).Return(nil, err)
		} else {
			repo.On("FindAllForTenant", mock.Anything, tenantID).Return(rates, nil)
		}
		return NewTaxRateService(repo, nil, zap.NewNop())
	}

	t.Run("resolves an explicit rate ID", func(t *testing.T) {
		svc := newService([]billing.TaxRate{standard, reduced}, nil)
		got := svc.ResolveRatePercent(context.Background(), tenantID, &reduced.ID)
		assert.True(t, dec("7").Equal(got))
	})

	t.Run("nil ID falls back to the tenant default", func(t *testing.T) {
		svc := newService([]billing.TaxRate{standard, reduced}, nil)
		got := svc.ResolveRatePercent(context.Background(), tenantID, nil)
		assert.True(t, dec("19").Equal(got))
	})

	t.Run("no default resolves to zero", func(t *testing.T) {
		svc := newService([]billing.TaxRate{reduced}, nil)
		got := svc.ResolveRatePercent(context.Background(), tenantID, nil)
		assert.True(t, got.IsZero())
	})

	t.Run("a failed lookup resolves to zero instead of erroring", func(t *testing.T) {
		svc := newService(nil, errors.New("timeout"))
		got := svc.ResolveRatePercent(context.Background(), tenantID, &standard.ID)
		assert.True(t, got.IsZero())
	})
}

func TestTaxRateServiceCreate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("flagging a default clears other defaults first", func(t *testing.T) {
		repo := new(MockTaxRateRepository)
		cache := newFakeCache()
		cache.Set(context.Background(), tenantID, []billing.TaxRate{})
		repo.On("ClearDefaultForTenant", mock.Anything, tenantID).Return(nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		svc := NewTaxRateService(repo, cache, zap.NewNop())

		resp, err := svc.Create(context.Background(), tenantID, CreateTaxRateRequest{
			Name: "Standard", RatePercent: dec("19"), IsDefault: true,
		})
		require.NoError(t, err)
		assert.True(t, resp.IsDefault)
		repo.AssertExpectations(t)

		_, stillCached := cache.Get(context.Background(), tenantID)
		assert.False(t, stillCached, "cache should be invalidated after a write")
	})

	t.Run("a non-default create does not touch other rates", func(t *testing.T) {
		repo := new(MockTaxRateRepository)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		svc := NewTaxRateService(repo, nil, zap.NewNop())

		_, err := svc.Create(context.Background(), tenantID, CreateTaxRateRequest{
			Name: "Reduced", RatePercent: dec("7"),
		})
		require.NoError(t, err)
		repo.AssertNotCalled(t, "ClearDefaultForTenant", mock.Anything, mock.Anything)
	})

	t.Run("domain validation errors pass through", func(t *testing.T) {
		repo := new(MockTaxRateRepository)
		svc := NewTaxRateService(repo, nil, zap.NewNop())

		_, err := svc.Create(context.Background(), tenantID, CreateTaxRateRequest{
			Name: "Negative", RatePercent: dec("-1"),
		})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
