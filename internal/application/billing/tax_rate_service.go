package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TaxRateCache caches a tenant's tax rate list to keep the hot document-edit
// path off the database. Implementations may be remote (Redis) or in-memory.
type TaxRateCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) ([]billing.TaxRate, bool)
	Set(ctx context.Context, tenantID uuid.UUID, rates []billing.TaxRate)
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// TaxRateService provides application-level tax rate operations
type TaxRateService struct {
	repo   billing.TaxRateRepository
	cache  TaxRateCache
	logger *zap.Logger
}

// NewTaxRateService creates a new TaxRateService
func NewTaxRateService(repo billing.TaxRateRepository, cache TaxRateCache, logger *zap.Logger) *TaxRateService {
	return &TaxRateService{repo: repo, cache: cache, logger: logger}
}

// TaxRateResponse represents a tax rate in API responses
type TaxRateResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	IsDefault   bool            `json:"is_default"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateTaxRateRequest represents a tax rate creation request
type CreateTaxRateRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	RatePercent decimal.Decimal `json:"rate_percent" binding:"required"`
	IsDefault   bool            `json:"is_default"`
}

// UpdateTaxRateRequest represents a tax rate update request
type UpdateTaxRateRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=100"`
	IsDefault *bool   `json:"is_default"`
}

func toTaxRateResponse(rate *billing.TaxRate) *TaxRateResponse {
	return &TaxRateResponse{
		ID:          rate.ID,
		Name:        rate.Name,
		RatePercent: rate.RatePercent,
		IsDefault:   rate.IsDefault,
		CreatedAt:   rate.CreatedAt,
		UpdatedAt:   rate.UpdatedAt,
	}
}

// List returns a tenant's tax rates. A lookup failure degrades to an empty
// list so document editing stays usable without tax selection; the failure
// is logged, never surfaced to the caller.
func (s *TaxRateService) List(ctx context.Context, tenantID uuid.UUID) []TaxRateResponse {
	rates := s.loadRates(ctx, tenantID)
	responses := make([]TaxRateResponse, 0, len(rates))
	for i := range rates {
		responses = append(responses, *toTaxRateResponse(&rates[i]))
	}
	return responses
}

// DefaultRate returns the tenant's default tax rate, or nil when none is
// configured or the lookup failed
func (s *TaxRateService) DefaultRate(ctx context.Context, tenantID uuid.UUID) *TaxRateResponse {
	rates := s.loadRates(ctx, tenantID)
	if rate := billing.DefaultTaxRate(rates); rate != nil {
		return toTaxRateResponse(rate)
	}
	return nil
}

// ResolveRatePercent resolves a tax rate ID to its percentage. A nil ID
// resolves to the tenant default, and zero when there is none.
func (s *TaxRateService) ResolveRatePercent(ctx context.Context, tenantID uuid.UUID, taxRateID *uuid.UUID) decimal.Decimal {
	rates := s.loadRates(ctx, tenantID)
	if taxRateID != nil {
		for i := range rates {
			if rates[i].ID == *taxRateID {
				return rates[i].RatePercent
			}
		}
	}
	if rate := billing.DefaultTaxRate(rates); rate != nil {
		return rate.RatePercent
	}
	return decimal.Zero
}

func (s *TaxRateService) loadRates(ctx context.Context, tenantID uuid.UUID) []billing.TaxRate {
	if s.cache != nil {
		if rates, ok := s.cache.Get(ctx, tenantID); ok {
			return rates
		}
	}
	rates, err := s.repo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		s.logger.Warn("tax rate lookup failed, continuing without rates",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return nil
	}
	if s.cache != nil {
		s.cache.Set(ctx, tenantID, rates)
	}
	return rates
}

// Create creates a tax rate. Flagging it default unflags every other rate of
// the tenant.
func (s *TaxRateService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTaxRateRequest) (*TaxRateResponse, error) {
	rate, err := billing.NewTaxRate(tenantID, req.Name, req.RatePercent, req.IsDefault)
	if err != nil {
		return nil, err
	}
	if req.IsDefault {
		if err := s.repo.ClearDefaultForTenant(ctx, tenantID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Save(ctx, rate); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return toTaxRateResponse(rate), nil
}

// Update updates a tax rate's name or default flag
func (s *TaxRateService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateTaxRateRequest) (*TaxRateResponse, error) {
	rate, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Tax rate not found")
	}

	if req.Name != nil {
		if err := rate.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.IsDefault != nil {
		if *req.IsDefault && !rate.IsDefault {
			if err := s.repo.ClearDefaultForTenant(ctx, tenantID); err != nil {
				return nil, err
			}
		}
		rate.SetDefault(*req.IsDefault)
	}

	if err := s.repo.Save(ctx, rate); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return toTaxRateResponse(rate), nil
}

// Delete removes a tax rate. Existing documents keep the percentages already
// copied onto their lines.
func (s *TaxRateService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *TaxRateService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID)
	}
}
