package billing

import (
	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TaxRate represents a named percentage tax rate configured per tenant.
// Tax is a simple percentage of a tax-inclusive unit price; there is no
// compound or jurisdiction-layered taxation.
type TaxRate struct {
	shared.TenantEntity
	Name        string          `json:"name"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	IsDefault   bool            `json:"is_default"`
}

// NewTaxRate creates a new tax rate
func NewTaxRate(tenantID uuid.UUID, name string, ratePercent decimal.Decimal, isDefault bool) (*TaxRate, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TAX_RATE_NAME", "Tax rate name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_TAX_RATE_NAME", "Tax rate name cannot exceed 100 characters")
	}
	if ratePercent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate percent cannot be negative")
	}

	return &TaxRate{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		RatePercent:  ratePercent,
		IsDefault:    isDefault,
	}, nil
}

// Rename updates the tax rate name
func (t *TaxRate) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_TAX_RATE_NAME", "Tax rate name cannot be empty")
	}
	t.Name = name
	t.Touch()
	return nil
}

// SetDefault flags or unflags this rate as the tenant default
func (t *TaxRate) SetDefault(isDefault bool) {
	t.IsDefault = isDefault
	t.Touch()
}

// DefaultTaxRate returns the first default-flagged rate in the list, or nil
// when none is flagged. If several rates are flagged the first match wins;
// the lookup collaborator is expected to keep the flag unique.
func DefaultTaxRate(rates []TaxRate) *TaxRate {
	for i := range rates {
		if rates[i].IsDefault {
			return &rates[i]
		}
	}
	return nil
}
