package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TaxRateRepository defines the interface for tax rate persistence
type TaxRateRepository interface {
	// FindByIDForTenant finds a tax rate by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*TaxRate, error)

	// FindAllForTenant finds all tax rates for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]TaxRate, error)

	// Save creates or updates a tax rate
	Save(ctx context.Context, rate *TaxRate) error

	// ClearDefaultForTenant unsets the default flag on every rate of a tenant
	ClearDefaultForTenant(ctx context.Context, tenantID uuid.UUID) error

	// DeleteForTenant deletes a tax rate for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// EstimateFilter defines filtering options for estimate queries
type EstimateFilter struct {
	shared.Filter
	CustomerID *uuid.UUID      // Filter by customer
	Status     *DocumentStatus // Filter by lifecycle status
	FromDate   *time.Time      // Filter by issue date range start
	ToDate     *time.Time      // Filter by issue date range end
}

// EstimateRepository defines the interface for estimate persistence
type EstimateRepository interface {
	// FindByIDForTenant finds an estimate by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Estimate, error)

	// FindAllForTenant finds estimates for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter EstimateFilter) ([]Estimate, error)

	// CountForTenant counts estimates for a tenant with filtering
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter EstimateFilter) (int64, error)

	// Save creates or updates an estimate together with its line items
	Save(ctx context.Context, estimate *Estimate) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, estimate *Estimate) error

	// DeleteForTenant soft deletes an estimate for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// GenerateNumber generates the next estimate number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID      // Filter by customer
	Status     *DocumentStatus // Filter by derived status (resolved in the repository)
	FromDate   *time.Time      // Filter by issue date range start
	ToDate     *time.Time      // Filter by issue date range end
	DueFrom    *time.Time      // Filter by due date range start
	DueTo      *time.Time      // Filter by due date range end
}

// CustomerSummary aggregates a customer's receivable position
type CustomerSummary struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	InvoiceCount int64           `json:"invoice_count"`
	TotalBilled  decimal.Decimal `json:"total_billed"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByIDForTenant finds an invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindAllForTenant finds invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// FindOpenByCustomer finds payable invoices (opened, overdue or partially
	// paid) for a customer, oldest issue date first
	FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Invoice, error)

	// CountForTenant counts invoices for a tenant with filtering
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (int64, error)

	// SummarizeByCustomer aggregates billed, paid and outstanding amounts per customer
	SummarizeByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerSummary, error)

	// Save creates or updates an invoice together with its line items
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// DeleteForTenant soft deletes an invoice for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// GenerateNumber generates the next invoice number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// BillFilter defines filtering options for bill queries
type BillFilter struct {
	shared.Filter
	VendorID *uuid.UUID      // Filter by vendor
	Status   *DocumentStatus // Filter by derived status (resolved in the repository)
	FromDate *time.Time      // Filter by bill date range start
	ToDate   *time.Time      // Filter by bill date range end
}

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	// FindByIDForTenant finds a bill by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Bill, error)

	// FindAllForTenant finds bills for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter BillFilter) ([]Bill, error)

	// FindOpenByVendor finds payable bills (opened, overdue or partially
	// paid) for a vendor, oldest bill date first
	FindOpenByVendor(ctx context.Context, tenantID, vendorID uuid.UUID) ([]Bill, error)

	// CountForTenant counts bills for a tenant with filtering
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter BillFilter) (int64, error)

	// Save creates or updates a bill together with its line items
	Save(ctx context.Context, bill *Bill) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, bill *Bill) error

	// DeleteForTenant soft deletes a bill for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// GenerateNumber generates the next bill number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
