package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/shared"
)

// PaymentFilter defines filtering options for payment event queries
type PaymentFilter struct {
	shared.Filter
	Direction      *PaymentDirection // Filter by direction
	CounterpartyID *uuid.UUID        // Filter by customer or vendor
	Method         *PaymentMethod    // Filter by payment method
	FromDate       *time.Time        // Filter by payment date range start
	ToDate         *time.Time        // Filter by payment date range end
}

// PaymentEventRepository defines the interface for payment event persistence
type PaymentEventRepository interface {
	// FindByIDForTenant finds a payment event by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentEvent, error)

	// FindAllForTenant finds payment events for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]PaymentEvent, error)

	// FindByDocument finds payment events that allocate to the given document
	FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]PaymentEvent, error)

	// CountForTenant counts payment events for a tenant with filtering
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)

	// Save persists a payment event together with its allocations
	Save(ctx context.Context, event *PaymentEvent) error

	// GenerateNumber generates the next payment number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// UnitOfWork runs the given function inside a single transaction; the
// repositories passed to fn share that transaction. Payment application
// touches the event and several documents and must commit atomically.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
