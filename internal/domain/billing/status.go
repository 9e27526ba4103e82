package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus represents the settlement state of a financial document
type DocumentStatus string

const (
	StatusDraft         DocumentStatus = "DRAFT"          // Estimate not yet sent
	StatusSent          DocumentStatus = "SENT"           // Estimate delivered to the customer
	StatusProforma      DocumentStatus = "PROFORMA"       // Invoice issued pro forma, not payable
	StatusOpened        DocumentStatus = "OPENED"         // Unpaid, not yet due
	StatusPartiallyPaid DocumentStatus = "PARTIALLY_PAID" // 0 < paid < total
	StatusPaid          DocumentStatus = "PAID"           // paid >= total
	StatusOverdue       DocumentStatus = "OVERDUE"        // Unpaid and past the due date
	StatusCancelled     DocumentStatus = "CANCELLED"      // Explicitly cancelled, terminal
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusProforma, StatusOpened,
		StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states no transition leaves
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCancelled
}

// IsPayable returns true if a document in this status may receive further
// payment and is selectable in the allocation flow
func (s DocumentStatus) IsPayable() bool {
	return s == StatusOpened || s == StatusOverdue || s == StatusPartiallyPaid
}

// ComputeStatus classifies a document from its monetary state and due date.
// Status is derived on read rather than stored, so it can never drift from
// the amounts; the cancelled flag is the only independently-settable input.
//
//	cancelled            => CANCELLED (overrides everything, terminal)
//	paid >= total        => PAID
//	0 < paid < total     => PARTIALLY_PAID
//	paid = 0, due < asOf => OVERDUE
//	otherwise            => OPENED
//
// Due-date comparison is by calendar day: a document is overdue starting the
// day after its due date.
func ComputeStatus(totalAmount, paidAmount decimal.Decimal, dueDate *time.Time, cancelled bool, asOf time.Time) DocumentStatus {
	if cancelled {
		return StatusCancelled
	}
	if paidAmount.GreaterThanOrEqual(totalAmount) && paidAmount.IsPositive() {
		return StatusPaid
	}
	if paidAmount.IsPositive() {
		return StatusPartiallyPaid
	}
	if dueDate != nil && beforeDay(*dueDate, asOf) {
		return StatusOverdue
	}
	return StatusOpened
}

// beforeDay reports whether a falls on an earlier calendar day than b
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
