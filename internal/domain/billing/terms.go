package billing

import "time"

// PaymentTerms represents a payment-due policy code
type PaymentTerms string

const (
	TermsDueOnReceipt PaymentTerms = "DUE_ON_RECEIPT"
	TermsNet15        PaymentTerms = "NET_15"
	TermsNet30        PaymentTerms = "NET_30"
	TermsNet60        PaymentTerms = "NET_60"
)

// IsValid checks if the terms code is a known policy
func (t PaymentTerms) IsValid() bool {
	switch t {
	case TermsDueOnReceipt, TermsNet15, TermsNet30, TermsNet60:
		return true
	}
	return false
}

// String returns the string representation of PaymentTerms
func (t PaymentTerms) String() string {
	return string(t)
}

// netDays maps each known terms code to its day offset
func (t PaymentTerms) netDays() int {
	switch t {
	case TermsDueOnReceipt:
		return 0
	case TermsNet15:
		return 15
	case TermsNet30:
		return 30
	case TermsNet60:
		return 60
	}
	return 0
}

// ResolveDueDate derives a due date from the issue date and terms code.
// Unknown or empty terms yield nil and the field is left blank. The due date
// is derived, never independently edited; callers recompute it whenever the
// issue date or terms change.
func ResolveDueDate(issueDate time.Time, terms PaymentTerms) *time.Time {
	if !terms.IsValid() {
		return nil
	}
	due := issueDate.AddDate(0, 0, terms.netDays())
	return &due
}
