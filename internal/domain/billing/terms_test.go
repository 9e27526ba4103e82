package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDueDate(t *testing.T) {
	issue := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		terms PaymentTerms
		want  time.Time
	}{
		{"due on receipt", TermsDueOnReceipt, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"net 15", TermsNet15, time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)},
		{"net 30 crosses the month", TermsNet30, time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)},
		{"net 60", TermsNet60, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := ResolveDueDate(issue, tt.terms)
			require.NotNil(t, due)
			assert.True(t, tt.want.Equal(*due), "due = %s", due)
		})
	}

	t.Run("unknown terms leave the due date blank", func(t *testing.T) {
		assert.Nil(t, ResolveDueDate(issue, PaymentTerms("NET_45")))
		assert.Nil(t, ResolveDueDate(issue, ""))
	})
}

func TestPaymentTermsIsValid(t *testing.T) {
	assert.True(t, TermsDueOnReceipt.IsValid())
	assert.True(t, TermsNet60.IsValid())
	assert.False(t, PaymentTerms("NET_90").IsValid())
}
