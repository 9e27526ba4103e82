package billing

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaxRate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates tax rate with valid inputs", func(t *testing.T) {
		rate, err := NewTaxRate(tenantID, "Standard 19%", dec("19"), true)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, rate.ID)
		assert.Equal(t, tenantID, rate.TenantID)
		assert.Equal(t, "Standard 19%", rate.Name)
		assert.True(t, dec("19").Equal(rate.RatePercent))
		assert.True(t, rate.IsDefault)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewTaxRate(tenantID, "", dec("19"), false)
		assert.Error(t, err)
	})

	t.Run("fails with overlong name", func(t *testing.T) {
		_, err := NewTaxRate(tenantID, strings.Repeat("x", 101), dec("19"), false)
		assert.Error(t, err)
	})

	t.Run("fails with negative rate", func(t *testing.T) {
		_, err := NewTaxRate(tenantID, "Negative", dec("-1"), false)
		assert.Error(t, err)
	})

	t.Run("allows a zero rate", func(t *testing.T) {
		rate, err := NewTaxRate(tenantID, "Exempt", decimal.Zero, false)
		require.NoError(t, err)
		assert.True(t, rate.RatePercent.IsZero())
	})
}

func TestDefaultTaxRate(t *testing.T) {
	tenantID := uuid.New()
	mk := func(name string, isDefault bool) TaxRate {
		rate, err := NewTaxRate(tenantID, name, dec("10"), isDefault)
		require.NoError(t, err)
		return *rate
	}

	t.Run("returns the first default-flagged rate", func(t *testing.T) {
		rates := []TaxRate{mk("A", false), mk("B", true), mk("C", true)}
		got := DefaultTaxRate(rates)
		require.NotNil(t, got)
		assert.Equal(t, "B", got.Name)
	})

	t.Run("returns nil when nothing is flagged", func(t *testing.T) {
		rates := []TaxRate{mk("A", false)}
		assert.Nil(t, DefaultTaxRate(rates))
	})

	t.Run("returns nil for an empty list", func(t *testing.T) {
		assert.Nil(t, DefaultTaxRate(nil))
	})
}
