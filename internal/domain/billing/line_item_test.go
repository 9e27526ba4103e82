package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPriceLine(t *testing.T) {
	t.Run("derives net and tax from tax-inclusive price", func(t *testing.T) {
		p := PriceLine(dec("3"), dec("10.00"), dec("19"))
		assert.True(t, dec("8.40").Equal(p.NetUnitPrice), "net = %s", p.NetUnitPrice)
		assert.True(t, dec("1.60").Equal(p.TaxAmountPerUnit), "tax = %s", p.TaxAmountPerUnit)
		assert.True(t, dec("30.00").Equal(p.LineTotal), "line total = %s", p.LineTotal)
	})

	t.Run("zero tax rate keeps net equal to entered price", func(t *testing.T) {
		p := PriceLine(dec("2"), dec("12.34"), decimal.Zero)
		assert.True(t, dec("12.34").Equal(p.NetUnitPrice))
		assert.True(t, decimal.Zero.Equal(p.TaxAmountPerUnit))
		assert.True(t, dec("24.68").Equal(p.LineTotal))
	})

	t.Run("line total multiplies the gross price, not net plus tax", func(t *testing.T) {
		// 1.00 at 29%: net rounds to 0.78 and tax to 0.23, recomposing to
		// 1.01, while the line total stays at the entered 1.00
		p := PriceLine(dec("1"), dec("1.00"), dec("29"))
		assert.True(t, dec("0.78").Equal(p.NetUnitPrice))
		assert.True(t, dec("0.23").Equal(p.TaxAmountPerUnit))
		assert.True(t, dec("1.00").Equal(p.LineTotal))
		assert.True(t, dec("1.01").Equal(p.NetUnitPrice.Add(p.TaxAmountPerUnit)))
	})

	t.Run("rounds half away from zero at each step", func(t *testing.T) {
		p := PriceLine(dec("1"), dec("-1.005"), decimal.Zero)
		assert.True(t, dec("-1.01").Equal(p.LineTotal), "line total = %s", p.LineTotal)
	})

	t.Run("negative prices are computed as-is", func(t *testing.T) {
		p := PriceLine(dec("1"), dec("-11.90"), dec("19"))
		assert.True(t, dec("-10.00").Equal(p.NetUnitPrice))
		assert.True(t, dec("-1.90").Equal(p.TaxAmountPerUnit))
	})

	t.Run("a rate of -100 does not divide by zero", func(t *testing.T) {
		p := PriceLine(dec("1"), dec("10.00"), dec("-100"))
		assert.True(t, dec("10.00").Equal(p.NetUnitPrice))
	})
}

func TestLineItemEdits(t *testing.T) {
	docID := uuid.New()

	t.Run("edits re-derive pricing", func(t *testing.T) {
		item := NewLineItem(docID, nil, "Consulting", dec("1"), dec("10.00"), dec("19"))
		item.SetQuantity(dec("4"))
		assert.True(t, dec("40.00").Equal(item.LineTotal))

		item.SetEnteredUnitPrice(dec("5.00"))
		assert.True(t, dec("4.20").Equal(item.NetUnitPrice))
		assert.True(t, dec("20.00").Equal(item.LineTotal))
	})

	t.Run("tax rate change never mutates the entered price", func(t *testing.T) {
		item := NewLineItem(docID, nil, "Consulting", dec("1"), dec("10.00"), dec("19"))
		item.SetTaxRate(dec("7"))
		assert.True(t, dec("10.00").Equal(item.EnteredUnitPrice))
		assert.True(t, dec("9.35").Equal(item.NetUnitPrice))
		assert.True(t, dec("0.65").Equal(item.TaxAmountPerUnit))
	})

	t.Run("applying a product resets quantity to one", func(t *testing.T) {
		item := NewLineItem(docID, nil, "", dec("5"), decimal.Zero, dec("19"))
		productID := uuid.New()
		item.ApplyProduct(productID, "Widget", dec("2.50"))
		require.NotNil(t, item.ProductID)
		assert.Equal(t, productID, *item.ProductID)
		assert.Equal(t, "Widget", item.Description)
		assert.True(t, dec("1").Equal(item.Quantity))
		assert.True(t, dec("2.50").Equal(item.LineTotal))
	})

	t.Run("bill variant keeps the quantity", func(t *testing.T) {
		item := NewLineItem(docID, nil, "", dec("5"), decimal.Zero, decimal.Zero)
		item.ApplyProductKeepQuantity(uuid.New(), "Widget", dec("2.50"))
		assert.True(t, dec("5").Equal(item.Quantity))
		assert.True(t, dec("12.50").Equal(item.LineTotal))
	})

	t.Run("HasProductRef is false for free-text lines", func(t *testing.T) {
		item := NewLineItem(docID, nil, "Misc", dec("1"), dec("1.00"), decimal.Zero)
		assert.False(t, item.HasProductRef())

		productID := uuid.New()
		item.ApplyProduct(productID, "Widget", dec("1.00"))
		assert.True(t, item.HasProductRef())
	})
}
