package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testItems() []LineItem {
	docID := uuid.New()
	return []LineItem{
		*NewLineItem(docID, nil, "A", dec("2"), dec("11.90"), dec("19")),
		*NewLineItem(docID, nil, "B", dec("1"), dec("5.00"), decimal.Zero),
	}
}

func TestComputeTotals(t *testing.T) {
	t.Run("sums net subtotal and tax separately", func(t *testing.T) {
		// 11.90 at 19% -> net 10.00, tax 1.90
		totals := ComputeTotals(testItems(), DiscountTypeNone, decimal.Zero, decimal.Zero)
		assert.True(t, dec("25.00").Equal(totals.Subtotal), "subtotal = %s", totals.Subtotal)
		assert.True(t, dec("3.80").Equal(totals.TaxAmount), "tax = %s", totals.TaxAmount)
		assert.True(t, dec("28.80").Equal(totals.Total), "total = %s", totals.Total)
	})

	t.Run("percentage discount applies to the net subtotal", func(t *testing.T) {
		totals := ComputeTotals(testItems(), DiscountTypePercentage, dec("10"), dec("5.00"))
		assert.True(t, dec("2.50").Equal(totals.DiscountAmount))
		// 25.00 + 5.00 + 3.80 - 2.50
		assert.True(t, dec("31.30").Equal(totals.Total))
	})

	t.Run("fixed discount is taken verbatim", func(t *testing.T) {
		totals := ComputeTotals(testItems(), DiscountTypeFixed, dec("4.99"), decimal.Zero)
		assert.True(t, dec("4.99").Equal(totals.DiscountAmount))
		assert.True(t, dec("23.81").Equal(totals.Total))
	})

	t.Run("document total follows net plus tax, not the line totals", func(t *testing.T) {
		// 1.00 at 29% recomposes to 1.01; the document reports 1.01 while
		// the line itself shows 1.00
		item := NewLineItem(uuid.New(), nil, "A", dec("1"), dec("1.00"), dec("29"))
		totals := ComputeTotals([]LineItem{*item}, DiscountTypeNone, decimal.Zero, decimal.Zero)
		assert.True(t, dec("1.00").Equal(item.LineTotal))
		assert.True(t, dec("1.01").Equal(totals.Total))
	})

	t.Run("is invariant under line order", func(t *testing.T) {
		items := testItems()
		forward := ComputeTotals(items, DiscountTypePercentage, dec("5"), dec("2.00"))
		reversed := ComputeTotals([]LineItem{items[1], items[0]}, DiscountTypePercentage, dec("5"), dec("2.00"))
		assert.True(t, forward.Total.Equal(reversed.Total))
		assert.True(t, forward.Subtotal.Equal(reversed.Subtotal))
		assert.True(t, forward.TaxAmount.Equal(reversed.TaxAmount))
	})

	t.Run("is idempotent", func(t *testing.T) {
		items := testItems()
		first := ComputeTotals(items, DiscountTypeFixed, dec("1.00"), dec("3.00"))
		second := ComputeTotals(items, DiscountTypeFixed, dec("1.00"), dec("3.00"))
		assert.Equal(t, first, second)
	})

	t.Run("empty document totals to zero", func(t *testing.T) {
		totals := ComputeTotals(nil, DiscountTypeNone, decimal.Zero, decimal.Zero)
		assert.True(t, totals.Total.IsZero())
		assert.True(t, totals.Subtotal.IsZero())
	})
}

func TestComputeBillTotal(t *testing.T) {
	t.Run("sums gross line totals", func(t *testing.T) {
		total := ComputeBillTotal(testItems())
		// 2 x 11.90 + 1 x 5.00
		assert.True(t, dec("28.80").Equal(total))
	})

	t.Run("empty bill totals to zero", func(t *testing.T) {
		assert.True(t, ComputeBillTotal(nil).IsZero())
	})
}

func TestValidateLineItems(t *testing.T) {
	docID := uuid.New()

	t.Run("rejects documents with only free-text lines", func(t *testing.T) {
		items := []LineItem{*NewLineItem(docID, nil, "Misc", dec("1"), dec("1.00"), decimal.Zero)}
		err := ValidateLineItems(items)
		assert.EqualError(t, err, "Add at least one line item with a selected product")
	})

	t.Run("passes when any line has a product", func(t *testing.T) {
		productID := uuid.New()
		items := []LineItem{
			*NewLineItem(docID, nil, "Misc", dec("1"), dec("1.00"), decimal.Zero),
			*NewLineItem(docID, &productID, "Widget", dec("1"), dec("1.00"), decimal.Zero),
		}
		assert.NoError(t, ValidateLineItems(items))
	})

	t.Run("rejects empty documents", func(t *testing.T) {
		assert.Error(t, ValidateLineItems(nil))
	})
}
