package payments

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

func testOpenDocuments() []OpenDocument {
	return []OpenDocument{
		{ID: uuid.New(), Number: "INV-2024-0001", Total: dec("100"), BalanceDue: dec("100")},
		{ID: uuid.New(), Number: "INV-2024-0002", Total: dec("300"), BalanceDue: dec("250")},
		{ID: uuid.New(), Number: "INV-2024-0003", Total: dec("50"), BalanceDue: dec("50")},
	}
}

func TestAllocatorSelection(t *testing.T) {
	t.Run("select all sums the balances", func(t *testing.T) {
		a := NewAllocator(testOpenDocuments())
		a.ToggleSelectAll()
		assert.True(t, a.AllSelected())
		assert.True(t, dec("400").Equal(a.PaymentTotal()), "total = %s", a.PaymentTotal())
	})

	t.Run("deselecting a document drops its amount", func(t *testing.T) {
		docs := testOpenDocuments()
		a := NewAllocator(docs)
		a.ToggleSelectAll()
		require.NoError(t, a.Toggle(docs[1].ID))
		assert.False(t, a.IsSelected(docs[1].ID))
		assert.True(t, dec("150").Equal(a.PaymentTotal()))
	})

	t.Run("select all twice clears everything", func(t *testing.T) {
		a := NewAllocator(testOpenDocuments())
		a.ToggleSelectAll()
		a.ToggleSelectAll()
		assert.False(t, a.AllSelected())
		assert.True(t, a.PaymentTotal().IsZero())
	})

	t.Run("selecting defaults to the full balance", func(t *testing.T) {
		docs := testOpenDocuments()
		a := NewAllocator(docs)
		require.NoError(t, a.Toggle(docs[1].ID))
		assert.True(t, dec("250").Equal(a.Amount(docs[1].ID)))
	})

	t.Run("unknown documents are rejected", func(t *testing.T) {
		a := NewAllocator(testOpenDocuments())
		assert.Error(t, a.Toggle(uuid.New()))
	})

	t.Run("select all with no documents selects nothing", func(t *testing.T) {
		a := NewAllocator(nil)
		a.ToggleSelectAll()
		assert.False(t, a.AllSelected())
		assert.True(t, a.PaymentTotal().IsZero())
	})
}

func TestAllocatorSetAmount(t *testing.T) {
	t.Run("lowering an amount makes a partial payment", func(t *testing.T) {
		docs := testOpenDocuments()
		a := NewAllocator(docs)
		require.NoError(t, a.Toggle(docs[0].ID))
		require.NoError(t, a.SetAmount(docs[0].ID, dec("40")))
		assert.True(t, dec("40").Equal(a.PaymentTotal()))
	})

	t.Run("amounts above the balance are rejected, not clamped", func(t *testing.T) {
		docs := testOpenDocuments()
		a := NewAllocator(docs)
		require.NoError(t, a.Toggle(docs[0].ID))
		err := a.SetAmount(docs[0].ID, dec("100.01"))
		assert.EqualError(t, err, "Allocated amount exceeds the document balance")
		assert.True(t, dec("100").Equal(a.Amount(docs[0].ID)))
	})

	t.Run("a zero amount deselects the document", func(t *testing.T) {
		docs := testOpenDocuments()
		a := NewAllocator(docs)
		require.NoError(t, a.Toggle(docs[0].ID))
		require.NoError(t, a.SetAmount(docs[0].ID, decimal.Zero))
		assert.False(t, a.IsSelected(docs[0].ID))
	})

	t.Run("unselected documents cannot take an amount", func(t *testing.T) {
		docs := testOpenDocuments()
		a := NewAllocator(docs)
		assert.Error(t, a.SetAmount(docs[0].ID, dec("10")))
	})
}

func TestAllocatorBuildSubmission(t *testing.T) {
	t.Run("builds allocations in document order", func(t *testing.T) {
		docs := testOpenDocuments()
		a := NewAllocator(docs)
		a.SetMethod(MethodBankTransfer)
		require.NoError(t, a.Toggle(docs[2].ID))
		require.NoError(t, a.Toggle(docs[0].ID))
		require.NoError(t, a.SetAmount(docs[0].ID, dec("60")))

		sub, err := a.BuildSubmission()
		require.NoError(t, err)
		assert.Equal(t, MethodBankTransfer, sub.Method)
		require.Len(t, sub.Allocations, 2)
		assert.Equal(t, docs[0].ID, sub.Allocations[0].DocumentID)
		assert.True(t, dec("60").Equal(sub.Allocations[0].Amount))
		assert.Equal(t, docs[2].ID, sub.Allocations[1].DocumentID)
		assert.True(t, dec("50").Equal(sub.Allocations[1].Amount))
		assert.True(t, dec("110").Equal(sub.Total))
	})

	t.Run("requires a payment method", func(t *testing.T) {
		docs := testOpenDocuments()
		a := NewAllocator(docs)
		require.NoError(t, a.Toggle(docs[0].ID))
		_, err := a.BuildSubmission()
		assert.EqualError(t, err, "Payment method is required")
	})

	t.Run("requires a selection", func(t *testing.T) {
		a := NewAllocator(testOpenDocuments())
		a.SetMethod(MethodCash)
		_, err := a.BuildSubmission()
		assert.EqualError(t, err, "Select documents to pay")
	})

	t.Run("a failed submission leaves the state untouched", func(t *testing.T) {
		docs := testOpenDocuments()
		a := NewAllocator(docs)
		require.NoError(t, a.Toggle(docs[0].ID))
		_, err := a.BuildSubmission()
		require.Error(t, err)
		assert.True(t, a.IsSelected(docs[0].ID))
		assert.True(t, dec("100").Equal(a.PaymentTotal()))
	})
}
