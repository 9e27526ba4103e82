package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInvoice(t *testing.T) *Invoice {
	inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-2024-0001",
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), TermsNet30)
	require.NoError(t, err)
	productID := uuid.New()
	_, err = inv.AddItem(&productID, "Widget", dec("2"), dec("11.90"), dec("19"))
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	issue := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("derives the due date from terms", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-2024-0001", issue, TermsNet30)
		require.NoError(t, err)
		require.NotNil(t, inv.DueDate)
		assert.True(t, issue.AddDate(0, 0, 30).Equal(*inv.DueDate))
		assert.Equal(t, StatusOpened, inv.Status(issue))
	})

	t.Run("unknown terms leave the due date blank", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-2024-0001", issue, "")
		require.NoError(t, err)
		assert.Nil(t, inv.DueDate)
	})

	t.Run("fails without a customer", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), uuid.Nil, "INV-2024-0001", issue, TermsNet30)
		assert.Error(t, err)
	})

	t.Run("fails without a number", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), uuid.New(), "", issue, TermsNet30)
		assert.Error(t, err)
	})
}

func TestInvoiceDueDateDerivation(t *testing.T) {
	inv := createTestInvoice(t)

	t.Run("changing terms recomputes the due date", func(t *testing.T) {
		inv.SetTerms(TermsNet15)
		require.NotNil(t, inv.DueDate)
		assert.True(t, inv.IssueDate.AddDate(0, 0, 15).Equal(*inv.DueDate))
	})

	t.Run("changing the issue date recomputes the due date", func(t *testing.T) {
		newIssue := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		inv.SetIssueDate(newIssue)
		require.NotNil(t, inv.DueDate)
		assert.True(t, newIssue.AddDate(0, 0, 15).Equal(*inv.DueDate))
	})
}

func TestInvoiceApplyPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.ApplyPayment(dec("10.00")))
		assert.Equal(t, StatusPartiallyPaid, inv.Status(inv.IssueDate))
		// total 23.80 = subtotal 20.00 + tax 3.80
		assert.True(t, dec("13.80").Equal(inv.BalanceDue()))
	})

	t.Run("full payment settles the invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.ApplyPayment(inv.Totals.Total))
		assert.Equal(t, StatusPaid, inv.Status(inv.IssueDate))
		assert.True(t, inv.BalanceDue().IsZero())
	})

	t.Run("rejects amounts above the balance", func(t *testing.T) {
		inv := createTestInvoice(t)
		err := inv.ApplyPayment(inv.Totals.Total.Add(dec("0.01")))
		assert.EqualError(t, err, "Payment amount exceeds the invoice balance")
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		inv := createTestInvoice(t)
		assert.Error(t, inv.ApplyPayment(decimal.Zero))
		assert.Error(t, inv.ApplyPayment(dec("-5")))
	})

	t.Run("rejects payment on cancelled invoices", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel("duplicate"))
		assert.Error(t, inv.ApplyPayment(dec("1.00")))
	})

	t.Run("rejects payment on pro forma invoices", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.SetProforma(true))
		assert.Error(t, inv.ApplyPayment(dec("1.00")))
	})
}

func TestInvoiceCancel(t *testing.T) {
	t.Run("records the reason", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel("sent in error"))
		assert.True(t, inv.Cancelled)
		assert.Equal(t, "sent in error", inv.CancelReason)
		assert.Equal(t, StatusCancelled, inv.Status(inv.IssueDate))
	})

	t.Run("cannot cancel twice", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel("x"))
		assert.Error(t, inv.Cancel("y"))
	})

	t.Run("cannot cancel after payments", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.ApplyPayment(dec("1.00")))
		assert.Error(t, inv.Cancel("too late"))
	})
}

func TestInvoiceEditing(t *testing.T) {
	t.Run("payments freeze line edits", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.ApplyPayment(dec("1.00")))
		_, err := inv.AddItem(nil, "late line", dec("1"), dec("1.00"), decimal.Zero)
		assert.Error(t, err)
		assert.Error(t, inv.RemoveItem(inv.Items[0].ID))
	})

	t.Run("editing a line recomputes totals", func(t *testing.T) {
		inv := createTestInvoice(t)
		itemID := inv.Items[0].ID
		require.NoError(t, inv.UpdateItem(itemID, func(i *LineItem) {
			i.SetQuantity(dec("4"))
		}))
		// 4 x net 10.00 plus 4 x tax 1.90
		assert.True(t, dec("40.00").Equal(inv.Totals.Subtotal))
		assert.True(t, dec("47.60").Equal(inv.Totals.Total))
	})

	t.Run("removing the last product line blocks sending downstream", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.RemoveItem(inv.Items[0].ID))
		assert.Error(t, ValidateLineItems(inv.Items))
		assert.True(t, inv.Totals.Total.IsZero())
	})
}

func TestInvoiceProforma(t *testing.T) {
	t.Run("pro forma status hides settlement state", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.SetProforma(true))
		assert.Equal(t, StatusProforma, inv.Status(inv.IssueDate.AddDate(0, 2, 0)))
	})

	t.Run("paid invoices cannot become pro forma", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.ApplyPayment(dec("1.00")))
		assert.Error(t, inv.SetProforma(true))
	})
}
