package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBill(t *testing.T) *Bill {
	bill, err := NewBill(uuid.New(), uuid.New(), "BILL-2024-0001",
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), TermsNet15)
	require.NoError(t, err)
	productID := uuid.New()
	_, err = bill.AddItem(&productID, "Office supplies", dec("3"), dec("9.99"), dec("19"))
	require.NoError(t, err)
	return bill
}

func TestNewBill(t *testing.T) {
	billDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("derives the due date from terms", func(t *testing.T) {
		bill, err := NewBill(uuid.New(), uuid.New(), "BILL-2024-0001", billDate, TermsNet15)
		require.NoError(t, err)
		require.NotNil(t, bill.DueDate)
		assert.True(t, billDate.AddDate(0, 0, 15).Equal(*bill.DueDate))
	})

	t.Run("fails without a vendor", func(t *testing.T) {
		_, err := NewBill(uuid.New(), uuid.Nil, "BILL-2024-0001", billDate, TermsNet15)
		assert.Error(t, err)
	})
}

func TestBillTotal(t *testing.T) {
	t.Run("total is the sum of gross line totals", func(t *testing.T) {
		bill := createTestBill(t)
		// 3 x 9.99, no net/tax decomposition at the document level
		assert.True(t, dec("29.97").Equal(bill.Total))
	})

	t.Run("line edits recompute the total", func(t *testing.T) {
		bill := createTestBill(t)
		require.NoError(t, bill.UpdateItem(bill.Items[0].ID, func(i *LineItem) {
			i.SetQuantity(dec("10"))
		}))
		assert.True(t, dec("99.90").Equal(bill.Total))
	})
}

func TestBillApplyPayment(t *testing.T) {
	t.Run("partial then full settlement", func(t *testing.T) {
		bill := createTestBill(t)
		require.NoError(t, bill.ApplyPayment(dec("10.00")))
		assert.Equal(t, StatusPartiallyPaid, bill.Status(bill.BillDate))
		assert.True(t, dec("19.97").Equal(bill.BalanceDue()))

		require.NoError(t, bill.ApplyPayment(bill.BalanceDue()))
		assert.Equal(t, StatusPaid, bill.Status(bill.BillDate))
	})

	t.Run("rejects amounts above the balance", func(t *testing.T) {
		bill := createTestBill(t)
		err := bill.ApplyPayment(bill.Total.Add(dec("0.01")))
		assert.EqualError(t, err, "Payment amount exceeds the bill balance")
	})

	t.Run("payments freeze line edits", func(t *testing.T) {
		bill := createTestBill(t)
		require.NoError(t, bill.ApplyPayment(dec("1.00")))
		_, err := bill.AddItem(nil, "late line", dec("1"), dec("1.00"), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestBillCancel(t *testing.T) {
	t.Run("unpaid bills can be cancelled", func(t *testing.T) {
		bill := createTestBill(t)
		require.NoError(t, bill.Cancel("wrong vendor"))
		assert.Equal(t, StatusCancelled, bill.Status(bill.BillDate))
	})

	t.Run("paid bills cannot be cancelled", func(t *testing.T) {
		bill := createTestBill(t)
		require.NoError(t, bill.ApplyPayment(dec("1.00")))
		assert.Error(t, bill.Cancel("too late"))
	})
}

func TestBillOverdue(t *testing.T) {
	bill := createTestBill(t)
	require.NotNil(t, bill.DueDate)
	asOf := bill.DueDate.AddDate(0, 0, 1)
	assert.Equal(t, StatusOverdue, bill.Status(asOf))
}
