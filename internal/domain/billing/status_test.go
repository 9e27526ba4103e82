package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeStatus(t *testing.T) {
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("cancelled overrides everything", func(t *testing.T) {
		got := ComputeStatus(dec("100"), dec("100"), &due, true, due)
		assert.Equal(t, StatusCancelled, got)
	})

	t.Run("paid in full", func(t *testing.T) {
		got := ComputeStatus(dec("100"), dec("100"), &due, false, due)
		assert.Equal(t, StatusPaid, got)
	})

	t.Run("overpaid still reads as paid", func(t *testing.T) {
		got := ComputeStatus(dec("100"), dec("120"), nil, false, due)
		assert.Equal(t, StatusPaid, got)
	})

	t.Run("partially paid beats overdue", func(t *testing.T) {
		asOf := due.AddDate(0, 0, 30)
		got := ComputeStatus(dec("100"), dec("40"), &due, false, asOf)
		assert.Equal(t, StatusPartiallyPaid, got)
	})

	t.Run("unpaid on the due date is still opened", func(t *testing.T) {
		got := ComputeStatus(dec("100"), decimal.Zero, &due, false, due.Add(23*time.Hour))
		assert.Equal(t, StatusOpened, got)
	})

	t.Run("unpaid the day after the due date is overdue", func(t *testing.T) {
		got := ComputeStatus(dec("100"), decimal.Zero, &due, false, due.AddDate(0, 0, 1))
		assert.Equal(t, StatusOverdue, got)
	})

	t.Run("no due date never goes overdue", func(t *testing.T) {
		got := ComputeStatus(dec("100"), decimal.Zero, nil, false, due.AddDate(1, 0, 0))
		assert.Equal(t, StatusOpened, got)
	})

	t.Run("zero total unpaid document is opened", func(t *testing.T) {
		got := ComputeStatus(decimal.Zero, decimal.Zero, nil, false, due)
		assert.Equal(t, StatusOpened, got)
	})
}

func TestDocumentStatusPredicates(t *testing.T) {
	t.Run("payable statuses", func(t *testing.T) {
		assert.True(t, StatusOpened.IsPayable())
		assert.True(t, StatusOverdue.IsPayable())
		assert.True(t, StatusPartiallyPaid.IsPayable())
		assert.False(t, StatusPaid.IsPayable())
		assert.False(t, StatusProforma.IsPayable())
		assert.False(t, StatusCancelled.IsPayable())
		assert.False(t, StatusDraft.IsPayable())
	})

	t.Run("cancelled is the only terminal status", func(t *testing.T) {
		assert.True(t, StatusCancelled.IsTerminal())
		assert.False(t, StatusPaid.IsTerminal())
	})

	t.Run("validity", func(t *testing.T) {
		assert.True(t, StatusPartiallyPaid.IsValid())
		assert.False(t, DocumentStatus("VOID").IsValid())
	})
}
