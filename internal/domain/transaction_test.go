package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Transaction.ApplyLine Tests
// ============================================================================

func TestApplyLine_FirstLineInitializesCount(t *testing.T) {
	trx := &Transaction{Total: decimal.Zero}
	trx.ApplyLine(TransactionLineItem{
		ProductName: "Indomie Goreng",
		Quantity:    10,
		Subtotal:    decimal.RequireFromString("36000.00"),
	})

	if assert.NotNil(t, trx.LineItemCount) {
		assert.Equal(t, 1, *trx.LineItemCount)
	}
	assert.Equal(t, "36000.00", trx.Total.StringFixed(2))
	assert.Len(t, trx.Items, 1)
}

func TestApplyLine_SecondLineIncrementsCount(t *testing.T) {
	trx := &Transaction{Total: decimal.Zero}
	trx.ApplyLine(TransactionLineItem{Subtotal: decimal.NewFromInt(36000)})
	trx.ApplyLine(TransactionLineItem{Subtotal: decimal.NewFromInt(3125)})

	if assert.NotNil(t, trx.LineItemCount) {
		assert.Equal(t, 2, *trx.LineItemCount)
	}
	assert.Equal(t, "39125.00", trx.Total.StringFixed(2))
	assert.Len(t, trx.Items, 2)
}

func TestTransaction_CountNilBeforeFirstLine(t *testing.T) {
	trx := &Transaction{}
	assert.Nil(t, trx.LineItemCount)
}

// ============================================================================
// SellOutcome Tests
// ============================================================================

func TestSellOutcome_Sold(t *testing.T) {
	o := &SellOutcome{Status: SellStatusSuccess}
	assert.True(t, o.Sold())
}

func TestSellOutcome_NotSold(t *testing.T) {
	for _, status := range []string{
		SellStatusInvalidQuantity, SellStatusItemNotFound,
		SellStatusInsufficientStock, SellStatusConflict,
	} {
		o := &SellOutcome{Status: status}
		assert.False(t, o.Sold(), "expected %q to not be sold", status)
	}
}
