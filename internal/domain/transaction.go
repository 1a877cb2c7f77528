package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one checkout receipt for a merchant. LineItemCount
// is nil until the first line item commits, then counts committed lines.
// Total is the sum of the committed line subtotals.
type Transaction struct {
	ID            string                `json:"id"`
	MerchantID    string                `json:"merchant_id"`
	LineItemCount *int                  `json:"line_item_count"`
	Total         decimal.Decimal       `json:"total"`
	Items         []TransactionLineItem `json:"items,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ApplyLine folds a committed line item into the receipt: the line count is
// initialized to 1 on the first line and incremented afterwards, and the
// line subtotal is added to the running total.
func (t *Transaction) ApplyLine(item TransactionLineItem) {
	if t.LineItemCount == nil {
		count := 1
		t.LineItemCount = &count
	} else {
		*t.LineItemCount++
	}
	t.Total = t.Total.Add(item.Subtotal)
	t.Items = append(t.Items, item)
}
