package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionLineItem records a single sale inside a transaction. ProductName
// and Subtotal are snapshots taken at sale time; they never change afterwards,
// even if the stock item is renamed, repriced, or deleted.
type TransactionLineItem struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	CreatedAt     time.Time       `json:"created_at"`
}
