package domain

// Sell outcome statuses.
const (
	SellStatusSuccess           = "success"
	SellStatusInvalidQuantity   = "invalid_quantity"
	SellStatusItemNotFound      = "item_not_found"
	SellStatusInsufficientStock = "insufficient_stock"
	SellStatusConflict          = "conflict"
)

// SellLine is one requested line in a checkout: which stock item to sell and
// how many units.
type SellLine struct {
	StockItemID string `json:"stock_item_id"`
	Quantity    int    `json:"quantity"`
}

// SellOutcome reports the result of processing a single sell line. LineItem
// is set only on success. Available carries the on-hand quantity at the time
// of the attempt when the requested quantity exceeded it.
type SellOutcome struct {
	StockItemID string               `json:"stock_item_id"`
	Status      string               `json:"status"`
	LineItem    *TransactionLineItem `json:"line_item,omitempty"`
	Available   int                  `json:"available,omitempty"`
}

// Sold reports whether the outcome was a committed sale.
func (o *SellOutcome) Sold() bool {
	return o.Status == SellStatusSuccess
}
