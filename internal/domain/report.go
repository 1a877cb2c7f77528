package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummary aggregates a merchant's committed sales over a date range.
type SalesSummary struct {
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	TransactionCount int             `json:"transaction_count"`
	LineItemCount    int             `json:"line_item_count"`
	UnitsSold        int             `json:"units_sold"`
	Revenue          decimal.Decimal `json:"revenue"`
}

// DailyRevenue is one calendar day's worth of committed sales.
type DailyRevenue struct {
	Date             time.Time       `json:"date"`
	TransactionCount int             `json:"transaction_count"`
	Revenue          decimal.Decimal `json:"revenue"`
}
