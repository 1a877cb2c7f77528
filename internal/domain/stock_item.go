package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnitSize is the unit size assumed when registration does not specify one.
const DefaultUnitSize = 1

// StockItem represents a product a merchant keeps on hand for sale. The
// derived pricing fields (PurchaseTotal, SaleUnitPrice, SaleTotal) are stored
// alongside the raw inputs and refreshed via Recompute whenever quantity,
// purchase price, or margin changes.
type StockItem struct {
	ID                  string          `json:"id"`
	MerchantID          string          `json:"merchant_id"`
	Name                string          `json:"name"`
	Quantity            int             `json:"quantity"`
	UnitSize            int             `json:"unit_size"`
	PurchaseUnitPrice   decimal.Decimal `json:"purchase_unit_price"`
	ProfitMarginPercent int             `json:"profit_margin_percent"`
	PurchaseTotal       decimal.Decimal `json:"purchase_total"`
	SaleUnitPrice       decimal.Decimal `json:"sale_unit_price"`
	SaleTotal           decimal.Decimal `json:"sale_total"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Recompute refreshes the derived pricing fields from the raw inputs. The
// margin multiplier (100+margin)/100 is built as an exact decimal, so no
// float arithmetic is involved; results are rounded to 2 decimal places.
func (s *StockItem) Recompute() {
	multiplier := decimal.New(int64(100+s.ProfitMarginPercent), -2)
	s.PurchaseTotal = s.PurchaseUnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity))).Round(2)
	s.SaleUnitPrice = s.PurchaseUnitPrice.Mul(multiplier).Round(2)
	s.SaleTotal = s.PurchaseTotal.Mul(multiplier).Round(2)
}

// SaleSubtotal returns the price of qty units at the current sale unit price.
func (s *StockItem) SaleSubtotal(qty int) decimal.Decimal {
	return s.SaleUnitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// Depleted reports whether the item has no units left on hand.
func (s *StockItem) Depleted() bool {
	return s.Quantity <= 0
}
