package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogProduct is an entry in the shared product reference list used to
// pre-fill stock registration. The catalog is read-only at runtime; the
// seeder populates it.
type CatalogProduct struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}
