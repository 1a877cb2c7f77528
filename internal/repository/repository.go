package repository

import (
	"context"
	"time"

	"github.com/c14220292/kasir/internal/domain"
)

// TransactionFilter defines filter criteria for listing transactions.
type TransactionFilter struct {
	From    *time.Time
	To      *time.Time
	Page    int
	PerPage int
}

// StockRepository defines merchant-scoped persistence for stock items.
type StockRepository interface {
	// Create inserts a new stock item.
	Create(ctx context.Context, item *domain.StockItem) error

	// GetByID retrieves a stock item owned by the merchant.
	GetByID(ctx context.Context, merchantID, id string) (*domain.StockItem, error)

	// GetByName retrieves a stock item by exact name within the merchant scope.
	GetByName(ctx context.Context, merchantID, name string) (*domain.StockItem, error)

	// List returns a page of the merchant's stock items with the total count.
	List(ctx context.Context, merchantID string, page, perPage int) ([]domain.StockItem, int, error)

	// Update persists all mutable fields of a stock item, derived pricing included.
	Update(ctx context.Context, item *domain.StockItem) error

	// Delete removes a stock item owned by the merchant.
	Delete(ctx context.Context, merchantID, id string) error
}

// TransactionRepository defines merchant-scoped persistence for transactions
// and their line items.
type TransactionRepository interface {
	// Create inserts a new transaction header.
	Create(ctx context.Context, trx *domain.Transaction) error

	// GetByID retrieves a transaction with its line items.
	GetByID(ctx context.Context, merchantID, id string) (*domain.Transaction, error)

	// List returns transactions matching the filter along with the total count.
	List(ctx context.Context, merchantID string, filter TransactionFilter) ([]domain.Transaction, int, error)

	// Update persists the transaction aggregates (line item count and total).
	Update(ctx context.Context, trx *domain.Transaction) error

	// Delete removes a transaction; its line items cascade.
	Delete(ctx context.Context, merchantID, id string) error

	// CreateLineItem inserts a line item for a transaction.
	CreateLineItem(ctx context.Context, item *domain.TransactionLineItem) error

	// SalesSummary aggregates the merchant's transactions between from and to.
	SalesSummary(ctx context.Context, merchantID string, from, to time.Time) (*domain.SalesSummary, error)

	// DailyRevenue returns per-day revenue for the merchant between from and to.
	DailyRevenue(ctx context.Context, merchantID string, from, to time.Time) ([]domain.DailyRevenue, error)
}

// CatalogRepository provides read access to the shared product catalog.
type CatalogRepository interface {
	// List returns all catalog products ordered by name.
	List(ctx context.Context) ([]domain.CatalogProduct, error)

	// GetByName retrieves a catalog product by exact name.
	GetByName(ctx context.Context, name string) (*domain.CatalogProduct, error)
}

// ReportCache caches computed report payloads between checkouts. A cache miss
// is reported as ErrNotFound; Invalidate drops every cached report for the
// merchant.
type ReportCache interface {
	// GetSummary returns the cached sales summary for the range, if any.
	GetSummary(ctx context.Context, merchantID string, from, to time.Time) (*domain.SalesSummary, error)

	// SetSummary caches the sales summary for the range.
	SetSummary(ctx context.Context, merchantID string, from, to time.Time, summary *domain.SalesSummary) error

	// GetDailyRevenue returns the cached daily revenue series for the range, if any.
	GetDailyRevenue(ctx context.Context, merchantID string, from, to time.Time) ([]domain.DailyRevenue, error)

	// SetDailyRevenue caches the daily revenue series for the range.
	SetDailyRevenue(ctx context.Context, merchantID string, from, to time.Time, rows []domain.DailyRevenue) error

	// Invalidate drops all cached reports for the merchant.
	Invalidate(ctx context.Context, merchantID string) error
}
