package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/pkg/database"
	apperrors "github.com/c14220292/kasir/pkg/errors"
)

// StockItemRepository implements repository.StockRepository using PostgreSQL.
type StockItemRepository struct {
	pool database.DBTX
}

// NewStockItemRepository creates a new PostgreSQL-backed stock item repository.
func NewStockItemRepository(pool database.DBTX) *StockItemRepository {
	return &StockItemRepository{pool: pool}
}

// Create inserts a new stock item.
func (r *StockItemRepository) Create(ctx context.Context, item *domain.StockItem) error {
	query := `
		INSERT INTO stock_items (
			id, merchant_id, name, quantity, unit_size, purchase_unit_price,
			profit_margin_percent, purchase_total, sale_unit_price, sale_total,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.MerchantID,
		item.Name,
		item.Quantity,
		item.UnitSize,
		item.PurchaseUnitPrice,
		item.ProfitMarginPercent,
		item.PurchaseTotal,
		item.SaleUnitPrice,
		item.SaleTotal,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("stock item", "name", item.Name)
		}
		return fmt.Errorf("create stock item: %w", err)
	}

	return nil
}

// GetByID retrieves a stock item owned by the merchant.
func (r *StockItemRepository) GetByID(ctx context.Context, merchantID, id string) (*domain.StockItem, error) {
	query := `
		SELECT id, merchant_id, name, quantity, unit_size, purchase_unit_price,
			   profit_margin_percent, purchase_total, sale_unit_price, sale_total,
			   created_at, updated_at
		FROM stock_items
		WHERE merchant_id = $1 AND id = $2`

	return r.scanOne(r.pool.QueryRow(ctx, query, merchantID, id), "get stock item by id")
}

// GetByName retrieves a stock item by exact name within the merchant scope.
func (r *StockItemRepository) GetByName(ctx context.Context, merchantID, name string) (*domain.StockItem, error) {
	query := `
		SELECT id, merchant_id, name, quantity, unit_size, purchase_unit_price,
			   profit_margin_percent, purchase_total, sale_unit_price, sale_total,
			   created_at, updated_at
		FROM stock_items
		WHERE merchant_id = $1 AND name = $2`

	return r.scanOne(r.pool.QueryRow(ctx, query, merchantID, name), "get stock item by name")
}

// List returns a page of the merchant's stock items ordered by name, along
// with the total count.
func (r *StockItemRepository) List(ctx context.Context, merchantID string, page, perPage int) ([]domain.StockItem, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	offset := (page - 1) * perPage

	query := `
		SELECT id, merchant_id, name, quantity, unit_size, purchase_unit_price,
			   profit_margin_percent, purchase_total, sale_unit_price, sale_total,
			   created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM stock_items
		WHERE merchant_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, merchantID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()

	var totalCount int
	items := make([]domain.StockItem, 0)

	for rows.Next() {
		var item domain.StockItem
		if err := rows.Scan(
			&item.ID,
			&item.MerchantID,
			&item.Name,
			&item.Quantity,
			&item.UnitSize,
			&item.PurchaseUnitPrice,
			&item.ProfitMarginPercent,
			&item.PurchaseTotal,
			&item.SaleUnitPrice,
			&item.SaleTotal,
			&item.CreatedAt,
			&item.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate stock item rows: %w", err)
	}

	return items, totalCount, nil
}

// Update persists all mutable fields of a stock item, derived pricing included.
func (r *StockItemRepository) Update(ctx context.Context, item *domain.StockItem) error {
	query := `
		UPDATE stock_items
		SET name = $1, quantity = $2, unit_size = $3, purchase_unit_price = $4,
			profit_margin_percent = $5, purchase_total = $6, sale_unit_price = $7,
			sale_total = $8, updated_at = $9
		WHERE merchant_id = $10 AND id = $11`

	ct, err := r.pool.Exec(ctx, query,
		item.Name,
		item.Quantity,
		item.UnitSize,
		item.PurchaseUnitPrice,
		item.ProfitMarginPercent,
		item.PurchaseTotal,
		item.SaleUnitPrice,
		item.SaleTotal,
		item.UpdatedAt,
		item.MerchantID,
		item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("stock item", "name", item.Name)
		}
		return fmt.Errorf("update stock item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("stock item", item.ID)
	}

	return nil
}

// Delete removes a stock item owned by the merchant.
func (r *StockItemRepository) Delete(ctx context.Context, merchantID, id string) error {
	query := `
		DELETE FROM stock_items
		WHERE merchant_id = $1 AND id = $2`

	ct, err := r.pool.Exec(ctx, query, merchantID, id)
	if err != nil {
		return fmt.Errorf("delete stock item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("stock item", id)
	}

	return nil
}

func (r *StockItemRepository) scanOne(row pgx.Row, op string) (*domain.StockItem, error) {
	var item domain.StockItem
	err := row.Scan(
		&item.ID,
		&item.MerchantID,
		&item.Name,
		&item.Quantity,
		&item.UnitSize,
		&item.PurchaseUnitPrice,
		&item.ProfitMarginPercent,
		&item.PurchaseTotal,
		&item.SaleUnitPrice,
		&item.SaleTotal,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &item, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
