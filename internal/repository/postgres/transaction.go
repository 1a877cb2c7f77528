package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/internal/repository"
	"github.com/c14220292/kasir/pkg/database"
	apperrors "github.com/c14220292/kasir/pkg/errors"
)

// TransactionRepository implements repository.TransactionRepository using PostgreSQL.
type TransactionRepository struct {
	pool database.DBTX
}

// NewTransactionRepository creates a new PostgreSQL-backed transaction repository.
func NewTransactionRepository(pool database.DBTX) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new transaction header.
func (r *TransactionRepository) Create(ctx context.Context, trx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, merchant_id, line_item_count, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		trx.ID,
		trx.MerchantID,
		trx.LineItemCount,
		trx.Total,
		trx.CreatedAt,
		trx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID, eagerly loading its line items.
func (r *TransactionRepository) GetByID(ctx context.Context, merchantID, id string) (*domain.Transaction, error) {
	// Fetch the header and its line items in a single query using LEFT JOIN + JSONB_AGG.
	query := `
		SELECT
			t.id, t.merchant_id, t.line_item_count, t.total, t.created_at, t.updated_at,
			COALESCE(
				JSONB_AGG(
					JSONB_BUILD_OBJECT(
						'id', li.id,
						'transaction_id', li.transaction_id,
						'product_name', li.product_name,
						'quantity', li.quantity,
						'subtotal', li.subtotal,
						'created_at', li.created_at
					) ORDER BY li.created_at
				) FILTER (WHERE li.id IS NOT NULL),
				'[]'::jsonb
			) AS items
		FROM transactions t
		LEFT JOIN transaction_line_items li ON t.id = li.transaction_id
		WHERE t.merchant_id = $1 AND t.id = $2
		GROUP BY t.id, t.merchant_id, t.line_item_count, t.total, t.created_at, t.updated_at`

	var (
		trx       domain.Transaction
		itemsJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, merchantID, id).Scan(
		&trx.ID,
		&trx.MerchantID,
		&trx.LineItemCount,
		&trx.Total,
		&trx.CreatedAt,
		&trx.UpdatedAt,
		&itemsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	if len(itemsJSON) > 0 && string(itemsJSON) != "null" && string(itemsJSON) != "[]" {
		if err := json.Unmarshal(itemsJSON, &trx.Items); err != nil {
			return nil, fmt.Errorf("unmarshal transaction line items: %w", err)
		}
	} else {
		trx.Items = []domain.TransactionLineItem{}
	}

	return &trx, nil
}

// List returns transactions matching the filter along with the total count.
func (r *TransactionRepository) List(ctx context.Context, merchantID string, filter repository.TransactionFilter) ([]domain.Transaction, int, error) {
	conditions := []string{"merchant_id = $1"}
	args := []any{merchantID}
	argIndex := 2

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filter.To)
		argIndex++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT id, merchant_id, line_item_count, total, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM transactions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var totalCount int
	transactions := make([]domain.Transaction, 0)

	for rows.Next() {
		var trx domain.Transaction
		if err := rows.Scan(
			&trx.ID,
			&trx.MerchantID,
			&trx.LineItemCount,
			&trx.Total,
			&trx.CreatedAt,
			&trx.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, trx)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}

	// Batch-load line items for all transactions in a single query to avoid N+1.
	if len(transactions) > 0 {
		trxIDs := make([]string, len(transactions))
		for i := range transactions {
			trxIDs[i] = transactions[i].ID
		}

		itemsQuery := `
			SELECT id, transaction_id, product_name, quantity, subtotal, created_at
			FROM transaction_line_items
			WHERE transaction_id = ANY($1)
			ORDER BY created_at`

		itemRows, err := r.pool.Query(ctx, itemsQuery, trxIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load transaction line items: %w", err)
		}
		defer itemRows.Close()

		itemsByTrxID := make(map[string][]domain.TransactionLineItem, len(transactions))
		for itemRows.Next() {
			var item domain.TransactionLineItem
			if err := itemRows.Scan(
				&item.ID,
				&item.TransactionID,
				&item.ProductName,
				&item.Quantity,
				&item.Subtotal,
				&item.CreatedAt,
			); err != nil {
				return nil, 0, fmt.Errorf("scan transaction line item: %w", err)
			}
			itemsByTrxID[item.TransactionID] = append(itemsByTrxID[item.TransactionID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch line item rows: %w", err)
		}

		for i := range transactions {
			if items, ok := itemsByTrxID[transactions[i].ID]; ok {
				transactions[i].Items = items
			} else {
				transactions[i].Items = []domain.TransactionLineItem{}
			}
		}
	}

	return transactions, totalCount, nil
}

// Update persists the transaction aggregates (line item count and total).
func (r *TransactionRepository) Update(ctx context.Context, trx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET line_item_count = $1, total = $2, updated_at = $3
		WHERE merchant_id = $4 AND id = $5`

	ct, err := r.pool.Exec(ctx, query,
		trx.LineItemCount,
		trx.Total,
		trx.UpdatedAt,
		trx.MerchantID,
		trx.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("transaction", trx.ID)
	}

	return nil
}

// Delete removes a transaction; line items cascade via the FK constraint.
func (r *TransactionRepository) Delete(ctx context.Context, merchantID, id string) error {
	query := `
		DELETE FROM transactions
		WHERE merchant_id = $1 AND id = $2`

	ct, err := r.pool.Exec(ctx, query, merchantID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("transaction", id)
	}

	return nil
}

// CreateLineItem inserts a line item for a transaction.
func (r *TransactionRepository) CreateLineItem(ctx context.Context, item *domain.TransactionLineItem) error {
	query := `
		INSERT INTO transaction_line_items (id, transaction_id, product_name, quantity, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.TransactionID,
		item.ProductName,
		item.Quantity,
		item.Subtotal,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transaction line item: %w", err)
	}

	return nil
}

// SalesSummary aggregates the merchant's transactions between from and to.
func (r *TransactionRepository) SalesSummary(ctx context.Context, merchantID string, from, to time.Time) (*domain.SalesSummary, error) {
	query := `
		SELECT
			COUNT(DISTINCT t.id) AS transaction_count,
			COUNT(li.id) AS line_item_count,
			COALESCE(SUM(li.quantity), 0) AS units_sold,
			COALESCE(SUM(li.subtotal), 0) AS revenue
		FROM transactions t
		LEFT JOIN transaction_line_items li ON t.id = li.transaction_id
		WHERE t.merchant_id = $1 AND t.created_at >= $2 AND t.created_at <= $3`

	summary := domain.SalesSummary{From: from, To: to}
	err := r.pool.QueryRow(ctx, query, merchantID, from, to).Scan(
		&summary.TransactionCount,
		&summary.LineItemCount,
		&summary.UnitsSold,
		&summary.Revenue,
	)
	if err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}

	return &summary, nil
}

// DailyRevenue returns per-day revenue for the merchant between from and to.
func (r *TransactionRepository) DailyRevenue(ctx context.Context, merchantID string, from, to time.Time) ([]domain.DailyRevenue, error) {
	query := `
		SELECT DATE_TRUNC('day', created_at)::date AS day,
			   COUNT(*) AS transaction_count,
			   COALESCE(SUM(total), 0) AS revenue
		FROM transactions
		WHERE merchant_id = $1 AND created_at >= $2 AND created_at <= $3
		GROUP BY day
		ORDER BY day ASC`

	rows, err := r.pool.Query(ctx, query, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	defer rows.Close()

	days := make([]domain.DailyRevenue, 0)
	for rows.Next() {
		var day domain.DailyRevenue
		if err := rows.Scan(&day.Date, &day.TransactionCount, &day.Revenue); err != nil {
			return nil, fmt.Errorf("scan daily revenue row: %w", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily revenue rows: %w", err)
	}

	return days, nil
}
