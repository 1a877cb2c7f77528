package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/internal/event"
	"github.com/c14220292/kasir/internal/repository"
	"github.com/c14220292/kasir/pkg/database"
	apperrors "github.com/c14220292/kasir/pkg/errors"
)

// CheckoutService turns requested sell lines into committed transaction line
// items while keeping stock quantities, derived pricing, and receipt
// aggregates consistent. Each line runs in its own storage transaction with
// the stock row locked, so concurrent sells of the same item serialize and
// can never oversell.
type CheckoutService struct {
	trxRepo  repository.TransactionRepository
	pool     database.DBTX
	producer *event.Producer
	cache    repository.ReportCache
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	trxRepo repository.TransactionRepository,
	pool database.DBTX,
	producer *event.Producer,
	cache repository.ReportCache,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		trxRepo:  trxRepo,
		pool:     pool,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

// Checkout creates a transaction for the merchant and processes each line in
// order. Lines fail independently: a rejected line is reported in its outcome
// and does not undo earlier committed lines. The transaction row persists
// even when every line fails (total 0, line count null).
func (s *CheckoutService) Checkout(ctx context.Context, merchantID string, lines []domain.SellLine) (*domain.Transaction, []domain.SellOutcome, error) {
	if merchantID == "" {
		return nil, nil, apperrors.InvalidInput("merchant id is required")
	}
	if len(lines) == 0 {
		return nil, nil, apperrors.InvalidInput("checkout must contain at least one line")
	}

	now := time.Now().UTC()
	trx := &domain.Transaction{
		ID:         uuid.New().String(),
		MerchantID: merchantID,
		Total:      decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.trxRepo.Create(ctx, trx); err != nil {
		return nil, nil, fmt.Errorf("create transaction: %w", err)
	}

	outcomes := make([]domain.SellOutcome, 0, len(lines))
	sold := 0
	for _, line := range lines {
		outcome, err := s.Sell(ctx, trx, line.StockItemID, line.Quantity)
		if err != nil {
			return nil, nil, err
		}
		if outcome.Sold() {
			sold++
		}
		outcomes = append(outcomes, *outcome)
	}

	if sold > 0 {
		if err := s.producer.PublishTransactionCompleted(ctx, trx); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish transaction.completed event",
				slog.String("transaction_id", trx.ID),
				slog.String("error", err.Error()),
			)
		}
		if err := s.cache.Invalidate(ctx, merchantID); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate report cache",
				slog.String("merchant_id", merchantID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "checkout processed",
		slog.String("transaction_id", trx.ID),
		slog.String("merchant_id", merchantID),
		slog.Int("requested_lines", len(lines)),
		slog.Int("sold_lines", sold),
		slog.String("total", trx.Total.StringFixed(2)),
	)

	return trx, outcomes, nil
}

// Sell processes one sell line against the merchant's stock and folds the
// committed result into trx. Business rejections come back as the outcome
// status; the error return is reserved for storage failures.
//
// The quantity check runs before the item is resolved, so a nonsense quantity
// for an unknown item reports invalid_quantity, not item_not_found.
func (s *CheckoutService) Sell(ctx context.Context, trx *domain.Transaction, stockItemID string, qty int) (*domain.SellOutcome, error) {
	outcome := &domain.SellOutcome{StockItemID: stockItemID}

	if qty <= 0 {
		outcome.Status = domain.SellStatusInvalidQuantity
		sellsTotal.WithLabelValues(outcome.Status).Inc()
		return outcome, nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin sell transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the stock row so concurrent sells of the same item serialize. The
	// stored sale_unit_price read here is the price snapshot for this line;
	// nothing may recompute it between this read and the commit.
	item := domain.StockItem{ID: stockItemID, MerchantID: trx.MerchantID}
	lockQuery := `
		SELECT name, quantity, unit_size, purchase_unit_price, profit_margin_percent,
		       purchase_total, sale_unit_price, sale_total
		FROM stock_items
		WHERE merchant_id = $1 AND id = $2
		FOR UPDATE`

	err = tx.QueryRow(ctx, lockQuery, trx.MerchantID, stockItemID).Scan(
		&item.Name,
		&item.Quantity,
		&item.UnitSize,
		&item.PurchaseUnitPrice,
		&item.ProfitMarginPercent,
		&item.PurchaseTotal,
		&item.SaleUnitPrice,
		&item.SaleTotal,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			outcome.Status = domain.SellStatusItemNotFound
			sellsTotal.WithLabelValues(outcome.Status).Inc()
			return outcome, nil
		}
		if isSerializationFailure(err) {
			outcome.Status = domain.SellStatusConflict
			sellsTotal.WithLabelValues(outcome.Status).Inc()
			return outcome, nil
		}
		return nil, fmt.Errorf("lock stock item: %w", err)
	}

	if qty > item.Quantity {
		// Deferred rollback discards the lock; nothing was written.
		outcome.Status = domain.SellStatusInsufficientStock
		outcome.Available = item.Quantity
		sellsTotal.WithLabelValues(outcome.Status).Inc()
		return outcome, nil
	}

	subtotal := item.SaleSubtotal(qty).Round(2)
	depleted := qty == item.Quantity
	now := time.Now().UTC()

	if depleted {
		// Selling the last units removes the row entirely.
		deleteQuery := `
			DELETE FROM stock_items
			WHERE merchant_id = $1 AND id = $2`

		if _, err := tx.Exec(ctx, deleteQuery, trx.MerchantID, stockItemID); err != nil {
			return nil, fmt.Errorf("delete depleted stock item: %w", err)
		}
		item.Quantity = 0
		item.Recompute()
	} else {
		item.Quantity -= qty
		item.Recompute()
		item.UpdatedAt = now

		updateQuery := `
			UPDATE stock_items
			SET quantity = $1, purchase_total = $2, sale_unit_price = $3, sale_total = $4, updated_at = $5
			WHERE merchant_id = $6 AND id = $7`

		if _, err := tx.Exec(ctx, updateQuery,
			item.Quantity,
			item.PurchaseTotal,
			item.SaleUnitPrice,
			item.SaleTotal,
			now,
			trx.MerchantID,
			stockItemID,
		); err != nil {
			return nil, fmt.Errorf("decrement stock item: %w", err)
		}
	}

	lineItem := domain.TransactionLineItem{
		ID:            uuid.New().String(),
		TransactionID: trx.ID,
		ProductName:   item.Name,
		Quantity:      qty,
		Subtotal:      subtotal,
		CreatedAt:     now,
	}

	insertQuery := `
		INSERT INTO transaction_line_items (id, transaction_id, product_name, quantity, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := tx.Exec(ctx, insertQuery,
		lineItem.ID,
		lineItem.TransactionID,
		lineItem.ProductName,
		lineItem.Quantity,
		lineItem.Subtotal,
		lineItem.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert line item: %w", err)
	}

	// Aggregates are computed from the in-memory receipt and written in the
	// same storage transaction as the line, so trx itself stays untouched
	// until the commit succeeds.
	newCount := 1
	if trx.LineItemCount != nil {
		newCount = *trx.LineItemCount + 1
	}
	newTotal := trx.Total.Add(subtotal)

	aggregateQuery := `
		UPDATE transactions
		SET line_item_count = $1, total = $2, updated_at = $3
		WHERE merchant_id = $4 AND id = $5`

	if _, err := tx.Exec(ctx, aggregateQuery, newCount, newTotal, now, trx.MerchantID, trx.ID); err != nil {
		return nil, fmt.Errorf("update transaction aggregates: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			outcome.Status = domain.SellStatusConflict
			sellsTotal.WithLabelValues(outcome.Status).Inc()
			return outcome, nil
		}
		return nil, fmt.Errorf("commit sell transaction: %w", err)
	}

	trx.ApplyLine(lineItem)
	trx.UpdatedAt = now

	outcome.Status = domain.SellStatusSuccess
	outcome.LineItem = &lineItem
	sellsTotal.WithLabelValues(outcome.Status).Inc()
	unitsSoldTotal.Add(float64(qty))

	// Events go out only after the commit.
	if depleted {
		stockDepletionsTotal.Inc()
		if err := s.producer.PublishStockDepleted(ctx, &item); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish stock.depleted event",
				slog.String("stock_item_id", stockItemID),
				slog.String("error", err.Error()),
			)
		}
	} else {
		if err := s.producer.PublishStockUpdated(ctx, &item); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish stock.updated event",
				slog.String("stock_item_id", stockItemID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "sell line committed",
		slog.String("transaction_id", trx.ID),
		slog.String("stock_item_id", stockItemID),
		slog.Int("quantity", qty),
		slog.String("subtotal", subtotal.StringFixed(2)),
		slog.Bool("depleted", depleted),
	)

	return outcome, nil
}

// isSerializationFailure reports whether the error is a Postgres
// serialization (40001) or deadlock (40P01) failure. Both resolve by
// retrying once the competing transaction finishes.
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "40001") || strings.Contains(err.Error(), "40P01")
}
