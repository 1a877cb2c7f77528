package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/internal/repository"
	apperrors "github.com/c14220292/kasir/pkg/errors"
)

// TransactionService serves receipt lookups, purchase history, and receipt
// deletion. Checkout itself lives in CheckoutService.
type TransactionService struct {
	repo   repository.TransactionRepository
	cache  repository.ReportCache
	logger *slog.Logger
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(repo repository.TransactionRepository, cache repository.ReportCache, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Get retrieves a transaction with its line items.
func (s *TransactionService) Get(ctx context.Context, merchantID, id string) (*domain.Transaction, error) {
	trx, err := s.repo.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return trx, nil
}

// List returns a filtered, paginated page of the merchant's transactions.
func (s *TransactionService) List(ctx context.Context, merchantID string, filter repository.TransactionFilter) ([]domain.Transaction, int, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, apperrors.InvalidInput("from must not be after to")
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	transactions, total, err := s.repo.List(ctx, merchantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	return transactions, total, nil
}

// Delete removes a transaction; its line items cascade with it. Reports
// derived from history change, so the merchant's report cache is dropped.
func (s *TransactionService) Delete(ctx context.Context, merchantID, id string) error {
	if err := s.repo.Delete(ctx, merchantID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.cache.Invalidate(ctx, merchantID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate report cache",
			slog.String("merchant_id", merchantID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "transaction deleted",
		slog.String("transaction_id", id),
		slog.String("merchant_id", merchantID),
	)

	return nil
}
