package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/internal/repository"
	apperrors "github.com/c14220292/kasir/pkg/errors"
)

// ReportService computes sales reports over transaction history, with a
// cache-aside layer in front of the aggregate queries. Cache failures are
// logged and the report is computed from storage; the cache is never allowed
// to break reporting.
type ReportService struct {
	repo   repository.TransactionRepository
	cache  repository.ReportCache
	logger *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(repo repository.TransactionRepository, cache repository.ReportCache, logger *slog.Logger) *ReportService {
	return &ReportService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Sales returns the merchant's sales summary between from and to.
func (s *ReportService) Sales(ctx context.Context, merchantID string, from, to time.Time) (*domain.SalesSummary, error) {
	if err := validateReportRange(from, to); err != nil {
		return nil, err
	}

	summary, err := s.cache.GetSummary(ctx, merchantID, from, to)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "report cache read failed",
			slog.String("merchant_id", merchantID),
			slog.String("error", err.Error()),
		)
	}

	summary, err = s.repo.SalesSummary(ctx, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("compute sales summary: %w", err)
	}

	if err := s.cache.SetSummary(ctx, merchantID, from, to, summary); err != nil {
		s.logger.WarnContext(ctx, "report cache write failed",
			slog.String("merchant_id", merchantID),
			slog.String("error", err.Error()),
		)
	}

	return summary, nil
}

// DailyRevenue returns the merchant's per-day revenue series between from and to.
func (s *ReportService) DailyRevenue(ctx context.Context, merchantID string, from, to time.Time) ([]domain.DailyRevenue, error) {
	if err := validateReportRange(from, to); err != nil {
		return nil, err
	}

	rows, err := s.cache.GetDailyRevenue(ctx, merchantID, from, to)
	if err == nil {
		return rows, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "report cache read failed",
			slog.String("merchant_id", merchantID),
			slog.String("error", err.Error()),
		)
	}

	rows, err = s.repo.DailyRevenue(ctx, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("compute daily revenue: %w", err)
	}

	if err := s.cache.SetDailyRevenue(ctx, merchantID, from, to, rows); err != nil {
		s.logger.WarnContext(ctx, "report cache write failed",
			slog.String("merchant_id", merchantID),
			slog.String("error", err.Error()),
		)
	}

	return rows, nil
}

func validateReportRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return apperrors.InvalidInput("from and to are required")
	}
	if to.Before(from) {
		return apperrors.InvalidInput("from must not be after to")
	}
	return nil
}
