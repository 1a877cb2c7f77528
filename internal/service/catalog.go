package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/internal/repository"
)

// CatalogService serves the shared product reference list. The catalog is
// read-only at runtime; the seeder populates it.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
	}
}

// List returns all catalog products ordered by name.
func (s *CatalogService) List(ctx context.Context) ([]domain.CatalogProduct, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog products: %w", err)
	}
	return products, nil
}
