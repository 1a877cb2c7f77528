package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/pkg/database"
	apperrors "github.com/c14220292/kasir/pkg/errors"
)

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns all catalog products ordered by name.
func (r *CatalogRepository) List(ctx context.Context) ([]domain.CatalogProduct, error) {
	query := `
		SELECT id, name, price, created_at
		FROM catalog_products
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list catalog products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.CatalogProduct, 0)
	for rows.Next() {
		var p domain.CatalogProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan catalog product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog product rows: %w", err)
	}

	return products, nil
}

// GetByName retrieves a catalog product by exact name.
func (r *CatalogRepository) GetByName(ctx context.Context, name string) (*domain.CatalogProduct, error) {
	query := `
		SELECT id, name, price, created_at
		FROM catalog_products
		WHERE name = $1`

	var p domain.CatalogProduct
	err := r.pool.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get catalog product by name: %w", err)
	}

	return &p, nil
}
