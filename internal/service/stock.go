package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/internal/event"
	"github.com/c14220292/kasir/internal/repository"
	apperrors "github.com/c14220292/kasir/pkg/errors"
)

// maxUnitSize bounds the units-per-pack field, matching the registration form.
const maxUnitSize = 10

// StockService implements the business logic for stock item management.
type StockService struct {
	repo        repository.StockRepository
	catalogRepo repository.CatalogRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewStockService creates a new stock service.
func NewStockService(
	repo repository.StockRepository,
	catalogRepo repository.CatalogRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *StockService {
	return &StockService{
		repo:        repo,
		catalogRepo: catalogRepo,
		producer:    producer,
		logger:      logger,
	}
}

// RegisterStockInput holds the parameters for registering a stock item.
// PurchaseUnitPrice may be nil, in which case the catalog price for the
// product name is used instead.
type RegisterStockInput struct {
	Name                string
	Quantity            int
	UnitSize            int
	PurchaseUnitPrice   *decimal.Decimal
	ProfitMarginPercent int
}

// UpdateStockInput holds the optional changes for a stock item update. Nil
// fields keep their current values; QuantityDelta adds to the current
// quantity (restock) and may be negative for corrections.
type UpdateStockInput struct {
	Name                *string
	UnitSize            *int
	QuantityDelta       *int
	PurchaseUnitPrice   *decimal.Decimal
	ProfitMarginPercent *int
}

// Register creates a stock item with derived pricing computed at creation.
func (s *StockService) Register(ctx context.Context, merchantID string, input RegisterStockInput) (*domain.StockItem, error) {
	if merchantID == "" {
		return nil, apperrors.InvalidInput("merchant id is required")
	}
	if input.Quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if input.UnitSize == 0 {
		input.UnitSize = domain.DefaultUnitSize
	}

	name := strings.TrimSpace(input.Name)

	price := decimal.Zero
	if input.PurchaseUnitPrice != nil {
		price = *input.PurchaseUnitPrice
	} else {
		// No price given: fall back to the catalog reference price, the way
		// the registration form pre-fills it.
		product, err := s.catalogRepo.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.InvalidInput(fmt.Sprintf("purchase_unit_price is required, %q is not a catalog product", name))
			}
			return nil, fmt.Errorf("look up catalog price: %w", err)
		}
		price = product.Price
	}

	if err := validateStockInputs(name, input.UnitSize, price, input.ProfitMarginPercent); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &domain.StockItem{
		ID:                  uuid.New().String(),
		MerchantID:          merchantID,
		Name:                name,
		Quantity:            input.Quantity,
		UnitSize:            input.UnitSize,
		PurchaseUnitPrice:   price,
		ProfitMarginPercent: input.ProfitMarginPercent,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	item.Recompute()

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("register stock item: %w", err)
	}

	if err := s.producer.PublishStockUpdated(ctx, item); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish stock.updated event",
			slog.String("stock_item_id", item.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "stock item registered",
		slog.String("stock_item_id", item.ID),
		slog.String("merchant_id", merchantID),
		slog.String("name", item.Name),
		slog.Int("quantity", item.Quantity),
		slog.String("sale_unit_price", item.SaleUnitPrice.StringFixed(2)),
	)

	return item, nil
}

// Get retrieves a stock item owned by the merchant.
func (s *StockService) Get(ctx context.Context, merchantID, id string) (*domain.StockItem, error) {
	item, err := s.repo.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return item, nil
}

// List returns a page of the merchant's stock items with the total count.
func (s *StockService) List(ctx context.Context, merchantID string, page, perPage int) ([]domain.StockItem, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	items, total, err := s.repo.List(ctx, merchantID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock items: %w", err)
	}

	return items, total, nil
}

// Update applies raw-input changes to a stock item and recomputes derived
// pricing atomically with them.
func (s *StockService) Update(ctx context.Context, merchantID, id string, input UpdateStockInput) (*domain.StockItem, error) {
	item, err := s.repo.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, fmt.Errorf("get stock item for update: %w", err)
	}

	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.UnitSize != nil {
		item.UnitSize = *input.UnitSize
	}
	if input.PurchaseUnitPrice != nil {
		item.PurchaseUnitPrice = *input.PurchaseUnitPrice
	}
	if input.ProfitMarginPercent != nil {
		item.ProfitMarginPercent = *input.ProfitMarginPercent
	}
	if input.QuantityDelta != nil {
		next := item.Quantity + *input.QuantityDelta
		if next < 1 {
			return nil, apperrors.InvalidInput("quantity cannot drop below 1; sell or delete the item instead")
		}
		item.Quantity = next
	}

	if err := validateStockInputs(item.Name, item.UnitSize, item.PurchaseUnitPrice, item.ProfitMarginPercent); err != nil {
		return nil, err
	}

	item.Recompute()
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update stock item: %w", err)
	}

	if err := s.producer.PublishStockUpdated(ctx, item); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish stock.updated event",
			slog.String("stock_item_id", item.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "stock item updated",
		slog.String("stock_item_id", item.ID),
		slog.String("merchant_id", merchantID),
		slog.Int("quantity", item.Quantity),
		slog.String("sale_unit_price", item.SaleUnitPrice.StringFixed(2)),
	)

	return item, nil
}

// RestockByName adds delivered units to the merchant's stock item with the
// given name. Deliveries for unknown names fail with not-found; a depleted
// item no longer has a row, so its deliveries must be re-registered instead.
func (s *StockService) RestockByName(ctx context.Context, merchantID, name string, quantity int) (*domain.StockItem, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	item, err := s.repo.GetByName(ctx, merchantID, name)
	if err != nil {
		return nil, fmt.Errorf("get stock item for restock: %w", err)
	}

	item.Quantity += quantity
	item.Recompute()
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("restock stock item: %w", err)
	}

	if err := s.producer.PublishStockUpdated(ctx, item); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish stock.updated event",
			slog.String("stock_item_id", item.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "stock item restocked",
		slog.String("stock_item_id", item.ID),
		slog.String("merchant_id", merchantID),
		slog.Int("delivered", quantity),
		slog.Int("quantity", item.Quantity),
	)

	return item, nil
}

// Delete removes a stock item outright.
func (s *StockService) Delete(ctx context.Context, merchantID, id string) error {
	if err := s.repo.Delete(ctx, merchantID, id); err != nil {
		return fmt.Errorf("delete stock item: %w", err)
	}

	s.logger.InfoContext(ctx, "stock item deleted",
		slog.String("stock_item_id", id),
		slog.String("merchant_id", merchantID),
	)

	return nil
}

func validateStockInputs(name string, unitSize int, price decimal.Decimal, margin int) error {
	if name == "" {
		return apperrors.InvalidInput("name is required")
	}
	if unitSize < 1 || unitSize > maxUnitSize {
		return apperrors.InvalidInput(fmt.Sprintf("unit_size must be between 1 and %d", maxUnitSize))
	}
	if price.IsNegative() {
		return apperrors.InvalidInput("purchase_unit_price must be non-negative")
	}
	if margin < 0 {
		return apperrors.InvalidInput("profit_margin_percent must be non-negative")
	}
	return nil
}
