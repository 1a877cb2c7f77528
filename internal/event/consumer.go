package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c14220292/kasir/internal/domain"
	pkgkafka "github.com/c14220292/kasir/pkg/kafka"
)

// Kafka topics consumed by the kasir service.
var TopicStockReceived = pkgkafka.Topic("stock", "received")

// StockReceiver defines the interface required by the event consumer.
type StockReceiver interface {
	RestockByName(ctx context.Context, merchantID, name string, quantity int) (*domain.StockItem, error)
}

// StockReceivedData is the expected payload of a stock.received event,
// emitted when a supplier delivery arrives at the store.
type StockReceivedData struct {
	MerchantID string `json:"merchant_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

// Consumer processes incoming Kafka events for the kasir service.
type Consumer struct {
	logger  *slog.Logger
	service StockReceiver
}

// NewConsumer creates a new event consumer for the kasir service.
func NewConsumer(service StockReceiver, logger *slog.Logger) *Consumer {
	return &Consumer{
		service: service,
		logger:  logger,
	}
}

// HandleStockReceived processes stock.received events by adding the delivered
// quantity to the merchant's stock item.
func (c *Consumer) HandleStockReceived(ctx context.Context, event *pkgkafka.Event) error {
	var data StockReceivedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal stock.received data: %w", err)
	}

	c.logger.InfoContext(ctx, "processing stock.received event",
		slog.String("merchant_id", data.MerchantID),
		slog.String("name", data.Name),
		slog.Int("quantity", data.Quantity),
	)

	if data.Quantity <= 0 {
		c.logger.WarnContext(ctx, "ignoring delivery with non-positive quantity",
			slog.String("merchant_id", data.MerchantID),
			slog.String("name", data.Name),
			slog.Int("quantity", data.Quantity),
		)
		return nil
	}

	item, err := c.service.RestockByName(ctx, data.MerchantID, data.Name, data.Quantity)
	if err != nil {
		return fmt.Errorf("restock %q for merchant %s: %w", data.Name, data.MerchantID, err)
	}

	c.logger.InfoContext(ctx, "stock received",
		slog.String("stock_item_id", item.ID),
		slog.String("name", item.Name),
		slog.Int("quantity", item.Quantity),
	)

	return nil
}
