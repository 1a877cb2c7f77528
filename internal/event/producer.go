package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/c14220292/kasir/internal/domain"
	pkgkafka "github.com/c14220292/kasir/pkg/kafka"
)

// Kafka topics for events published by the kasir service.
var (
	TopicStockUpdated         = pkgkafka.Topic("stock", "updated")
	TopicStockDepleted        = pkgkafka.Topic("stock", "depleted")
	TopicTransactionCompleted = pkgkafka.Topic("transaction", "completed")
)

// Event types carried in the published envelopes.
const (
	EventTypeStockUpdated         = "stock.updated"
	EventTypeStockDepleted        = "stock.depleted"
	EventTypeTransactionCompleted = "transaction.completed"
)

// Aggregate type constants.
const (
	AggregateTypeStockItem   = "stock_item"
	AggregateTypeTransaction = "transaction"
)

// Source identifier for events originating from the kasir service.
const SourceKasirAPI = "kasir-api"

// StockUpdatedData is the payload for a stock.updated event.
type StockUpdatedData struct {
	StockItemID   string `json:"stock_item_id"`
	MerchantID    string `json:"merchant_id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	SaleUnitPrice string `json:"sale_unit_price"`
}

// StockDepletedData is the payload for a stock.depleted event, published when
// a sale drains an item to zero and its row is removed.
type StockDepletedData struct {
	StockItemID string `json:"stock_item_id"`
	MerchantID  string `json:"merchant_id"`
	Name        string `json:"name"`
}

// TransactionCompletedData is the payload for a transaction.completed event.
type TransactionCompletedData struct {
	TransactionID string `json:"transaction_id"`
	MerchantID    string `json:"merchant_id"`
	LineItemCount int    `json:"line_item_count"`
	Total         string `json:"total"`
}

// Producer publishes kasir domain events to Kafka. Publishes run through a
// circuit breaker so a dead broker cannot stall request handling.
type Producer struct {
	kafka   *pkgkafka.Producer
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
	name    string
}

// NewProducer creates a new event producer for the kasir service.
func NewProducer(kafka *pkgkafka.Producer, cfg BreakerConfig, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:   kafka,
		breaker: newBreaker(cfg, logger),
		logger:  logger,
		name:    cfg.Name,
	}
}

// publish sends the event through the circuit breaker. Rejected publishes are
// counted as dropped events.
func (p *Producer) publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.kafka.Publish(ctx, topic, event)
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			eventPublishDropped.WithLabelValues(p.name, topic).Inc()
		}
		return err
	}
	return nil
}

// PublishStockUpdated publishes a stock.updated event.
func (p *Producer) PublishStockUpdated(ctx context.Context, item *domain.StockItem) error {
	data := StockUpdatedData{
		StockItemID:   item.ID,
		MerchantID:    item.MerchantID,
		Name:          item.Name,
		Quantity:      item.Quantity,
		SaleUnitPrice: item.SaleUnitPrice.StringFixed(2),
	}

	event, err := pkgkafka.NewEvent(EventTypeStockUpdated, item.ID, AggregateTypeStockItem, SourceKasirAPI, data)
	if err != nil {
		return fmt.Errorf("create stock.updated event: %w", err)
	}

	if err := p.publish(ctx, TopicStockUpdated, event); err != nil {
		return fmt.Errorf("publish stock.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published stock.updated event",
		slog.String("stock_item_id", item.ID),
		slog.Int("quantity", item.Quantity),
	)

	return nil
}

// PublishStockDepleted publishes a stock.depleted event. The item argument is
// the final snapshot taken before the row was removed.
func (p *Producer) PublishStockDepleted(ctx context.Context, item *domain.StockItem) error {
	data := StockDepletedData{
		StockItemID: item.ID,
		MerchantID:  item.MerchantID,
		Name:        item.Name,
	}

	event, err := pkgkafka.NewEvent(EventTypeStockDepleted, item.ID, AggregateTypeStockItem, SourceKasirAPI, data)
	if err != nil {
		return fmt.Errorf("create stock.depleted event: %w", err)
	}

	if err := p.publish(ctx, TopicStockDepleted, event); err != nil {
		return fmt.Errorf("publish stock.depleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published stock.depleted event",
		slog.String("stock_item_id", item.ID),
		slog.String("name", item.Name),
	)

	return nil
}

// PublishTransactionCompleted publishes a transaction.completed event.
func (p *Producer) PublishTransactionCompleted(ctx context.Context, trx *domain.Transaction) error {
	count := 0
	if trx.LineItemCount != nil {
		count = *trx.LineItemCount
	}

	data := TransactionCompletedData{
		TransactionID: trx.ID,
		MerchantID:    trx.MerchantID,
		LineItemCount: count,
		Total:         trx.Total.StringFixed(2),
	}

	event, err := pkgkafka.NewEvent(EventTypeTransactionCompleted, trx.ID, AggregateTypeTransaction, SourceKasirAPI, data)
	if err != nil {
		return fmt.Errorf("create transaction.completed event: %w", err)
	}

	if err := p.publish(ctx, TopicTransactionCompleted, event); err != nil {
		return fmt.Errorf("publish transaction.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published transaction.completed event",
		slog.String("transaction_id", trx.ID),
		slog.Int("line_item_count", count),
	)

	return nil
}
