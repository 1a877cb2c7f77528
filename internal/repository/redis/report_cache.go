package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/c14220292/kasir/internal/domain"
	apperrors "github.com/c14220292/kasir/pkg/errors"
)

const keyPrefix = "reports:"

// Report names used in cache keys.
const (
	reportSales        = "sales"
	reportDailyRevenue = "daily_revenue"
)

// ReportCache implements repository.ReportCache using Redis. Every entry key
// carries a per-merchant generation number; Invalidate bumps the generation,
// so stale entries are never read again and lapse via their TTL.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a new Redis-backed report cache.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *ReportCache) generationKey(merchantID string) string {
	return keyPrefix + merchantID + ":gen"
}

func (c *ReportCache) generation(ctx context.Context, merchantID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(merchantID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get report generation: %w", err)
	}
	return gen, nil
}

func (c *ReportCache) entryKey(merchantID, report string, gen int64, from, to time.Time) string {
	return fmt.Sprintf("%s%s:%d:%s:%d:%d", keyPrefix, merchantID, gen, report, from.Unix(), to.Unix())
}

func (c *ReportCache) get(ctx context.Context, merchantID, report string, from, to time.Time, target any) error {
	gen, err := c.generation(ctx, merchantID)
	if err != nil {
		return err
	}

	data, err := c.client.Get(ctx, c.entryKey(merchantID, report, gen, from, to)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return apperrors.NotFound("cached report", report)
		}
		return fmt.Errorf("redis get %s report: %w", report, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unmarshal cached %s report: %w", report, err)
	}

	return nil
}

func (c *ReportCache) set(ctx context.Context, merchantID, report string, from, to time.Time, value any) error {
	gen, err := c.generation(ctx, merchantID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s report: %w", report, err)
	}

	if err := c.client.Set(ctx, c.entryKey(merchantID, report, gen, from, to), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s report: %w", report, err)
	}

	return nil
}

// GetSummary returns the cached sales summary for the range, if any.
func (c *ReportCache) GetSummary(ctx context.Context, merchantID string, from, to time.Time) (*domain.SalesSummary, error) {
	var summary domain.SalesSummary
	if err := c.get(ctx, merchantID, reportSales, from, to, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SetSummary caches the sales summary for the range.
func (c *ReportCache) SetSummary(ctx context.Context, merchantID string, from, to time.Time, summary *domain.SalesSummary) error {
	return c.set(ctx, merchantID, reportSales, from, to, summary)
}

// GetDailyRevenue returns the cached daily revenue series for the range, if any.
func (c *ReportCache) GetDailyRevenue(ctx context.Context, merchantID string, from, to time.Time) ([]domain.DailyRevenue, error) {
	var rows []domain.DailyRevenue
	if err := c.get(ctx, merchantID, reportDailyRevenue, from, to, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetDailyRevenue caches the daily revenue series for the range.
func (c *ReportCache) SetDailyRevenue(ctx context.Context, merchantID string, from, to time.Time, rows []domain.DailyRevenue) error {
	return c.set(ctx, merchantID, reportDailyRevenue, from, to, rows)
}

// Invalidate bumps the merchant's generation so every subsequent read misses.
func (c *ReportCache) Invalidate(ctx context.Context, merchantID string) error {
	if err := c.client.Incr(ctx, c.generationKey(merchantID)).Err(); err != nil {
		return fmt.Errorf("redis bump report generation: %w", err)
	}
	return nil
}
