package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220292/kasir/internal/domain"
	apperrors "github.com/c14220292/kasir/pkg/errors"
)

func setupTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewReportCache(client, 5*time.Minute)
	return cache, mr
}

func reportRange() (time.Time, time.Time) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	return from, to
}

func sampleSummary(from, to time.Time) *domain.SalesSummary {
	return &domain.SalesSummary{
		From:             from,
		To:               to,
		TransactionCount: 2,
		LineItemCount:    3,
		UnitsSold:        21,
		Revenue:          decimal.RequireFromString("75125.00"),
	}
}

// ---------------------------------------------------------------------------
// Summary
// ---------------------------------------------------------------------------

func TestReportCache_Summary_RoundTrip(t *testing.T) {
	cache, _ := setupTestCache(t)
	from, to := reportRange()

	summary := sampleSummary(from, to)
	require.NoError(t, cache.SetSummary(context.Background(), "mrc-001", from, to, summary))

	got, err := cache.GetSummary(context.Background(), "mrc-001", from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TransactionCount)
	assert.Equal(t, 3, got.LineItemCount)
	assert.Equal(t, 21, got.UnitsSold)
	assert.True(t, got.Revenue.Equal(decimal.RequireFromString("75125.00")))
}

func TestReportCache_GetSummary_Miss(t *testing.T) {
	cache, _ := setupTestCache(t)
	from, to := reportRange()

	got, err := cache.GetSummary(context.Background(), "mrc-001", from, to)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReportCache_GetSummary_InvalidJSON(t *testing.T) {
	cache, mr := setupTestCache(t)
	from, to := reportRange()

	key := fmt.Sprintf("reports:mrc-001:0:sales:%d:%d", from.Unix(), to.Unix())
	require.NoError(t, mr.Set(key, "{{not-valid-json"))

	got, err := cache.GetSummary(context.Background(), "mrc-001", from, to)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal cached sales report")
}

func TestReportCache_SetSummary_TTL(t *testing.T) {
	cache, mr := setupTestCache(t)
	from, to := reportRange()

	require.NoError(t, cache.SetSummary(context.Background(), "mrc-001", from, to, sampleSummary(from, to)))

	key := fmt.Sprintf("reports:mrc-001:0:sales:%d:%d", from.Unix(), to.Unix())
	require.True(t, mr.Exists(key))

	ttl := mr.TTL(key)
	assert.True(t, ttl > 4*time.Minute, "expected TTL > 4m, got %v", ttl)
	assert.True(t, ttl <= 5*time.Minute, "expected TTL <= 5m, got %v", ttl)
}

// ---------------------------------------------------------------------------
// Daily revenue
// ---------------------------------------------------------------------------

func TestReportCache_DailyRevenue_RoundTrip(t *testing.T) {
	cache, _ := setupTestCache(t)
	from, to := reportRange()

	rows := []domain.DailyRevenue{
		{
			Date:             time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			TransactionCount: 1,
			Revenue:          decimal.RequireFromString("39125.00"),
		},
		{
			Date:             time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			TransactionCount: 1,
			Revenue:          decimal.RequireFromString("36000.00"),
		},
	}
	require.NoError(t, cache.SetDailyRevenue(context.Background(), "mrc-001", from, to, rows))

	got, err := cache.GetDailyRevenue(context.Background(), "mrc-001", from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].TransactionCount)
	assert.True(t, got[0].Revenue.Equal(decimal.RequireFromString("39125.00")))
	assert.True(t, got[1].Revenue.Equal(decimal.RequireFromString("36000.00")))
}

func TestReportCache_GetDailyRevenue_Miss(t *testing.T) {
	cache, _ := setupTestCache(t)
	from, to := reportRange()

	got, err := cache.GetDailyRevenue(context.Background(), "mrc-001", from, to)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Invalidate
// ---------------------------------------------------------------------------

func TestReportCache_Invalidate_DropsEntries(t *testing.T) {
	cache, mr := setupTestCache(t)
	from, to := reportRange()

	require.NoError(t, cache.SetSummary(context.Background(), "mrc-001", from, to, sampleSummary(from, to)))

	_, err := cache.GetSummary(context.Background(), "mrc-001", from, to)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(context.Background(), "mrc-001"))

	// The generation bump makes the old entry unreachable.
	got, err := cache.GetSummary(context.Background(), "mrc-001", from, to)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	gen, err := mr.Get("reports:mrc-001:gen")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}

func TestReportCache_Invalidate_ScopedToMerchant(t *testing.T) {
	cache, _ := setupTestCache(t)
	from, to := reportRange()

	require.NoError(t, cache.SetSummary(context.Background(), "mrc-001", from, to, sampleSummary(from, to)))
	require.NoError(t, cache.SetSummary(context.Background(), "mrc-002", from, to, sampleSummary(from, to)))

	require.NoError(t, cache.Invalidate(context.Background(), "mrc-001"))

	_, err := cache.GetSummary(context.Background(), "mrc-001", from, to)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The other merchant's cache is untouched.
	got, err := cache.GetSummary(context.Background(), "mrc-002", from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TransactionCount)
}

func TestReportCache_WriteAfterInvalidate_UsesNewGeneration(t *testing.T) {
	cache, mr := setupTestCache(t)
	from, to := reportRange()

	require.NoError(t, cache.Invalidate(context.Background(), "mrc-001"))
	require.NoError(t, cache.SetSummary(context.Background(), "mrc-001", from, to, sampleSummary(from, to)))

	key := fmt.Sprintf("reports:mrc-001:1:sales:%d:%d", from.Unix(), to.Unix())
	assert.True(t, mr.Exists(key))

	got, err := cache.GetSummary(context.Background(), "mrc-001", from, to)
	require.NoError(t, err)
	assert.Equal(t, 21, got.UnitsSold)
}
