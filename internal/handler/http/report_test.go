package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/internal/service"
	apperrors "github.com/c14220292/kasir/pkg/errors"
	"github.com/c14220292/kasir/pkg/middleware"
)

// setupReportRouter builds a router with the report routes mounted the same
// way the production router mounts them.
func setupReportRouter(handler *ReportHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.RequireMerchant)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", handler.Sales)
			r.Get("/revenue/daily", handler.DailyRevenue)
		})
	})
	return r
}

func newReportRig() (http.Handler, *mockTransactionRepository, *mockReportCache) {
	repo := new(mockTransactionRepository)
	cache := new(mockReportCache)
	svc := service.NewReportService(repo, cache, testLogger())
	return setupReportRouter(NewReportHandler(svc, testLogger())), repo, cache
}

func getReport(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(middleware.MerchantHeader, testMerchantID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// GET /api/v1/reports/sales - Sales
// ============================================================================

func TestSalesReport_Success(t *testing.T) {
	router, repo, cache := newReportRig()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC)
	summary := &domain.SalesSummary{
		From:             from,
		To:               to,
		TransactionCount: 2,
		LineItemCount:    3,
		UnitsSold:        21,
		Revenue:          decimal.RequireFromString("75125.00"),
	}

	cache.On("GetSummary", mock.Anything, testMerchantID, from, to).
		Return(nil, apperrors.NotFound("sales report", testMerchantID))
	repo.On("SalesSummary", mock.Anything, testMerchantID, from, to).Return(summary, nil)
	cache.On("SetSummary", mock.Anything, testMerchantID, from, to, summary).Return(nil)

	rec := getReport(router, "/api/v1/reports/sales?from=2024-03-01&to=2024-03-02")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["transaction_count"])
	assert.Equal(t, float64(3), data["line_item_count"])
	assert.Equal(t, float64(21), data["units_sold"])
	assert.Equal(t, "75125.00", data["revenue"])

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSalesReport_CacheHit(t *testing.T) {
	router, repo, cache := newReportRig()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC)
	summary := &domain.SalesSummary{
		From:             from,
		To:               to,
		TransactionCount: 2,
		LineItemCount:    3,
		UnitsSold:        21,
		Revenue:          decimal.RequireFromString("75125.00"),
	}

	cache.On("GetSummary", mock.Anything, testMerchantID, from, to).Return(summary, nil)

	rec := getReport(router, "/api/v1/reports/sales?from=2024-03-01&to=2024-03-02")

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeResponse(t, rec).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "75125.00", data["revenue"])

	repo.AssertNotCalled(t, "SalesSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestSalesReport_MissingRange(t *testing.T) {
	router, _, _ := newReportRig()

	rec := getReport(router, "/api/v1/reports/sales")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Equal(t, "from and to are required", resp.Error.Message)
}

func TestSalesReport_InvalidFrom(t *testing.T) {
	router, _, _ := newReportRig()

	rec := getReport(router, "/api/v1/reports/sales?from=notadate&to=2024-03-02")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "from")
}

// ============================================================================
// GET /api/v1/reports/revenue/daily - DailyRevenue
// ============================================================================

func TestDailyRevenue_Success(t *testing.T) {
	router, repo, cache := newReportRig()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC)
	rows := []domain.DailyRevenue{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), TransactionCount: 1, Revenue: decimal.RequireFromString("39125.00")},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), TransactionCount: 1, Revenue: decimal.RequireFromString("36000.00")},
	}

	cache.On("GetDailyRevenue", mock.Anything, testMerchantID, from, to).
		Return(nil, apperrors.NotFound("daily revenue report", testMerchantID))
	repo.On("DailyRevenue", mock.Anything, testMerchantID, from, to).Return(rows, nil)
	cache.On("SetDailyRevenue", mock.Anything, testMerchantID, from, to, rows).Return(nil)

	rec := getReport(router, "/api/v1/reports/revenue/daily?from=2024-03-01&to=2024-03-02")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	days, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, days, 2)

	first := days[0].(map[string]interface{})
	assert.Equal(t, "2024-03-01T00:00:00Z", first["date"])
	assert.Equal(t, float64(1), first["transaction_count"])
	assert.Equal(t, "39125.00", first["revenue"])

	second := days[1].(map[string]interface{})
	assert.Equal(t, "36000.00", second["revenue"])

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestDailyRevenue_RepoError(t *testing.T) {
	router, repo, cache := newReportRig()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC)

	cache.On("GetDailyRevenue", mock.Anything, testMerchantID, from, to).
		Return(nil, apperrors.NotFound("daily revenue report", testMerchantID))
	repo.On("DailyRevenue", mock.Anything, testMerchantID, from, to).Return(nil, assert.AnError)

	rec := getReport(router, "/api/v1/reports/revenue/daily?from=2024-03-01&to=2024-03-02")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)

	repo.AssertExpectations(t)
}
