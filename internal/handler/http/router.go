package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c14220292/kasir/internal/service"
	"github.com/c14220292/kasir/pkg/health"
	"github.com/c14220292/kasir/pkg/middleware"
)

// catalogMaxAge is how long clients may cache the catalog, in seconds. The
// catalog only changes when the seeder runs.
const catalogMaxAge = 300

// NewRouter creates a chi router with all routes registered. Every /api/v1
// route runs behind the merchant-scope middleware; health, metrics, and pprof
// stay outside it.
func NewRouter(
	stockService *service.StockService,
	checkoutService *service.CheckoutService,
	transactionService *service.TransactionService,
	reportService *service.ReportService,
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("kasir"))
	r.Use(middleware.Tracing("kasir"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	stockHandler := NewStockHandler(stockService, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	transactionHandler := NewTransactionHandler(transactionService, logger)
	reportHandler := NewReportHandler(reportService, logger)
	catalogHandler := NewCatalogHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.RequireMerchant)

		r.Route("/stock", func(r chi.Router) {
			r.Post("/", stockHandler.Register)
			r.Get("/", stockHandler.List)
			r.Get("/{itemID}", stockHandler.Get)
			r.Put("/{itemID}", stockHandler.Update)
			r.Delete("/{itemID}", stockHandler.Delete)
		})

		r.With(middleware.CacheControl(catalogMaxAge)).Get("/catalog", catalogHandler.List)

		r.Post("/checkout", checkoutHandler.Checkout)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionHandler.List)
			r.Get("/{transactionID}", transactionHandler.Get)
			r.Delete("/{transactionID}", transactionHandler.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", reportHandler.Sales)
			r.Get("/revenue/daily", reportHandler.DailyRevenue)
		})
	})

	return r
}
