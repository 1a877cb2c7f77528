package http

import (
	"log/slog"
	"net/http"

	"github.com/c14220292/kasir/internal/service"
	"github.com/c14220292/kasir/pkg/httputil"
	"github.com/c14220292/kasir/pkg/middleware"
)

// ReportHandler handles HTTP requests for sales report endpoints.
type ReportHandler struct {
	service *service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report HTTP handler.
func NewReportHandler(svc *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  logger,
	}
}

// Sales handles GET /api/v1/reports/sales
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	from, ok := parseTimeParam(w, r, "from", false)
	if !ok {
		return
	}
	to, ok := parseTimeParam(w, r, "to", true)
	if !ok {
		return
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	summary, err := h.service.Sales(r.Context(), merchantID, from, to)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// DailyRevenue handles GET /api/v1/reports/revenue/daily
func (h *ReportHandler) DailyRevenue(w http.ResponseWriter, r *http.Request) {
	from, ok := parseTimeParam(w, r, "from", false)
	if !ok {
		return
	}
	to, ok := parseTimeParam(w, r, "to", true)
	if !ok {
		return
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	rows, err := h.service.DailyRevenue(r.Context(), merchantID, from, to)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rows})
}
