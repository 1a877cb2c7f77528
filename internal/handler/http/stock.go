package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/c14220292/kasir/internal/service"
	"github.com/c14220292/kasir/pkg/httputil"
	"github.com/c14220292/kasir/pkg/middleware"
	"github.com/c14220292/kasir/pkg/validator"
)

// StockHandler handles HTTP requests for stock item endpoints.
type StockHandler struct {
	service *service.StockService
	logger  *slog.Logger
}

// NewStockHandler creates a new stock HTTP handler.
func NewStockHandler(svc *service.StockService, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// RegisterStockRequest is the JSON request body for registering a stock item.
// PurchaseUnitPrice may be omitted when the name matches a catalog product,
// in which case the catalog reference price is used.
type RegisterStockRequest struct {
	Name                string           `json:"name" validate:"required"`
	Quantity            int              `json:"quantity" validate:"required,gte=1"`
	UnitSize            int              `json:"unit_size" validate:"omitempty,gte=1,lte=10"`
	PurchaseUnitPrice   *decimal.Decimal `json:"purchase_unit_price"`
	ProfitMarginPercent int              `json:"profit_margin_percent" validate:"gte=0"`
}

// UpdateStockRequest is the JSON request body for updating a stock item.
// Omitted fields keep their current values. QuantityDelta adds to the current
// quantity, so a restock of 50 units is {"quantity_delta": 50}.
type UpdateStockRequest struct {
	Name                *string          `json:"name"`
	UnitSize            *int             `json:"unit_size" validate:"omitempty,gte=1,lte=10"`
	QuantityDelta       *int             `json:"quantity_delta"`
	PurchaseUnitPrice   *decimal.Decimal `json:"purchase_unit_price"`
	ProfitMarginPercent *int             `json:"profit_margin_percent" validate:"omitempty,gte=0"`
}

// --- Handlers ---

// Register handles POST /api/v1/stock
func (h *StockHandler) Register(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req RegisterStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	item, err := h.service.Register(r.Context(), merchantID, service.RegisterStockInput{
		Name:                req.Name,
		Quantity:            req.Quantity,
		UnitSize:            req.UnitSize,
		PurchaseUnitPrice:   req.PurchaseUnitPrice,
		ProfitMarginPercent: req.ProfitMarginPercent,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

// List handles GET /api/v1/stock
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	items, total, err := h.service.List(r.Context(), merchantID, page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(items, total, page, perPage))
}

// Get handles GET /api/v1/stock/{itemID}
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	item, err := h.service.Get(r.Context(), merchantID, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}

// Update handles PUT /api/v1/stock/{itemID}
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	item, err := h.service.Update(r.Context(), merchantID, id.String(), service.UpdateStockInput{
		Name:                req.Name,
		UnitSize:            req.UnitSize,
		QuantityDelta:       req.QuantityDelta,
		PurchaseUnitPrice:   req.PurchaseUnitPrice,
		ProfitMarginPercent: req.ProfitMarginPercent,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}

// Delete handles DELETE /api/v1/stock/{itemID}
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	if err := h.service.Delete(r.Context(), merchantID, id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parsePagination reads the page and per_page query parameters, applying the
// defaults 1 and 20. On an invalid value it writes a 400 response and returns
// ok=false, signaling the caller to return early.
func parsePagination(w http.ResponseWriter, r *http.Request) (page, perPage int, ok bool) {
	page, perPage = 1, 20

	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return 0, 0, false
		}
		page = p
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		pp, err := strconv.Atoi(v)
		if err != nil || pp < 1 || pp > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return 0, 0, false
		}
		perPage = pp
	}

	return page, perPage, true
}
