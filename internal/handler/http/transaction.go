package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/c14220292/kasir/internal/repository"
	"github.com/c14220292/kasir/internal/service"
	"github.com/c14220292/kasir/pkg/httputil"
	"github.com/c14220292/kasir/pkg/middleware"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
type TransactionHandler struct {
	service *service.TransactionService
	logger  *slog.Logger
}

// NewTransactionHandler creates a new transaction HTTP handler.
func NewTransactionHandler(svc *service.TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/v1/transactions
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	filter := repository.TransactionFilter{
		Page:    page,
		PerPage: perPage,
	}

	if from, ok := parseTimeParam(w, r, "from", false); !ok {
		return
	} else if !from.IsZero() {
		filter.From = &from
	}
	if to, ok := parseTimeParam(w, r, "to", true); !ok {
		return
	} else if !to.IsZero() {
		filter.To = &to
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	transactions, total, err := h.service.List(r.Context(), merchantID, filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(transactions, total, filter.Page, filter.PerPage))
}

// Get handles GET /api/v1/transactions/{transactionID}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "transactionID"))
	if !ok {
		return
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	trx, err := h.service.Get(r.Context(), merchantID, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: trx})
}

// Delete handles DELETE /api/v1/transactions/{transactionID}
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "transactionID"))
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

// parseTimeParam reads an optional time query parameter, accepting RFC 3339
// timestamps and bare dates. A bare date names a whole day, so when endOfDay
// is set it resolves to 23:59:59 of that day. A missing parameter yields the
// zero time with ok=true; a malformed one writes a 400 response and returns
// ok=false.
func parseTimeParam(w http.ResponseWriter, r *http.Request, name string, endOfDay bool) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, true
	}

	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), true
	}

	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: name + " must be an RFC 3339 timestamp or a YYYY-MM-DD date"},
		})
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t.UTC(), true
}
