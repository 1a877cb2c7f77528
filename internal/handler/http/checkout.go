package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/c14220292/kasir/internal/domain"
	"github.com/c14220292/kasir/internal/service"
	"github.com/c14220292/kasir/pkg/httputil"
	"github.com/c14220292/kasir/pkg/middleware"
	"github.com/c14220292/kasir/pkg/validator"
)

// CheckoutHandler handles HTTP requests for the checkout endpoint.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CheckoutLineRequest is one requested line in a checkout. Quantity carries
// no validate tag: a non-positive quantity is reported per line as an
// invalid_quantity outcome, not rejected for the whole request.
type CheckoutLineRequest struct {
	StockItemID string `json:"stock_item_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity"`
}

// CheckoutRequest is the JSON request body for a checkout.
type CheckoutRequest struct {
	Lines []CheckoutLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CheckoutResponse carries the created transaction and the per-line outcomes,
// in request order.
type CheckoutResponse struct {
	Transaction *domain.Transaction  `json:"transaction"`
	Lines       []domain.SellOutcome `json:"lines"`
}

// Checkout handles POST /api/v1/checkout
//
// Each line is processed independently; the response body always carries the
// transaction and every line's outcome. The response status is 201 as soon as
// one line committed. When nothing sold, the first line's outcome picks the
// status, which for the dominant single-line checkout gives callers the exact
// failure class (400, 404, 409, or 422).
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CheckoutRequest
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

	lines := make([]domain.SellLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = domain.SellLine{
			StockItemID: line.StockItemID,
			Quantity:    line.Quantity,
		}
	}

	merchantID := middleware.MerchantIDFromContext(r.Context())

	trx, outcomes, err := h.service.Checkout(r.Context(), merchantID, lines)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusCreated
	if sold := soldCount(outcomes); sold == 0 && len(outcomes) > 0 {
		status = sellStatusHTTP(outcomes[0].Status)
	}

	httputil.WriteJSON(w, status, httputil.Response{Data: CheckoutResponse{
		Transaction: trx,
		Lines:       outcomes,
	}})
}

func soldCount(outcomes []domain.SellOutcome) int {
	n := 0
	for i := range outcomes {
		if outcomes[i].Sold() {
			n++
		}
	}
	return n
}

// sellStatusHTTP maps a sell outcome status to an HTTP status code.
func sellStatusHTTP(status string) int {
	switch status {
	case domain.SellStatusSuccess:
		return http.StatusCreated
	case domain.SellStatusInvalidQuantity:
		return http.StatusBadRequest
	case domain.SellStatusItemNotFound:
		return http.StatusNotFound
	case domain.SellStatusConflict:
		return http.StatusConflict
	case domain.SellStatusInsufficientStock:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
