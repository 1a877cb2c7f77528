package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type contextKeyType string

const merchantIDKey contextKeyType = "merchant_id"

// MerchantHeader is the request header carrying the merchant scope. The API
// gateway authenticates the caller and forwards the resolved merchant ID here.
const MerchantHeader = "X-Merchant-ID"

// RequireMerchant rejects requests that do not carry a valid merchant ID in
// the X-Merchant-ID header and injects the canonical ID into the request
// context. Every data-facing route must run behind it: all stock and
// transaction rows are owned by exactly one merchant.
func RequireMerchant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(MerchantHeader)
		if raw == "" {
			writeMerchantError(w, "missing "+MerchantHeader+" header")
			return
		}

		merchantID, err := uuid.Parse(raw)
		if err != nil {
			writeMerchantError(w, "invalid merchant id")
			return
		}

		ctx := context.WithValue(r.Context(), merchantIDKey, merchantID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MerchantIDFromContext extracts the merchant ID from the request context.
// Returns "" if the request did not pass through RequireMerchant.
func MerchantIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(merchantIDKey).(string); ok {
		return id
	}
	return ""
}

func writeMerchantError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "MERCHANT_REQUIRED",
		"message": message,
	})
}
