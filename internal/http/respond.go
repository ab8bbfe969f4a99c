package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/pos-terminal/internal/backend"
	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/catalog"
	"github.com/fjod/go_cart/pos-terminal/internal/checkout"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/guard"
	"github.com/fjod/go_cart/pos-terminal/internal/hold"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{cart.ErrCartFrozen, http.StatusConflict, "cart_frozen"},
	{cart.ErrCartNotEmpty, http.StatusConflict, "cart_not_empty"},
	{checkout.ErrEmptyCart, http.StatusConflict, "empty_cart"},
	{checkout.ErrNoOutlet, http.StatusConflict, "no_outlet"},
	{checkout.ErrNoShift, http.StatusConflict, "no_shift"},
	{checkout.ErrCheckoutInProgress, http.StatusConflict, "checkout_in_progress"},
	{checkout.ErrPaymentCancelled, http.StatusConflict, "payment_cancelled"},
	{checkout.ErrInsufficientTender, http.StatusUnprocessableEntity, "insufficient_tender"},
	{hold.ErrNothingToHold, http.StatusConflict, "nothing_to_hold"},
	{guard.ErrNothingPending, http.StatusConflict, "nothing_pending"},
	{guard.ErrHoldNotFound, http.StatusNotFound, "hold_not_found"},
	{domain.ErrInvalidSaleType, http.StatusUnprocessableEntity, "invalid_sale_type"},
	{domain.ErrInvalidDiscountKind, http.StatusUnprocessableEntity, "invalid_discount_kind"},
	{catalog.ErrVariationNotFound, http.StatusUnprocessableEntity, "variation_not_found"},
	{catalog.ErrUnitNotFound, http.StatusUnprocessableEntity, "unit_not_found"},
	{backend.ErrNotFound, http.StatusNotFound, "not_found"},
	{backend.ErrUnavailable, http.StatusServiceUnavailable, "backend_unavailable"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
}

func handleError(w http.ResponseWriter, log *zap.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			respondError(w, m.status, m.code, err.Error())
			return
		}
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "backend rejected the request",
			Code:    "backend_error",
			Details: apiErr.Message,
		})
		return
	}

	log.Error("unhandled request error", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
