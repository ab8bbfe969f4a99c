package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/checkout"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/events"
	"github.com/fjod/go_cart/pos-terminal/internal/guard"
	"github.com/fjod/go_cart/pos-terminal/internal/terminal"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ModeRequestDTO struct {
	SaleType string `json:"sale_type"`
}

type ModeResponseDTO struct {
	Result   guard.Result    `json:"result,omitempty"`
	SaleType domain.SaleType `json:"sale_type"`
	Pending  domain.SaleType `json:"pending,omitempty"`
	Cart     cart.Snapshot   `json:"cart"`
}

type VoidResponseDTO struct {
	Void *domain.VoidRecord `json:"void"`
	Cart cart.Snapshot      `json:"cart"`
}

type CheckoutRequestDTO struct {
	PaymentMethod string           `json:"payment_method"`
	AmountPaid    *decimal.Decimal `json:"amount_paid,omitempty"`
}

func (h *Handler) modeResponse(result guard.Result) ModeResponseDTO {
	snap := h.term.Cart()
	resp := ModeResponseDTO{Result: result, SaleType: snap.SaleType, Cart: snap}
	if pending, ok := h.term.PendingMode(); ok {
		resp.Pending = pending
	}
	return resp
}

func (h *Handler) RequestMode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ModeRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	mode, err := domain.ParseSaleType(req.SaleType)
	if err != nil {
		handleError(w, h.log, err)
		return
	}

	result, err := h.term.RequestMode(ctx, mode)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	status := http.StatusOK
	if result == guard.ResultPending {
		status = http.StatusAccepted
	}
	respondJSON(w, status, h.modeResponse(result))
}

func (h *Handler) ConfirmMode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if _, err := h.term.ConfirmMode(ctx); err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.modeResponse(guard.ResultApplied))
}

func (h *Handler) CancelMode(w http.ResponseWriter, r *http.Request) {
	if _, err := h.term.CancelMode(); err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.modeResponse(guard.ResultUnchanged))
}

func (h *Handler) VoidCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	record, err := h.term.VoidCart(ctx)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, VoidResponseDTO{Void: record, Cart: h.term.Cart()})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := h.term.Checkout(ctx, checkout.Tender(req.PaymentMethod, req.AmountPaid))
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, record)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.term.Session())
}

func (h *Handler) SetSession(w http.ResponseWriter, r *http.Request) {
	var req terminal.SessionInfo
	if !decodeJSON(w, r, &req) {
		return
	}
	h.term.SetSession(req)
	respondJSON(w, http.StatusOK, h.term.Session())
}

func (h *Handler) Notices(w http.ResponseWriter, r *http.Request) {
	var after uint64
	if v := r.URL.Query().Get("after"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_after", "after must be a non-negative integer")
			return
		}
		after = parsed
	}
	notices := h.term.Notices(after)
	if notices == nil {
		notices = []events.Notice{}
	}
	respondJSON(w, http.StatusOK, notices)
}

func (h *Handler) ShiftSummary(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		respondError(w, http.StatusNotFound, "journal_disabled", "sales journal is not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summary, err := h.journal.ShiftSummary(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
