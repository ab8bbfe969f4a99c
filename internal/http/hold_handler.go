package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/guard"
	"github.com/go-chi/chi/v5"
)

type HoldRequestDTO struct {
	TableRef string `json:"table_ref"`
}

type HoldResponseDTO struct {
	ID   string        `json:"id"`
	Cart cart.Snapshot `json:"cart"`
}

type ResumeResponseDTO struct {
	Result  guard.Result  `json:"result"`
	HoldID  string        `json:"hold_id"`
	Pending bool          `json:"pending"`
	Cart    cart.Snapshot `json:"cart"`
}

func (h *Handler) HoldCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req HoldRequestDTO
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.term.HoldCart(ctx, req.TableRef)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, HoldResponseDTO{ID: id, Cart: h.term.Cart()})
}

func (h *Handler) ListHolds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	held, err := h.term.ListHolds(ctx)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	if held == nil {
		held = []domain.HeldTransaction{}
	}
	respondJSON(w, http.StatusOK, held)
}

func (h *Handler) GetHold(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	held, err := h.term.GetHold(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, held)
}

func (h *Handler) DeleteHold(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.term.DeleteHold(ctx, chi.URLParam(r, "id")); err != nil {
		handleError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resumeResponse(result guard.Result, holdID string) ResumeResponseDTO {
	_, pending := h.term.PendingResume()
	return ResumeResponseDTO{Result: result, HoldID: holdID, Pending: pending, Cart: h.term.Cart()}
}

func (h *Handler) RequestResume(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	result, err := h.term.RequestResume(ctx, id)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	status := http.StatusOK
	if result == guard.ResultPending {
		status = http.StatusAccepted
	}
	respondJSON(w, status, h.resumeResponse(result, id))
}

func (h *Handler) ConfirmResume(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := h.term.ConfirmResume(ctx)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.resumeResponse(guard.ResultApplied, id))
}

func (h *Handler) CancelResume(w http.ResponseWriter, r *http.Request) {
	id, err := h.term.CancelResume()
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.resumeResponse(guard.ResultUnchanged, id))
}
