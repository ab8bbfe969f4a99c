package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/pos-terminal/internal/cart"
	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/internal/terminal"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type AddLineRequestDTO struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id"`
	UnitID      string `json:"unit_id"`
	Quantity    int    `json:"quantity"`
}

type UpdateLineRequestDTO struct {
	Quantity *int    `json:"quantity"`
	Notes    *string `json:"notes"`
}

type DiscountRequestDTO struct {
	Kind   string          `json:"kind"`
	Value  decimal.Decimal `json:"value"`
	Reason string          `json:"reason"`
}

type CustomerRequestDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AddLineResponseDTO struct {
	Line domain.CartLine `json:"line"`
	Cart cart.Snapshot   `json:"cart"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.term.Cart())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.term.ClearCart(); err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.term.Cart())
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddLineRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	line, err := h.term.AddItem(ctx, terminal.AddItem{
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		UnitID:      req.UnitID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, AddLineResponseDTO{Line: line, Cart: h.term.Cart()})
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var req UpdateLineRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.term.UpdateLine(chi.URLParam(r, "id"), cart.LinePatch{Quantity: req.Quantity, Notes: req.Notes})
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.term.Cart())
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	if err := h.term.RemoveLine(chi.URLParam(r, "id")); err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.term.Cart())
}

func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req DiscountRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	kind, err := domain.ParseDiscountKind(req.Kind)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	if err := h.term.SetDiscount(domain.Discount{Kind: kind, Value: req.Value, Reason: req.Reason}); err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.term.Cart())
}

func (h *Handler) ClearDiscount(w http.ResponseWriter, r *http.Request) {
	if err := h.term.ClearDiscount(); err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.term.Cart())
}

func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_customer_id", "id is required")
		return
	}
	if err := h.term.SetCustomer(domain.Customer{ID: req.ID, Name: req.Name}); err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.term.Cart())
}

func (h *Handler) ClearCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.term.ClearCustomer(); err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, h.term.Cart())
}
