package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akaza50z/libabbitak/internal/cart"
	"github.com/akaza50z/libabbitak/internal/catalog"
	"github.com/akaza50z/libabbitak/internal/domain"
)

// ItemGetter resolves a catalog item so its name and price can be
// snapshotted onto the cart line.
type ItemGetter interface {
	Item(ctx context.Context, id string) (domain.Item, error)
}

type CartHandler struct {
	carts *cart.Manager
	repo  ItemGetter
}

func NewCartHandler(carts *cart.Manager, repo ItemGetter) *CartHandler {
	return &CartHandler{carts: carts, repo: repo}
}

type AddItemRequestDTO struct {
	ItemID   string   `json:"itemId"`
	Quantity *float64 `json:"quantity"`
	Notes    string   `json:"notes"`
}

type UpdateQuantityRequestDTO struct {
	Quantity float64 `json:"quantity"`
}

type UpdateNotesRequestDTO struct {
	Notes string `json:"notes"`
}

type CartResponseDTO struct {
	Items      []cart.Line `json:"items"`
	TotalCount float64     `json:"totalCount"`
	TotalPrice float64     `json:"totalPrice"`
}

func (h *CartHandler) store(r *http.Request) *cart.Store {
	return h.carts.Get(r.Context(), cartSessionFromContext(r.Context()))
}

func cartResponse(s *cart.Store) CartResponseDTO {
	lines := s.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	return CartResponseDTO{
		Items:      lines,
		TotalCount: s.TotalCount(),
		TotalPrice: s.TotalPrice(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, cartResponse(h.store(r)))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "itemId is required")
		return
	}

	quantity := 1.0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	item, err := h.repo.Item(r.Context(), req.ItemID)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load item")
		return
	}
	if !item.IsAvailable {
		respondError(w, http.StatusConflict, "unavailable", "item is not available")
		return
	}

	store := h.store(r)
	store.AddItem(r.Context(), cart.CatalogRef{
		ProductID: item.ID,
		Name:      item.Name,
		UnitPrice: item.PriceInt,
		Notes:     req.Notes,
		ImageURL:  item.ImageURL,
	}, quantity)

	respondJSON(w, http.StatusCreated, cartResponse(store))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := h.store(r)
	store.UpdateQuantity(r.Context(), chi.URLParam(r, "lineID"), req.Quantity)
	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req UpdateNotesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := h.store(r)
	store.UpdateNotes(r.Context(), chi.URLParam(r, "lineID"), req.Notes)
	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	store.RemoveItem(r.Context(), chi.URLParam(r, "lineID"))
	respondJSON(w, http.StatusOK, cartResponse(store))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	store.Clear(r.Context())
	respondJSON(w, http.StatusOK, cartResponse(store))
}
