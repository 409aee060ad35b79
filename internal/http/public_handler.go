package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/akaza50z/libabbitak/internal/catalog"
	"github.com/akaza50z/libabbitak/internal/domain"
)

// PublicCatalog is the slice of the repository the storefront reads.
type PublicCatalog interface {
	Settings(ctx context.Context) (domain.Settings, error)
	Categories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	PublicItems(ctx context.Context, filter catalog.ItemFilter) ([]domain.Item, error)
}

type PublicHandler struct {
	repo PublicCatalog
}

func NewPublicHandler(repo PublicCatalog) *PublicHandler {
	return &PublicHandler{repo: repo}
}

func (h *PublicHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *PublicHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.Categories(r.Context(), true)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *PublicHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ItemFilter{
		CategoryID: r.URL.Query().Get("category"),
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
	}

	items, err := h.repo.PublicItems(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch items")
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	respondJSON(w, http.StatusOK, items)
}
