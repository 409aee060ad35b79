package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/akaza50z/libabbitak/internal/cart"
	"github.com/akaza50z/libabbitak/internal/domain"
	"github.com/akaza50z/libabbitak/internal/whatsapp"
)

type SettingsGetter interface {
	Settings(ctx context.Context) (domain.Settings, error)
}

// CheckoutHandler turns the cart snapshot plus customer fields into the
// outgoing order message and its hand-off links. Nothing is persisted; the
// order leaves the system as a prefilled chat.
type CheckoutHandler struct {
	carts       *cart.Manager
	repo        SettingsGetter
	formatter   *whatsapp.Formatter
	countryCode string
	now         func() time.Time
}

func NewCheckoutHandler(carts *cart.Manager, repo SettingsGetter, formatter *whatsapp.Formatter, countryCode string) *CheckoutHandler {
	return &CheckoutHandler{
		carts:       carts,
		repo:        repo,
		formatter:   formatter,
		countryCode: countryCode,
		now:         time.Now,
	}
}

type CheckoutRequestDTO struct {
	CustomerName   string `json:"customerName"`
	CustomerPhone  string `json:"customerPhone"`
	TableOrAddress string `json:"tableOrAddress"`
	OrderNotes     string `json:"orderNotes"`
}

type CheckoutResponseDTO struct {
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
	PhoneURL    string `json:"phoneUrl,omitempty"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := h.carts.Get(r.Context(), cartSessionFromContext(r.Context()))
	lines := store.Lines()
	if len(lines) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
		return
	}

	settings, err := h.repo.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load settings")
		return
	}
	// No contact configured means no hand-off to offer.
	if settings.WhatsApp == "" && settings.Phone == "" {
		respondError(w, http.StatusNotFound, "not_configured", "no contact number configured")
		return
	}

	message := h.formatter.BuildMessage(lines, settings, whatsapp.OrderDraft{
		Name:           req.CustomerName,
		Phone:          req.CustomerPhone,
		TableOrAddress: req.TableOrAddress,
		Notes:          req.OrderNotes,
	}, h.now())

	resp := CheckoutResponseDTO{Message: message}
	if settings.WhatsApp != "" {
		resp.WhatsAppURL = whatsapp.OrderURL(settings.WhatsApp, h.countryCode, message)
	}
	if settings.Phone != "" {
		resp.PhoneURL = whatsapp.DialURL(settings.Phone)
	}

	respondJSON(w, http.StatusOK, resp)
}
