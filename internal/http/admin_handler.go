package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/akaza50z/libabbitak/internal/auth"
	"github.com/akaza50z/libabbitak/internal/catalog"
	"github.com/akaza50z/libabbitak/internal/domain"
	"github.com/akaza50z/libabbitak/internal/upload"
)

// AdminCatalog is everything the back office needs from the repository.
type AdminCatalog interface {
	Settings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, s domain.Settings) (domain.Settings, error)
	Categories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	UpdateCategory(ctx context.Context, id string, c domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	Items(ctx context.Context) ([]domain.Item, error)
	CreateItem(ctx context.Context, it domain.Item) (domain.Item, error)
	UpdateItem(ctx context.Context, id string, it domain.Item) (domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
	AdminCount(ctx context.Context) (int, error)
	AdminByUsername(ctx context.Context, username string) (domain.AdminUser, error)
	FirstAdmin(ctx context.Context) (domain.AdminUser, error)
	CreateAdmin(ctx context.Context, username, passwordHash string) (domain.AdminUser, error)
	UpdateAdmin(ctx context.Context, id, username, passwordHash string) error
}

type AdminHandler struct {
	repo     AdminCatalog
	sessions *auth.Sessions
	limiter  *auth.LoginLimiter
	uploader *upload.Saver
	log      logrus.FieldLogger
}

func NewAdminHandler(repo AdminCatalog, sessions *auth.Sessions, limiter *auth.LoginLimiter, uploader *upload.Saver, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{
		repo:     repo,
		sessions: sessions,
		limiter:  limiter,
		uploader: uploader,
		log:      log,
	}
}

type SetupRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AccountUpdateDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	NewUsername     string `json:"newUsername"`
}

type CategoryRequestDTO struct {
	Name      string  `json:"name_ar"`
	ParentID  *string `json:"parentId"`
	ImageURL  string  `json:"imageUrl"`
	SortOrder int     `json:"sortOrder"`
	IsActive  *bool   `json:"isActive"`
}

type ItemRequestDTO struct {
	Name        string `json:"name_ar"`
	Description string `json:"desc_ar"`
	PriceInt    int64  `json:"priceInt"`
	OldPriceInt *int64 `json:"oldPriceInt"`
	CategoryID  string `json:"categoryId"`
	ImageURL    string `json:"imageUrl"`
	IsAvailable *bool  `json:"isAvailable"`
	SortOrder   int    `json:"sortOrder"`
}

// GetSetup reports whether the first-run setup flow is still open.
func (h *AdminHandler) GetSetup(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.AdminCount(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to check setup")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"setupRequired": count == 0})
}

// Setup creates the one back-office account and signs it in.
func (h *AdminHandler) Setup(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.AdminCount(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to setup admin")
		return
	}
	if count > 0 {
		respondError(w, http.StatusBadRequest, "already_setup", "الإعداد مكتمل مسبقاً")
		return
	}

	var req SetupRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "بيانات غير صحيحة")
		return
	}
	if req.Username == "" {
		respondError(w, http.StatusBadRequest, "invalid_username", "اسم المستخدم مطلوب")
		return
	}
	if len(req.Password) < 6 {
		respondError(w, http.StatusBadRequest, "invalid_password", "كلمة المرور 6 أحرف على الأقل")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to setup admin")
		return
	}
	if _, err := h.repo.CreateAdmin(r.Context(), req.Username, hash); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to setup admin")
		return
	}

	h.setSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(remoteAddr(r)) {
		respondError(w, http.StatusTooManyRequests, "rate_limited", "محاولات كثيرة، حاول لاحقاً")
		return
	}

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "بيانات غير صحيحة")
		return
	}

	user, err := h.repo.AdminByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, catalog.ErrAdminNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid_credentials", "اسم المستخدم أو كلمة المرور غير صحيحة")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "خطأ في تسجيل الدخول")
		return
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "اسم المستخدم أو كلمة المرور غير صحيحة")
		return
	}

	h.setSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.CookieName); err == nil {
		h.sessions.Destroy(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	user, err := h.repo.FirstAdmin(r.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrAdminNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "لم يتم العثور على المستخدم")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "فشل التحديث")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

// UpdateAccount changes the password and optionally the username, after
// checking the current password.
func (h *AdminHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "بيانات غير صحيحة")
		return
	}
	if req.CurrentPassword == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "كلمة المرور الحالية مطلوبة")
		return
	}
	if len(req.NewPassword) < 6 {
		respondError(w, http.StatusBadRequest, "invalid_password", "كلمة المرور الجديدة 6 أحرف على الأقل")
		return
	}

	user, err := h.repo.FirstAdmin(r.Context())
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "لم يتم العثور على المستخدم")
		return
	}
	if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		respondError(w, http.StatusBadRequest, "invalid_credentials", "كلمة المرور الحالية غير صحيحة")
		return
	}

	username := user.Username
	if req.NewUsername != "" {
		username = req.NewUsername
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "فشل التحديث")
		return
	}
	if err := h.repo.UpdateAdmin(r.Context(), user.ID, username, hash); err != nil {
		if errors.Is(err, catalog.ErrUsernameTaken) {
			respondError(w, http.StatusBadRequest, "username_taken", "اسم المستخدم مستخدم بالفعل")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "فشل التحديث")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.Settings(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "بيانات غير صحيحة")
		return
	}
	if s.RestaurantName == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "اسم المتجر مطلوب")
		return
	}
	if s.Currency == "" {
		s.Currency = "IQD"
	}
	if s.Mode != domain.ModeDineIn && s.Mode != domain.ModeDelivery {
		s.Mode = domain.ModeDineIn
	}

	updated, err := h.repo.UpdateSettings(r.Context(), s)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to update settings")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.Categories(r.Context(), false)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCategory(w, r)
	if !ok {
		return
	}
	created, err := h.repo.CreateCategory(r.Context(), c)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create category")
		return
	}
	respondJSON(w, http.StatusOK, created)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCategory(w, r)
	if !ok {
		return
	}
	updated, err := h.repo.UpdateCategory(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Category not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to update category")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Category not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to delete category")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.Items(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch items")
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *AdminHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	it, ok := decodeItem(w, r)
	if !ok {
		return
	}
	created, err := h.repo.CreateItem(r.Context(), it)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to create item")
		return
	}
	respondJSON(w, http.StatusOK, created)
}

func (h *AdminHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	it, ok := decodeItem(w, r)
	if !ok {
		return
	}
	updated, err := h.repo.UpdateItem(r.Context(), chi.URLParam(r, "id"), it)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to update item")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to delete item")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Upload stores an image and returns its public URL.
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "No file provided")
		return
	}
	defer file.Close()

	url, err := h.uploader.Save(header.Filename, file)
	if err != nil {
		h.log.WithError(err).Error("upload failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to upload")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url, "path": url})
}

func (h *AdminHandler) setSessionCookie(w http.ResponseWriter) {
	token := h.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL().Seconds()),
	})
}

func decodeCategory(w http.ResponseWriter, r *http.Request) (domain.Category, bool) {
	var req CategoryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "بيانات غير صحيحة")
		return domain.Category{}, false
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "اسم الفئة مطلوب")
		return domain.Category{}, false
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return domain.Category{
		Name:      req.Name,
		ParentID:  req.ParentID,
		ImageURL:  req.ImageURL,
		SortOrder: req.SortOrder,
		IsActive:  active,
	}, true
}

func decodeItem(w http.ResponseWriter, r *http.Request) (domain.Item, bool) {
	var req ItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "بيانات غير صحيحة")
		return domain.Item{}, false
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "اسم الصنف مطلوب")
		return domain.Item{}, false
	}
	if req.CategoryID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "الفئة مطلوبة")
		return domain.Item{}, false
	}
	if req.PriceInt < 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "السعر يجب أن يكون موجباً")
		return domain.Item{}, false
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	return domain.Item{
		Name:        req.Name,
		Description: req.Description,
		PriceInt:    req.PriceInt,
		OldPriceInt: req.OldPriceInt,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		IsAvailable: available,
		SortOrder:   req.SortOrder,
	}, true
}

func remoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
