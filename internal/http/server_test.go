package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/akaza50z/libabbitak/internal/auth"
	"github.com/akaza50z/libabbitak/internal/cart"
	"github.com/akaza50z/libabbitak/internal/catalog"
	"github.com/akaza50z/libabbitak/internal/domain"
	"github.com/akaza50z/libabbitak/internal/upload"
	"github.com/akaza50z/libabbitak/internal/whatsapp"
)

func newTestRouter(t *testing.T) (chi.Router, *catalog.Repository) {
	repo, err := catalog.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.RunMigrations("../../migrations"))

	log := logrus.New()
	log.SetOutput(io.Discard)

	router := NewRouter(RouterConfig{
		Catalog:        repo,
		Carts:          cart.NewManager(cart.NewLocalStorage(), log),
		Sessions:       auth.NewSessions(time.Hour),
		LoginLimiter:   auth.NewLoginLimiter(100, 100),
		Uploader:       &upload.Saver{Dir: t.TempDir()},
		Formatter:      whatsapp.NewFormatter(language.English),
		CountryCode:    "964",
		RequestTimeout: 30 * time.Second,
		Log:            log,
	})
	return router, repo
}

// testClient carries cookies between requests the way a browser would.
type testClient struct {
	t       *testing.T
	router  chi.Router
	cookies []*http.Cookie
}

func newTestClient(t *testing.T, router chi.Router) *testClient {
	return &testClient{t: t, router: router}
}

func (c *testClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		c.setCookie(cookie)
	}
	return rec
}

func (c *testClient) setCookie(cookie *http.Cookie) {
	for i, existing := range c.cookies {
		if existing.Name == cookie.Name {
			c.cookies[i] = cookie
			return
		}
	}
	c.cookies = append(c.cookies, cookie)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(target))
}

func seedItem(t *testing.T, repo *catalog.Repository, name string, price int64, available bool) domain.Item {
	t.Helper()
	ctx := context.Background()
	cat, err := repo.CreateCategory(ctx, domain.Category{Name: "فواكه", IsActive: true})
	require.NoError(t, err)
	item, err := repo.CreateItem(ctx, domain.Item{
		Name:        name,
		PriceInt:    price,
		CategoryID:  cat.ID,
		IsAvailable: available,
	})
	require.NoError(t, err)
	return item
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPublicEndpoints(t *testing.T) {
	router, repo := newTestRouter(t)
	client := newTestClient(t, router)
	seedItem(t, repo, "تفاح احمر", 2000, true)

	rec := client.do(http.MethodGet, "/api/public/settings", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var settings domain.Settings
	decodeBody(t, rec, &settings)
	assert.Equal(t, "المتجر", settings.RestaurantName)

	rec = client.do(http.MethodGet, "/api/public/categories", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var categories []domain.Category
	decodeBody(t, rec, &categories)
	assert.Len(t, categories, 1)

	rec = client.do(http.MethodGet, "/api/public/items", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var items []domain.Item
	decodeBody(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "تفاح احمر", items[0].Name)
}

func TestCartFlow_AddUpdateRemove(t *testing.T) {
	router, repo := newTestRouter(t)
	client := newTestClient(t, router)
	item := seedItem(t, repo, "تفاح احمر", 2000, true)

	rec := client.do(http.MethodPost, "/api/cart/items", AddItemRequestDTO{ItemID: item.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CartResponseDTO
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1.0, resp.Items[0].Quantity)
	assert.Equal(t, 2000.0, resp.TotalPrice)

	// Same item again merges into the existing line.
	half := 0.5
	rec = client.do(http.MethodPost, "/api/cart/items", AddItemRequestDTO{ItemID: item.ID, Quantity: &half})
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1.5, resp.Items[0].Quantity)
	assert.Equal(t, 3000.0, resp.TotalPrice)

	lineID := resp.Items[0].LineID

	rec = client.do(http.MethodPut, "/api/cart/items/"+lineID, UpdateQuantityRequestDTO{Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2.0, resp.Items[0].Quantity)

	rec = client.do(http.MethodPut, "/api/cart/items/"+lineID+"/notes", UpdateNotesRequestDTO{Notes: "ناضج"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ناضج", resp.Items[0].Notes)

	rec = client.do(http.MethodDelete, "/api/cart/items/"+lineID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Items)
}

func TestCartFlow_SessionCookiePersistsCart(t *testing.T) {
	router, repo := newTestRouter(t)
	item := seedItem(t, repo, "تفاح احمر", 2000, true)

	client := newTestClient(t, router)
	rec := client.do(http.MethodPost, "/api/cart/items", AddItemRequestDTO{ItemID: item.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	// The same cookie sees the same cart.
	rec = client.do(http.MethodGet, "/api/cart/", nil)
	var resp CartResponseDTO
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Items, 1)

	// A fresh browser gets an empty cart.
	other := newTestClient(t, router)
	rec = other.do(http.MethodGet, "/api/cart/", nil)
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Items)
}

func TestAddItem_Validation(t *testing.T) {
	router, repo := newTestRouter(t)
	client := newTestClient(t, router)
	unavailable := seedItem(t, repo, "موز", 1750, false)

	rec := client.do(http.MethodPost, "/api/cart/items", AddItemRequestDTO{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	negative := -1.0
	rec = client.do(http.MethodPost, "/api/cart/items", AddItemRequestDTO{ItemID: "x", Quantity: &negative})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = client.do(http.MethodPost, "/api/cart/items", AddItemRequestDTO{ItemID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = client.do(http.MethodPost, "/api/cart/items", AddItemRequestDTO{ItemID: unavailable.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckout_EmptyCart(t *testing.T) {
	router, _ := newTestRouter(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodPost, "/api/checkout", CheckoutRequestDTO{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty_cart")
}

func TestCheckout_NoContactConfigured(t *testing.T) {
	router, repo := newTestRouter(t)
	client := newTestClient(t, router)
	item := seedItem(t, repo, "تفاح احمر", 2000, true)

	rec := client.do(http.MethodPost, "/api/cart/items", AddItemRequestDTO{ItemID: item.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = client.do(http.MethodPost, "/api/checkout", CheckoutRequestDTO{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_configured")
}

func TestCheckout_BuildsMessageAndLinks(t *testing.T) {
	router, repo := newTestRouter(t)
	client := newTestClient(t, router)
	item := seedItem(t, repo, "تفاح احمر", 2000, true)

	ctx := context.Background()
	settings, err := repo.Settings(ctx)
	require.NoError(t, err)
	settings.WhatsApp = "07704855444"
	settings.Phone = "07704855444"
	settings.Mode = domain.ModeDelivery
	_, err = repo.UpdateSettings(ctx, settings)
	require.NoError(t, err)

	qty := 1.5
	rec := client.do(http.MethodPost, "/api/cart/items", AddItemRequestDTO{ItemID: item.ID, Quantity: &qty})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = client.do(http.MethodPost, "/api/checkout", CheckoutRequestDTO{
		CustomerName:   "أحمد",
		TableOrAddress: "حي الزهور",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CheckoutResponseDTO
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Message, "تفاح احمر")
	assert.Contains(t, resp.Message, "العنوان: حي الزهور")
	assert.True(t, strings.HasPrefix(resp.WhatsAppURL, "https://wa.me/9647704855444?text="), resp.WhatsAppURL)
	assert.Equal(t, "tel:07704855444", resp.PhoneURL)
}

func TestAdmin_SetupAndLoginFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodGet, "/api/admin/setup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"setupRequired":true`)

	// Too-short password is rejected.
	rec = client.do(http.MethodPost, "/api/admin/setup", SetupRequestDTO{Username: "admin", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = client.do(http.MethodPost, "/api/admin/setup", SetupRequestDTO{Username: "admin", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Setup signs the admin in, so the protected surface is reachable.
	rec = client.do(http.MethodGet, "/api/admin/account", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"admin"`)

	// A second setup attempt is refused.
	rec = client.do(http.MethodPost, "/api/admin/setup", SetupRequestDTO{Username: "other", Password: "secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = client.do(http.MethodPost, "/api/admin/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = client.do(http.MethodGet, "/api/admin/account", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = client.do(http.MethodPost, "/api/admin/auth/login", LoginRequestDTO{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = client.do(http.MethodPost, "/api/admin/auth/login", LoginRequestDTO{Username: "admin", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = client.do(http.MethodGet, "/api/admin/account", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_ProtectedRoutesRejectAnonymous(t *testing.T) {
	router, _ := newTestRouter(t)
	client := newTestClient(t, router)

	for _, path := range []string{
		"/api/admin/settings",
		"/api/admin/categories",
		"/api/admin/items",
	} {
		rec := client.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func adminClient(t *testing.T, router chi.Router) *testClient {
	t.Helper()
	client := newTestClient(t, router)
	rec := client.do(http.MethodPost, "/api/admin/setup", SetupRequestDTO{Username: "admin", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	return client
}

func TestAdmin_CategoryAndItemCRUD(t *testing.T) {
	router, _ := newTestRouter(t)
	client := adminClient(t, router)

	rec := client.do(http.MethodPost, "/api/admin/categories", CategoryRequestDTO{Name: "فواكه"})
	require.Equal(t, http.StatusOK, rec.Code)
	var category domain.Category
	decodeBody(t, rec, &category)
	assert.True(t, category.IsActive)

	rec = client.do(http.MethodPost, "/api/admin/items", ItemRequestDTO{
		Name:       "تفاح احمر",
		PriceInt:   2000,
		CategoryID: category.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var item domain.Item
	decodeBody(t, rec, &item)
	assert.True(t, item.IsAvailable)
	assert.Equal(t, "فواكه", item.CategoryName)

	rec = client.do(http.MethodPut, "/api/admin/items/"+item.ID, ItemRequestDTO{
		Name:       "تفاح اخضر",
		PriceInt:   2250,
		CategoryID: category.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &item)
	assert.Equal(t, "تفاح اخضر", item.Name)

	rec = client.do(http.MethodPut, "/api/admin/items/missing", ItemRequestDTO{
		Name:       "x",
		PriceInt:   1,
		CategoryID: category.ID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = client.do(http.MethodDelete, "/api/admin/items/"+item.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = client.do(http.MethodDelete, "/api/admin/categories/"+category.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = client.do(http.MethodDelete, "/api/admin/categories/"+category.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_UpdateSettingsValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	client := adminClient(t, router)

	rec := client.do(http.MethodPut, "/api/admin/settings", domain.Settings{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = client.do(http.MethodPut, "/api/admin/settings", domain.Settings{
		RestaurantName: "لباب بيتك",
		Mode:           "bogus",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var settings domain.Settings
	decodeBody(t, rec, &settings)
	assert.Equal(t, "IQD", settings.Currency)
	assert.Equal(t, domain.ModeDineIn, settings.Mode)
}

func TestAdmin_UpdateAccount(t *testing.T) {
	router, _ := newTestRouter(t)
	client := adminClient(t, router)

	rec := client.do(http.MethodPut, "/api/admin/account", AccountUpdateDTO{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = client.do(http.MethodPut, "/api/admin/account", AccountUpdateDTO{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret1",
		NewUsername:     "boss",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = client.do(http.MethodPost, "/api/admin/auth/login", LoginRequestDTO{Username: "boss", Password: "newsecret1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_Upload(t *testing.T) {
	router, _ := newTestRouter(t)
	client := adminClient(t, router)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, cookie := range client.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp["url"], "/uploads/"), resp["url"])
	assert.True(t, strings.HasSuffix(resp["url"], ".png"), resp["url"])
}

func TestLogin_RateLimited(t *testing.T) {
	repo, err := catalog.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.RunMigrations("../../migrations"))

	log := logrus.New()
	log.SetOutput(io.Discard)

	router := NewRouter(RouterConfig{
		Catalog:        repo,
		Carts:          cart.NewManager(cart.NewLocalStorage(), log),
		Sessions:       auth.NewSessions(time.Hour),
		LoginLimiter:   auth.NewLoginLimiter(0, 2),
		Formatter:      whatsapp.NewFormatter(language.English),
		CountryCode:    "964",
		RequestTimeout: 30 * time.Second,
		Log:            log,
	})
	client := newTestClient(t, router)

	body := LoginRequestDTO{Username: "ghost", Password: "nope"}
	assert.Equal(t, http.StatusUnauthorized, client.do(http.MethodPost, "/api/admin/auth/login", body).Code)
	assert.Equal(t, http.StatusUnauthorized, client.do(http.MethodPost, "/api/admin/auth/login", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, client.do(http.MethodPost, "/api/admin/auth/login", body).Code)
}
